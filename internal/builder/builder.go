package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/api"
	conversationapi "github.com/futig/concept-interview/internal/api/conversation"
	proxyapi "github.com/futig/concept-interview/internal/api/proxy"
	"github.com/futig/concept-interview/internal/config"
	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/integration/llm"
	"github.com/futig/concept-interview/internal/pkg/validator"
	"github.com/futig/concept-interview/internal/repository"
	"github.com/futig/concept-interview/internal/telegram"
	"github.com/futig/concept-interview/internal/usecase/conversation"
)

// llmGateway is the full surface of the LLM integration, covering both the
// interview flow and the pass-through proxy
type llmGateway interface {
	ClassifyPrompt(ctx context.Context, prompt string) (entity.Verdict, error)
	GenerateQuestion(ctx context.Context, history []entity.Message) (*entity.QuestionPayload, error)
	GenerateMoreOptions(ctx context.Context, question string, existing []string) (*entity.MoreOptionsPayload, error)
	SynthesizeConcepts(ctx context.Context, history []entity.Message) ([]entity.ConceptPayload, error)
	ForwardCompletion(ctx context.Context, payload []byte) (int, []byte, error)
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	conceptRepo := repository.NewConceptPostgres(db)
	conversationRepo := repository.NewConversationMemory(cfg.ConversationTTL)
	logger.Info("Repositories initialized")

	// Initialize the LLM gateway (with mock support)
	gateway := buildGateway(cfg, logger)

	// Initialize validators
	requestValidator := validator.NewValidator()

	// Initialize use cases
	conversationUC := conversation.NewUsecase(
		conversationRepo,
		conceptRepo,
		gateway,
		cfg.InterviewCfg,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	conversationHandler := conversationapi.NewHandler(conversationUC, requestValidator)
	proxyHandler := proxyapi.NewHandler(gateway)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(conversationHandler, proxyHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the telegram bot")
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	conceptRepo := repository.NewConceptPostgres(db)
	conversationRepo := repository.NewConversationMemory(cfg.ConversationTTL)
	logger.Info("Repositories initialized")

	// Initialize the LLM gateway (with mock support)
	gateway := buildGateway(cfg, logger)

	// Initialize use cases
	conversationUC := conversation.NewUsecase(
		conversationRepo,
		conceptRepo,
		gateway,
		cfg.InterviewCfg,
		logger,
	)
	logger.Info("Use cases initialized")

	// Initialize Telegram bot
	bot, err := telegram.NewBot(&cfg.TelegramCfg, cfg.ConversationTTL, conversationUC, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

func buildGateway(cfg *config.Config, logger *zap.Logger) llmGateway {
	if cfg.EnableMocks {
		logger.Info("Using mock LLM gateway")
		return llm.NewMockConnector(cfg.InterviewCfg, logger)
	}

	logger.Info("Using real LLM gateway",
		zap.String("model", cfg.LLMGatewayCfg.Model),
	)
	return llm.NewConnector(cfg.LLMGatewayCfg, cfg.InterviewCfg, logger)
}
