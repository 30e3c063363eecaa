package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration (concept archive)
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// LLM gateway configuration
	LLMGatewayCfg LLMGatewayConfig `envPrefix:"LLM_"`

	// Interview shape configuration
	InterviewCfg InterviewConfig `envPrefix:"INTERVIEW_"`

	// Conversation store configuration. Conversations live in memory only;
	// abandoned sessions are evicted after the TTL.
	ConversationTTL time.Duration `env:"CONVERSATION_TTL" envDefault:"2h"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Telegram bot configuration (only used by the telegram-bot binary)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// LLMGatewayConfig holds the upstream chat-completions provider settings
type LLMGatewayConfig struct {
	HTTPClientConfig
	ChatEndpoint string `env:"CHAT_ENDPOINT" envDefault:"/chat/completions"`
	Model        string `env:"MODEL,notEmpty"`
	MaxTokens    int    `env:"MAX_TOKENS" envDefault:"1024"`
}

// InterviewConfig parameterizes the interview flow. OptionCount is a hard
// contract on gateway replies, not a hint.
type InterviewConfig struct {
	OptionCount  int `env:"OPTION_COUNT" envDefault:"5"`
	MaxQuestions int `env:"MAX_QUESTIONS" envDefault:"5"`
	ConceptCount int `env:"CONCEPT_COUNT" envDefault:"3"`
	FeatureCount int `env:"FEATURE_COUNT" envDefault:"3"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"30"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate interview shape
	if cfg.InterviewCfg.OptionCount < 2 || cfg.InterviewCfg.OptionCount > 10 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_OPTION_COUNT must be between 2 and 10, got %d", cfg.InterviewCfg.OptionCount))
	}

	if cfg.InterviewCfg.MaxQuestions < 2 || cfg.InterviewCfg.MaxQuestions > 20 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_MAX_QUESTIONS must be between 2 and 20, got %d", cfg.InterviewCfg.MaxQuestions))
	}

	if cfg.InterviewCfg.ConceptCount < 1 || cfg.InterviewCfg.ConceptCount > 10 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_CONCEPT_COUNT must be between 1 and 10, got %d", cfg.InterviewCfg.ConceptCount))
	}

	if cfg.InterviewCfg.FeatureCount < 1 || cfg.InterviewCfg.FeatureCount > 10 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_FEATURE_COUNT must be between 1 and 10, got %d", cfg.InterviewCfg.FeatureCount))
	}

	if cfg.ConversationTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("CONVERSATION_TTL must be at least 1m, got %s", cfg.ConversationTTL))
	}

	if cfg.LLMGatewayCfg.MaxTokens < 1 || cfg.LLMGatewayCfg.MaxTokens > 32768 {
		errors = append(errors, fmt.Sprintf("LLM_MAX_TOKENS must be between 1 and 32768, got %d", cfg.LLMGatewayCfg.MaxTokens))
	}

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
