package telegram

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/config"
	"github.com/futig/concept-interview/internal/telegram/bot"
	"github.com/futig/concept-interview/internal/telegram/handlers"
	"github.com/futig/concept-interview/internal/telegram/state"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies. Session TTL
// matches the conversation TTL so both expire together.
func NewBot(
	cfg *config.TelegramConfig,
	sessionTTL time.Duration,
	usecase handlers.ConversationUsecase,
	logger *zap.Logger,
) (Bot, error) {
	storage := state.NewMemoryStorage(sessionTTL)
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, usecase, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("telegram bot initialized successfully")

	return b, nil
}
