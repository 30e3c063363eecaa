package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/telegram/keyboard"
	"github.com/futig/concept-interview/internal/telegram/state"
)

// Message is a normalized incoming update
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	CallbackData string
	CallbackID   string
}

// BaseHandler carries the dependencies shared by all handlers
type BaseHandler struct {
	api           *tgbotapi.BotAPI
	messageSender *MessageSender
	stateManager  *state.Manager
	usecase       ConversationUsecase
	keyboard      *keyboard.Builder
	logger        *zap.Logger
}

// NewBaseHandler creates the shared handler base
func NewBaseHandler(
	api *tgbotapi.BotAPI,
	stateManager *state.Manager,
	usecase ConversationUsecase,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *BaseHandler {
	return &BaseHandler{
		api:           api,
		messageSender: NewMessageSender(api, logger),
		stateManager:  stateManager,
		usecase:       usecase,
		keyboard:      kb,
		logger:        logger,
	}
}
