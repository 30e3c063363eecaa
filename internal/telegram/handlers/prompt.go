package handlers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/pkg/logger"
	"github.com/futig/concept-interview/internal/telegram/render"
	"github.com/futig/concept-interview/internal/telegram/state"
)

// PromptHandler handles free-text messages. The only text the bot accepts is
// the initial app idea; everything after that goes through inline buttons.
type PromptHandler struct {
	*BaseHandler
}

// NewPromptHandler creates a prompt handler
func NewPromptHandler(base *BaseHandler) *PromptHandler {
	return &PromptHandler{BaseHandler: base}
}

// Handle submits the user's idea and renders the first question
func (h *PromptHandler) Handle(ctx context.Context, msg *Message) {
	session, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil || session.ConversationID == "" {
		session, err = h.startSession(ctx, msg)
		if err != nil {
			h.HandleError(ctx, msg.ChatID, err)
			return
		}
	}

	ctx = logger.WithConversation(ctx, session.ConversationID)

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	conv, err := h.usecase.SubmitPrompt(ctx, session.ConversationID, msg.Text)
	typing.Stop()

	if err != nil {
		if errors.Is(err, entity.ErrWrongStage) {
			h.messageSender.Send(msg.ChatID, render.MsgUseButtons, nil)
			return
		}
		if errors.Is(err, entity.ErrConversationNotFound) {
			// The in-memory conversation expired while the telegram session survived
			h.stateManager.DeleteSession(ctx, msg.UserID)
		}
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.sendQuestion(ctx, msg, conv)
}

// startSession creates a fresh conversation and binds it to the telegram user
func (h *PromptHandler) startSession(ctx context.Context, msg *Message) (*state.Session, error) {
	conv, err := h.usecase.StartConversation(ctx)
	if err != nil {
		return nil, err
	}

	session, err := h.stateManager.BindConversation(ctx, msg.UserID, msg.ChatID, conv.ID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("bound new conversation to telegram user",
		zap.Int64("user_id", msg.UserID),
		zap.String("conversation_id", conv.ID),
	)

	return session, nil
}

// sendQuestion posts the question text with its options keyboard and remembers
// the keyboard message for in-place edits
func (h *PromptHandler) sendQuestion(ctx context.Context, msg *Message, conv *entity.Conversation) {
	var markup interface{} = h.keyboard.ChoicesKeyboard(conv.Choices)
	messageID, err := h.messageSender.Send(msg.ChatID, render.Question(conv, h.usecase.MaxQuestions()), markup)
	if err != nil {
		return
	}

	if err := h.stateManager.SetKeyboardMessage(ctx, msg.UserID, messageID); err != nil {
		h.logger.Warn("failed to remember keyboard message",
			zap.Error(err),
			zap.Int64("user_id", msg.UserID),
		)
	}
}

// HandleStart greets the user on /start
func (h *PromptHandler) HandleStart(ctx context.Context, msg *Message) {
	var markup interface{} = h.keyboard.StartKeyboard()
	if _, err := h.messageSender.Send(msg.ChatID, render.MsgWelcome, markup); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}
}

// HandleReset discards the current interview on /reset
func (h *PromptHandler) HandleReset(ctx context.Context, msg *Message) {
	session, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil || session.ConversationID == "" {
		h.messageSender.Send(msg.ChatID, render.MsgNoSession, nil)
		return
	}

	if _, err := h.usecase.Reset(ctx, session.ConversationID); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.messageSender.Send(msg.ChatID, render.MsgReset, nil)
}
