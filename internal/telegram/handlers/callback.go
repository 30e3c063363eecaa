package handlers

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/pkg/formatter"
	"github.com/futig/concept-interview/internal/telegram/keyboard"
	"github.com/futig/concept-interview/internal/telegram/render"
	"github.com/futig/concept-interview/internal/telegram/state"
)

// CallbackHandler handles inline keyboard presses
type CallbackHandler struct {
	*BaseHandler
	formats *formatter.Factory
}

// NewCallbackHandler creates a callback handler
func NewCallbackHandler(base *BaseHandler) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: base,
		formats:     formatter.NewFactory(),
	}
}

// Handle routes a callback query to its action
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) {
	h.acknowledge(msg.CallbackID)

	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		h.logger.Warn("unparseable callback data",
			zap.String("data", msg.CallbackData),
			zap.Int64("user_id", msg.UserID),
		)
		return
	}

	switch data.Action {
	case "action":
		h.handleAction(ctx, msg, data.Value)
	case "opt":
		h.handleToggle(ctx, msg, data.Value)
	case "dl":
		h.handleDownload(ctx, msg, data.Value)
	default:
		h.logger.Warn("unknown callback action",
			zap.String("action", data.Action),
			zap.Int64("user_id", msg.UserID),
		)
	}
}

func (h *CallbackHandler) handleAction(ctx context.Context, msg *Message, action string) {
	switch action {
	case "start":
		h.handleStart(ctx, msg)
	case "submit":
		h.handleSubmit(ctx, msg)
	case "more":
		h.handleMoreOptions(ctx, msg)
	case "reset":
		h.handleReset(ctx, msg)
	}
}

// handleStart creates a conversation and asks for the idea
func (h *CallbackHandler) handleStart(ctx context.Context, msg *Message) {
	conv, err := h.usecase.StartConversation(ctx)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	if _, err := h.stateManager.BindConversation(ctx, msg.UserID, msg.ChatID, conv.ID); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.messageSender.Send(msg.ChatID, render.MsgAskIdea, nil)
}

// handleToggle flips the selection of the option at the given index and
// redraws the keyboard in place
func (h *CallbackHandler) handleToggle(ctx context.Context, msg *Message, value string) {
	session, ok := h.activeSession(ctx, msg)
	if !ok {
		return
	}

	index, err := strconv.Atoi(value)
	if err != nil {
		return
	}

	conv, err := h.usecase.GetConversation(ctx, session.ConversationID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}
	if index < 0 || index >= len(conv.Choices) {
		return
	}

	conv, err = h.usecase.ToggleChoice(ctx, session.ConversationID, conv.Choices[index].Label)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.redrawKeyboard(ctx, msg, session, conv)
}

// handleSubmit locks in the selected options and either asks the next
// question or presents the final concepts
func (h *CallbackHandler) handleSubmit(ctx context.Context, msg *Message) {
	session, ok := h.activeSession(ctx, msg)
	if !ok {
		return
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	conv, err := h.usecase.SubmitSelections(ctx, session.ConversationID)
	typing.Stop()

	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	if conv.Stage == entity.StageCompleted {
		var markup interface{} = h.keyboard.ConceptsKeyboard()
		h.messageSender.Send(msg.ChatID, render.Concepts(conv.Concepts), markup)
		return
	}

	var markup interface{} = h.keyboard.ChoicesKeyboard(conv.Choices)
	messageID, err := h.messageSender.Send(msg.ChatID, render.Question(conv, h.usecase.MaxQuestions()), markup)
	if err != nil {
		return
	}
	h.stateManager.SetKeyboardMessage(ctx, msg.UserID, messageID)
}

// handleMoreOptions extends the current question with extra options
func (h *CallbackHandler) handleMoreOptions(ctx context.Context, msg *Message) {
	session, ok := h.activeSession(ctx, msg)
	if !ok {
		return
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	conv, err := h.usecase.RequestMoreOptions(ctx, session.ConversationID)
	typing.Stop()

	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.redrawKeyboard(ctx, msg, session, conv)
}

// handleReset discards the interview state and asks for a new idea
func (h *CallbackHandler) handleReset(ctx context.Context, msg *Message) {
	session, ok := h.activeSession(ctx, msg)
	if !ok {
		return
	}

	if _, err := h.usecase.Reset(ctx, session.ConversationID); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.messageSender.Send(msg.ChatID, render.MsgReset, nil)
}

// handleDownload exports the concepts as a document in the requested format
func (h *CallbackHandler) handleDownload(ctx context.Context, msg *Message, value string) {
	session, ok := h.activeSession(ctx, msg)
	if !ok {
		return
	}

	format := entity.ResultFormat(value)
	if !format.IsValid() {
		return
	}

	concepts, err := h.usecase.GetConcepts(ctx, session.ConversationID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	fmtr, err := h.formats.Create(format)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	data, err := fmtr.Format(concepts)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	name := fmt.Sprintf("concepts%s", fmtr.FileExtension())
	if err := h.messageSender.SendDocument(msg.ChatID, name, data); err != nil {
		h.messageSender.Send(msg.ChatID, render.ErrGeneric, nil)
	}
}

// activeSession loads the user's session or tells them to /start
func (h *CallbackHandler) activeSession(ctx context.Context, msg *Message) (*state.Session, bool) {
	session, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil || session.ConversationID == "" {
		h.messageSender.Send(msg.ChatID, render.MsgNoSession, nil)
		return nil, false
	}
	return session, true
}

// redrawKeyboard updates the options keyboard on the stored question message
func (h *CallbackHandler) redrawKeyboard(ctx context.Context, msg *Message, session *state.Session, conv *entity.Conversation) {
	markup := h.keyboard.ChoicesKeyboard(conv.Choices)

	if session.KeyboardMessageID != 0 {
		if err := h.messageSender.EditMarkup(msg.ChatID, session.KeyboardMessageID, markup); err == nil {
			return
		}
	}

	// The original message is gone, post the question again
	var m interface{} = markup
	messageID, err := h.messageSender.Send(msg.ChatID, render.Question(conv, h.usecase.MaxQuestions()), m)
	if err != nil {
		return
	}
	h.stateManager.SetKeyboardMessage(ctx, msg.UserID, messageID)
}

// acknowledge answers the callback query so the client stops its spinner
func (h *CallbackHandler) acknowledge(callbackID string) {
	if callbackID == "" {
		return
	}
	if _, err := h.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		h.logger.Warn("failed to answer callback query", zap.Error(err))
	}
}
