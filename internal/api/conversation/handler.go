package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/pkg/formatter"
	"github.com/futig/concept-interview/internal/pkg/logger"
	"github.com/futig/concept-interview/internal/pkg/validator"
)

type Handler struct {
	usecase   ConversationUsecase
	validator *validator.Validator
	formats   *formatter.Factory
}

func NewHandler(usecase ConversationUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
		formats:   formatter.NewFactory(),
	}
}

// CreateConversation handles POST /conversations - Start a new conversation
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateConversation")

	conversation, err := h.usecase.StartConversation(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "conversation created", zap.String("conversation_id", conversation.ID))

	h.respondJSON(w, http.StatusCreated, toConversationDTO(conversation, h.usecase.MaxQuestions()))
}

// GetConversation handles GET /conversations/{id} - Get conversation snapshot
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "GetConversation"),
	)

	ctxzap.Debug(ctx, "fetching conversation")

	conversation, err := h.usecase.GetConversation(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toConversationDTO(conversation, h.usecase.MaxQuestions()))
}

// SubmitPrompt handles POST /conversations/{id}/prompt - Submit the app idea
func (h *Handler) SubmitPrompt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "SubmitPrompt"),
	)

	var req entity.SubmitPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitPrompt(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "submitting idea prompt", zap.Int("prompt_length", len(req.Prompt)))

	conversation, err := h.usecase.SubmitPrompt(ctx, conversationID, req.Prompt)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "prompt accepted, first question issued")

	h.respondJSON(w, http.StatusOK, toConversationDTO(conversation, h.usecase.MaxQuestions()))
}

// ToggleChoice handles POST /conversations/{id}/choices/toggle - Toggle one option
func (h *Handler) ToggleChoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "ToggleChoice"),
	)

	var req entity.ToggleChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateToggleChoice(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		h.handleUsecaseError(ctx, w, err)
		return
	}

	conversation, err := h.usecase.ToggleChoice(ctx, conversationID, req.Label)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toConversationDTO(conversation, h.usecase.MaxQuestions()))
}

// SubmitSelections handles POST /conversations/{id}/submit - Submit selected options
func (h *Handler) SubmitSelections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "SubmitSelections"),
	)

	ctxzap.Info(ctx, "submitting selections")

	conversation, err := h.usecase.SubmitSelections(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "selections submitted",
		zap.String("stage", string(conversation.Stage)),
		zap.Int("question_count", conversation.QuestionCount),
	)

	h.respondJSON(w, http.StatusOK, toConversationDTO(conversation, h.usecase.MaxQuestions()))
}

// RequestMoreOptions handles POST /conversations/{id}/options/more - Extra options
func (h *Handler) RequestMoreOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "RequestMoreOptions"),
	)

	ctxzap.Info(ctx, "requesting extra options")

	conversation, err := h.usecase.RequestMoreOptions(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toConversationDTO(conversation, h.usecase.MaxQuestions()))
}

// Reset handles POST /conversations/{id}/reset - Reset to the initial stage
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "Reset"),
	)

	ctxzap.Info(ctx, "resetting conversation")

	conversation, err := h.usecase.Reset(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toConversationDTO(conversation, h.usecase.MaxQuestions()))
}

// ExportConcepts handles GET /conversations/{id}/concepts - Download concepts
func (h *Handler) ExportConcepts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "ExportConcepts"),
	)

	format, err := h.validator.ValidateResultFormat(r.URL.Query().Get("format"))
	if err != nil {
		ctxzap.Warn(ctx, "invalid format parameter", zap.Error(err))
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("format", string(format)))
	ctxzap.Debug(ctx, "exporting concepts")

	concepts, err := h.usecase.GetConcepts(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	fmtr, err := h.formats.Create(format)
	if err != nil {
		ctxzap.Error(ctx, "format not implemented", zap.Error(err))
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	result, err := fmtr.Format(concepts)
	if err != nil {
		ctxzap.Error(ctx, "failed to format concepts", zap.Error(err))
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format concepts", err)
		return
	}

	ctxzap.Info(ctx, "concepts exported")
	w.Header().Set("Content-Type", fmtr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"concepts-%s%s\"", conversationID, fmtr.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(result)
}

// ListConcepts handles GET /concepts - List archived concepts
func (h *Handler) ListConcepts(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListConcepts")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(ctx, w, http.StatusBadRequest, "invalid limit parameter", err)
			return
		}
		limit = parsed
	}

	concepts, err := h.usecase.ListArchivedConcepts(ctx, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	dtos := make([]entity.AppConceptDTO, 0, len(concepts))
	for i := range concepts {
		dtos = append(dtos, toAppConceptDTO(&concepts[i]))
	}

	h.respondJSON(w, http.StatusOK, dtos)
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrConversationNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "conversation not found", err)
	case errors.Is(err, entity.ErrEmptyInput) || errors.Is(err, entity.ErrNoSelection) ||
		errors.Is(err, entity.ErrChoiceNotFound) || errors.Is(err, entity.ErrMissingField) ||
		errors.Is(err, entity.ErrInvalidFormat):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request", err)
	case errors.Is(err, entity.ErrPromptRejected):
		h.respondError(ctx, w, http.StatusUnprocessableEntity, "prompt rejected", err)
	case errors.Is(err, entity.ErrWrongStage) || errors.Is(err, entity.ErrNoConcepts):
		h.respondError(ctx, w, http.StatusConflict, "invalid conversation state", err)
	case errors.Is(err, entity.ErrGatewayUnavailable) || errors.Is(err, entity.ErrMalformedResponse):
		h.respondError(ctx, w, http.StatusBadGateway, "llm gateway error", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
