package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/pkg/logger"
	"github.com/futig/concept-interview/internal/pkg/response"
)

// maxProxyBodySize bounds pass-through request bodies (1 MiB)
const maxProxyBodySize = 1 << 20

type LLMForwarder interface {
	ForwardCompletion(ctx context.Context, payload []byte) (int, []byte, error)
}

// Handler is a thin pass-through to the chat-completions upstream. It never
// touches conversation state.
type Handler struct {
	forwarder LLMForwarder
}

func NewHandler(forwarder LLMForwarder) *Handler {
	return &Handler{forwarder: forwarder}
}

// Complete handles POST /api/llm - Forward a completion request upstream
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ProxyComplete")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBodySize))
	if err != nil {
		ctxzap.Error(ctx, "failed to read request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req entity.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		ctxzap.Error(ctx, "invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Model == "" || len(req.Messages) == 0 {
		response.Error(w, http.StatusBadRequest, "model and messages are required")
		return
	}

	ctxzap.Info(ctx, "forwarding completion request",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	status, upstreamBody, err := h.forwarder.ForwardCompletion(ctx, body)
	if err != nil {
		ctxzap.Error(ctx, "upstream request failed", zap.Error(err))
		response.Error(w, http.StatusBadGateway, "llm gateway unavailable")
		return
	}

	// Upstream errors pass through with their original status
	if status < 200 || status >= 300 {
		ctxzap.Warn(ctx, "upstream returned error status", zap.Int("status", status))
		response.Error(w, status, string(upstreamBody))
		return
	}

	var completion entity.ChatCompletionResponse
	if err := json.Unmarshal(upstreamBody, &completion); err != nil || len(completion.Choices) == 0 {
		ctxzap.Error(ctx, "malformed upstream response", zap.Error(err))
		response.Error(w, http.StatusBadGateway, "malformed upstream response")
		return
	}

	response.Success(w, completion.Choices[0])
}

// RegisterRoutes registers the proxy route
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/llm", h.Complete)
}
