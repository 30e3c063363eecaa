package handlers

import (
	"context"
	"errors"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/telegram/render"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
	SeverityCritical
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError analyzes an error and returns a HandlerError with appropriate severity and messages
func classifyHandlerError(err error) *HandlerError {
	if err == nil {
		return &HandlerError{
			Err:         nil,
			UserMessage: render.ErrGeneric,
			LogMessage:  "unknown error",
			Severity:    SeverityWarning,
		}
	}

	// Domain errors the user can act on
	switch {
	case errors.Is(err, entity.ErrConversationNotFound):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgNoSession,
			LogMessage:  "conversation not found",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrPromptRejected):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgPromptRejected,
			LogMessage:  "prompt rejected",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrEmptyInput):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgAskIdea,
			LogMessage:  "empty prompt",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrNoSelection):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgNoSelection,
			LogMessage:  "no options selected",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrWrongStage):
		return &HandlerError{
			Err:         err,
			UserMessage: render.MsgNoSession,
			LogMessage:  "action not allowed at current stage",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrGatewayUnavailable), errors.Is(err, entity.ErrMalformedResponse):
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrGateway,
			LogMessage:  "model gateway failed",
			Severity:    SeverityError,
		}
	}

	// Timeouts
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrTimeout,
			LogMessage:  "operation timed out",
			Severity:    SeverityError,
		}
	}

	// Network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &HandlerError{
				Err:         err,
				UserMessage: render.ErrTimeout,
				LogMessage:  "network timeout",
				Severity:    SeverityError,
			}
		}
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrNetworkIssue,
			LogMessage:  "network error",
			Severity:    SeverityError,
		}
	}

	// Default to generic error
	return &HandlerError{
		Err:         err,
		UserMessage: render.ErrGeneric,
		LogMessage:  "handler error",
		Severity:    SeverityError,
	}
}

// HandleError provides centralized error handling for all handlers
// It logs the error with appropriate severity and sends a user-friendly message
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	switch handlerErr.Severity {
	case SeverityCritical, SeverityError:
		ctxzap.Error(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	case SeverityWarning:
		ctxzap.Warn(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	}

	if h.messageSender != nil {
		h.messageSender.Send(chatID, handlerErr.UserMessage, nil)
	}
}
