package entity

import "errors"

// Domain errors
var (
	// Input errors
	ErrEmptyInput     = errors.New("input is empty")
	ErrPromptRejected = errors.New("prompt rejected by classifier")
	ErrNoSelection    = errors.New("no options selected")
	ErrChoiceNotFound = errors.New("choice not found")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrWrongStage           = errors.New("operation not allowed in current stage")
	ErrNoConcepts           = errors.New("concepts not available")

	// Gateway errors
	ErrGatewayUnavailable = errors.New("llm gateway unavailable")
	ErrMalformedResponse  = errors.New("malformed llm response")

	// Validation errors
	ErrMissingField  = errors.New("required field is missing")
	ErrInvalidFormat = errors.New("invalid format")
)
