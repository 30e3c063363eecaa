package handlers

import (
	"context"

	"github.com/futig/concept-interview/internal/entity"
)

// ConversationUsecase is the controller surface the bot drives, the same one
// behind the HTTP API
type ConversationUsecase interface {
	StartConversation(ctx context.Context) (*entity.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*entity.Conversation, error)
	SubmitPrompt(ctx context.Context, conversationID, prompt string) (*entity.Conversation, error)
	ToggleChoice(ctx context.Context, conversationID, label string) (*entity.Conversation, error)
	SubmitSelections(ctx context.Context, conversationID string) (*entity.Conversation, error)
	RequestMoreOptions(ctx context.Context, conversationID string) (*entity.Conversation, error)
	Reset(ctx context.Context, conversationID string) (*entity.Conversation, error)
	GetConcepts(ctx context.Context, conversationID string) ([]entity.AppConcept, error)
	MaxQuestions() int
}
