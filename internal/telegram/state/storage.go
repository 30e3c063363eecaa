package state

import (
	"context"
	"time"
)

// Session maps a telegram user to their interview conversation plus the
// chat-specific UI state needed to keep the keyboard message editable.
type Session struct {
	UserID         int64     `json:"user_id"`
	ChatID         int64     `json:"chat_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	// Message carrying the current inline keyboard, edited in place on
	// toggles instead of reposting the question.
	KeyboardMessageID int       `json:"keyboard_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Storage defines the interface for telegram session persistence
type Storage interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Set(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID int64) error
}
