package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a telegram user has no stored session
var ErrSessionNotFound = errors.New("telegram session not found")

// Manager manages telegram sessions
type Manager struct {
	storage Storage
}

// NewManager creates a new state manager
func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
	}
}

// GetSession retrieves a telegram session from storage
func (m *Manager) GetSession(ctx context.Context, userID int64) (*Session, error) {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get telegram session from storage: %w", err)
	}

	return session, nil
}

// SetSession saves a telegram session to storage
func (m *Manager) SetSession(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now()

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save telegram session to storage: %w", err)
	}

	return nil
}

// DeleteSession removes a telegram session from storage
func (m *Manager) DeleteSession(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session from storage: %w", err)
	}

	return nil
}

// BindConversation creates or updates the user's session to point at the
// given conversation
func (m *Manager) BindConversation(ctx context.Context, userID, chatID int64, conversationID string) (*Session, error) {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		session = &Session{
			UserID:    userID,
			ChatID:    chatID,
			CreatedAt: time.Now(),
		}
	}

	session.ChatID = chatID
	session.ConversationID = conversationID
	session.KeyboardMessageID = 0

	if err := m.SetSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// SetKeyboardMessage remembers which message currently carries the inline
// keyboard so toggles can edit it in place
func (m *Manager) SetKeyboardMessage(ctx context.Context, userID int64, messageID int) error {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	session.KeyboardMessageID = messageID
	return m.SetSession(ctx, session)
}
