package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/concept-interview/internal/entity"
)

func TestConversationMemorySaveAndGet(t *testing.T) {
	repo := NewConversationMemory(time.Hour)
	ctx := context.Background()

	conv := &entity.Conversation{
		ID:    "conv-1",
		Stage: entity.StageInProgress,
		Messages: []entity.Message{
			{Seq: 1, Author: entity.AuthorUser, Text: "idea"},
		},
		Choices: []entity.Choice{
			{Label: "A", Selected: true},
			{Label: "B"},
		},
		SelectedLabels: []string{"A"},
		QuestionCount:  1,
	}

	require.NoError(t, repo.Save(ctx, conv))

	loaded, err := repo.GetByID(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, loaded.ID)
	assert.Equal(t, conv.Stage, loaded.Stage)
	assert.Equal(t, conv.Messages, loaded.Messages)
	assert.Equal(t, conv.Choices, loaded.Choices)
}

func TestConversationMemoryGetMissing(t *testing.T) {
	repo := NewConversationMemory(time.Hour)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}

func TestConversationMemoryIsolation(t *testing.T) {
	repo := NewConversationMemory(time.Hour)
	ctx := context.Background()

	conv := &entity.Conversation{
		ID:      "conv-1",
		Stage:   entity.StageInProgress,
		Choices: []entity.Choice{{Label: "A"}},
	}
	require.NoError(t, repo.Save(ctx, conv))

	// Mutating the caller's copy must not leak into the store
	conv.Choices[0].Selected = true
	conv.Stage = entity.StageCompleted

	loaded, err := repo.GetByID(ctx, "conv-1")
	require.NoError(t, err)
	assert.False(t, loaded.Choices[0].Selected)
	assert.Equal(t, entity.StageInProgress, loaded.Stage)

	// Mutating a loaded copy must not leak either
	loaded.Choices[0].Label = "changed"

	reloaded, err := repo.GetByID(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "A", reloaded.Choices[0].Label)
}

func TestConversationMemoryDelete(t *testing.T) {
	repo := NewConversationMemory(time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &entity.Conversation{ID: "conv-1"}))
	require.NoError(t, repo.Delete(ctx, "conv-1"))

	_, err := repo.GetByID(ctx, "conv-1")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}

func TestConversationMemoryTTL(t *testing.T) {
	repo := NewConversationMemory(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &entity.Conversation{ID: "conv-1"}))

	time.Sleep(80 * time.Millisecond)

	_, err := repo.GetByID(ctx, "conv-1")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}
