package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/futig/concept-interview/internal/entity"
)

type ConversationRepository interface {
	Save(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	Delete(ctx context.Context, id string) error
}

// ConversationMemory keeps live conversations in process memory only.
// Abandoned conversations expire after the TTL; a completed interview
// survives in the concept archive, never here.
type ConversationMemory struct {
	cache *gocache.Cache
}

func NewConversationMemory(ttl time.Duration) *ConversationMemory {
	return &ConversationMemory{
		cache: gocache.New(ttl, ttl/2),
	}
}

// Save stores a deep copy so later mutations by the caller cannot leak into
// the stored state.
func (r *ConversationMemory) Save(_ context.Context, conversation *entity.Conversation) error {
	r.cache.SetDefault(conversation.ID, cloneConversation(conversation))
	return nil
}

func (r *ConversationMemory) GetByID(_ context.Context, id string) (*entity.Conversation, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, entity.ErrConversationNotFound
	}

	stored, ok := v.(*entity.Conversation)
	if !ok {
		return nil, entity.ErrConversationNotFound
	}

	return cloneConversation(stored), nil
}

func (r *ConversationMemory) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	clone := *c

	clone.Messages = append([]entity.Message(nil), c.Messages...)
	clone.Choices = append([]entity.Choice(nil), c.Choices...)
	clone.SelectedLabels = append([]string(nil), c.SelectedLabels...)

	if c.Concepts != nil {
		clone.Concepts = make([]entity.AppConcept, len(c.Concepts))
		for i, concept := range c.Concepts {
			clone.Concepts[i] = concept
			clone.Concepts[i].Features = append([]entity.KeyFeature(nil), concept.Features...)
		}
	}

	return &clone
}
