package state

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStorage keeps telegram sessions in process memory with TTL
// eviction, mirroring the lifetime of the conversations they point at.
type MemoryStorage struct {
	cache *gocache.Cache
}

func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{
		cache: gocache.New(ttl, ttl/2),
	}
}

func (s *MemoryStorage) Get(_ context.Context, userID int64) (*Session, error) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, ErrSessionNotFound
	}

	session, ok := v.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

func (s *MemoryStorage) Set(_ context.Context, session *Session) error {
	copied := *session
	s.cache.SetDefault(key(session.UserID), &copied)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(key(userID))
	return nil
}

func key(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}
