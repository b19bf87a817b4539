package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PriceSim/internal/domain/models"
	"PriceSim/internal/domain/repository"
	"PriceSim/pkg/cache"
)

const sessionKeyPrefix = "session"

// CacheSessionStore implements SessionStore on top of pkg/cache. Every save
// refreshes the TTL.
type CacheSessionStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheSessionStore creates a session store.
func NewCacheSessionStore(c cache.Service, ttl time.Duration) repository.SessionStore {
	return &CacheSessionStore{cache: c, ttl: ttl}
}

func (s *CacheSessionStore) Save(ctx context.Context, sess models.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = time.Now().UTC()
	}
	if err := s.cache.Set(ctx, cache.GenerateKey(sessionKeyPrefix, sess.ID), sess, s.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *CacheSessionStore) Load(ctx context.Context, id string) (models.Session, error) {
	sess, err := cache.GetTyped[models.Session](ctx, s.cache, cache.GenerateKey(sessionKeyPrefix, id))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.Session{}, repository.ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("read session: %w", err)
	}
	return sess, nil
}
