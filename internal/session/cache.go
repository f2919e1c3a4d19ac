package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a write-through in-memory session cache keyed by user id.
// Sessions are loaded lazily on first contact, mutated in place by the
// conversation flow, flushed after every mutation and again at shutdown.
// Eviction is safe because every mutation is flushed before handlers return;
// an evicted user only loses a transient pending-input tag.
type Cache struct {
	store Store
	lru   *lru.Cache[int64, *Session]
}

// NewCache creates a cache over the given store.
func NewCache(store Store, size int) (*Cache, error) {
	if size <= 0 {
		size = 512
	}
	l, err := lru.New[int64, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Cache{store: store, lru: l}, nil
}

// Get returns the user's session, loading it from the store or creating
// (and persisting) a fresh one on first contact.
func (c *Cache) Get(ctx context.Context, userID int64) (*Session, error) {
	if s, ok := c.lru.Get(userID); ok {
		return s, nil
	}

	s, err := c.store.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		s = New(userID)
		if putErr := c.store.Put(ctx, s); putErr != nil {
			slog.Warn("failed to persist new session", "user_id", userID, "error", putErr)
		} else {
			slog.Info("created new session", "user_id", userID)
		}
	case err != nil:
		return nil, err
	default:
		slog.Debug("loaded session from store", "user_id", userID)
	}

	c.lru.Add(userID, s)
	return s, nil
}

// Flush writes the cached session through to the store. A failure is logged
// and reported via the return value; the in-memory session stays the source
// of truth for the rest of the process lifetime.
func (c *Cache) Flush(ctx context.Context, userID int64) bool {
	s, ok := c.lru.Get(userID)
	if !ok {
		return false
	}
	if err := c.store.Put(ctx, s); err != nil {
		slog.Error("failed to save session", "user_id", userID, "error", err)
		return false
	}
	return true
}

// FlushAll writes every cached session to the store. Called at shutdown.
func (c *Cache) FlushAll(ctx context.Context) {
	saved := 0
	for _, userID := range c.lru.Keys() {
		if c.Flush(ctx, userID) {
			saved++
		}
	}
	slog.Info("flushed all sessions", "saved", saved, "cached", c.lru.Len())
}
