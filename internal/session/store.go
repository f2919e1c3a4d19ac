package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when a user has no saved session.
var ErrNotFound = errors.New("session not found")

// Store persists user sessions. The pending-input tag is transient and is
// never stored: loaded sessions always come back idle.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Close() error
}
