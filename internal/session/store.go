package session

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps sessions for a limited time.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
