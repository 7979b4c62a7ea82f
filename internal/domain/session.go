package domain

import (
	"context"
	"time"
)

// SessionStore persists SessionHistory blobs keyed by session id. Each
// backend applies its own expiry to the whole session.
type SessionStore interface {
	// Load returns ErrSessionNotFound for unknown or expired sessions.
	Load(ctx context.Context, id string) (*SessionHistory, error)

	// Save writes the session and (re)sets its expiry to ttl from now.
	Save(ctx context.Context, session *SessionHistory, ttl time.Duration) error

	Delete(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error
	Close() error
}
