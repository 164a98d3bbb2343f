package domain

import (
	"context"
	"time"
)

// SessionStore persists the client-local user session blob
type SessionStore interface {
	// LoadSession returns the persisted session, false if none
	LoadSession() (*UserSession, bool, error)

	// SaveSession replaces the persisted session
	SaveSession(s *UserSession) error

	// ClearSession removes the persisted session
	ClearSession() error

	Close() error
}

// ResponseCache keeps upstream payloads for a short revalidation window
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Close() error
}
