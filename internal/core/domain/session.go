package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidSession covers a missing, unknown, revoked, or expired
	// token. The cases intentionally collapse into one error so responses
	// do not reveal which applied.
	ErrInvalidSession = errors.New("invalid or expired session")

	ErrSessionNotFound = errors.New("session not found")
)

// Session is a server-side record of an issued bearer token. The token
// string itself is the primary key; it is opaque and carries no payload.
type Session struct {
	Token      string    `json:"-"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given
// instant. Expiry is checked lazily on every verification; expired rows
// are never swept.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
