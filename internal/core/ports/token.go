package ports

import (
	"context"
	"time"

	"github.com/loqui/chat-system/internal/core/domain"
)

// TokenGenerator produces opaque, unguessable session tokens. Tokens are
// lookup keys only; there is no decode operation.
type TokenGenerator interface {
	Generate() (string, error)
}

// PasswordHasher wraps the one-way password hash capability.
type PasswordHasher interface {
	// Hash derives a storable one-way hash of the secret. Failures are
	// internal errors, not validation errors.
	Hash(password string) (string, error)
	// Verify reports whether candidate matches the stored hash. It never
	// returns an error: a malformed hash is a non-match.
	Verify(hash, candidate string) bool
}

// SessionCache is an optional read-through cache in front of the session
// store. Implementations are best-effort: errors are absorbed and the
// database remains authoritative.
type SessionCache interface {
	Get(ctx context.Context, token string) (*domain.Session, *domain.User, bool)
	Set(ctx context.Context, session *domain.Session, user *domain.User)
	Delete(ctx context.Context, token string)
}

// LastUsedRecorder schedules a session's last-used timestamp update
// without blocking the calling request.
type LastUsedRecorder interface {
	Record(token string)
}

// Clock abstracts time.Now for deterministic expiry tests.
type Clock func() time.Time
