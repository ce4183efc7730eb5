package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// SessionRepository persists session tokens keyed by the opaque token
// string itself.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error

	// Find returns the session for an exact token match, or
	// domain.ErrSessionNotFound. Expiry is not evaluated here; the
	// session service checks it.
	Find(ctx context.Context, token string) (*domain.Session, error)

	// Touch sets the session's last-used timestamp to now. Callers treat
	// it as best-effort observability data; failures are logged, never
	// propagated.
	Touch(ctx context.Context, token string) error

	// Delete removes the session if present. Deleting an absent token is
	// not an error.
	Delete(ctx context.Context, token string) error
}
