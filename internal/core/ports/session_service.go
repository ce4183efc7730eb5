package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// RegisterInput carries a validated registration request. Email and
// phone are optional; empty means not provided.
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
}

// SessionService is the sole entry point for authentication. Register
// and Login return the account together with a freshly issued opaque
// token for the caller to set as the session cookie.
type SessionService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, loginText, password string) (*domain.User, string, error)

	// Verify resolves a presented token to its owning account, failing
	// with domain.ErrInvalidSession for an unknown or expired token.
	Verify(ctx context.Context, token string) (*domain.User, error)

	// Logout revokes the token. Revoking an absent token is a no-op.
	Logout(ctx context.Context, token string) error
}
