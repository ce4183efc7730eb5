package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// UserService exposes cross-user profile lookups.
type UserService interface {
	// GetPublic returns the public projection of an account, or
	// domain.ErrUserNotFound.
	GetPublic(ctx context.Context, id string) (*domain.PublicUser, error)
}
