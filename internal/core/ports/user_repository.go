package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// UserRepository persists accounts and resolves login identifiers.
type UserRepository interface {
	// Create inserts a new account. Storage-level unique constraints are
	// the final authority on username/email/phone collisions; violations
	// surface as domain.ErrUsernameTaken / ErrEmailTaken / ErrPhoneTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByLogin returns every account whose username, email, or phone
	// equals loginText. The result is a list, never a single optional
	// row: one identifier can legitimately match several accounts across
	// the three uniqueness domains. An empty result is not an error.
	// Result order is unspecified.
	FindByLogin(ctx context.Context, loginText string) ([]*domain.User, error)

	// Advisory pre-registration probes. They keep conflict reporting
	// deterministic but are not transactional guards; Create's constraint
	// mapping handles the race.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}
