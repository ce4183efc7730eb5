package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// ChannelRepository persists channels.
type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel) error
	FindByID(ctx context.Context, id string) (*domain.Channel, error)
	// List returns channels newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.Channel, error)
	// Delete removes the channel; messages and their contents cascade.
	Delete(ctx context.Context, id string) error
}
