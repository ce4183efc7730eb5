package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// CreateChannelInput carries a validated channel creation request.
type CreateChannelInput struct {
	Name        string
	Description string
	Type        string
	Avatar      string
	CreatorID   string
}

type ChannelService interface {
	Create(ctx context.Context, input CreateChannelInput) (*domain.Channel, error)
	Get(ctx context.Context, id string) (*domain.Channel, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Channel, error)
	// Delete removes the channel. Only the creator may delete it.
	Delete(ctx context.Context, id, requesterID string) error
}
