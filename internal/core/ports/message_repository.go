package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// MessageRepository persists messages and their ordered content rows.
type MessageRepository interface {
	// Create inserts the message and all its content rows atomically.
	Create(ctx context.Context, message *domain.Message) error
	// FindByID returns the message with contents attached, or
	// domain.ErrMessageNotFound.
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// ListByChannel returns messages oldest first with contents attached.
	ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]*domain.Message, error)
	// Delete removes the message; content rows cascade.
	Delete(ctx context.Context, id string) error
}
