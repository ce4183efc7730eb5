package ports

import (
	"context"

	"github.com/loqui/chat-system/internal/core/domain"
)

// TextPartInput is one text segment of a new message.
type TextPartInput struct {
	Content string
	Order   int
}

// FilePartInput is one file attachment of a new message.
type FilePartInput struct {
	URL      string
	Name     string
	Size     int64
	MimeType string
	Order    int
}

// PostMessageInput carries a validated message creation request. At
// least one part must be present.
type PostMessageInput struct {
	ChannelID string
	CreatorID string
	Texts     []TextPartInput
	Files     []FilePartInput
}

type MessageService interface {
	Post(ctx context.Context, input PostMessageInput) (*domain.Message, error)
	Get(ctx context.Context, id string) (*domain.Message, error)
	ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]*domain.Message, error)
	// Delete removes the message. Only the creator may delete it.
	Delete(ctx context.Context, id, requesterID string) error
}
