package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/loqui/chat-system/internal/core/domain"
	"github.com/loqui/chat-system/internal/core/ports"
)

type MessageService struct {
	messages ports.MessageRepository
	channels ports.ChannelRepository
	logger   zerolog.Logger
}

func NewMessageService(messages ports.MessageRepository, channels ports.ChannelRepository, logger zerolog.Logger) *MessageService {
	return &MessageService{messages: messages, channels: channels, logger: logger}
}

// Post creates a message with its ordered content parts in the given
// channel. The message and all content rows are written atomically.
func (s *MessageService) Post(ctx context.Context, input ports.PostMessageInput) (*domain.Message, error) {
	if len(input.Texts) == 0 && len(input.Files) == 0 {
		return nil, domain.ErrEmptyMessage
	}

	if _, err := s.channels.FindByID(ctx, input.ChannelID); err != nil {
		return nil, err
	}

	now := nowUTC()
	message := &domain.Message{
		ID:        newID(),
		ChannelID: input.ChannelID,
		CreatorID: input.CreatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, part := range input.Texts {
		message.TextContents = append(message.TextContents, domain.TextContent{
			ID:        newID(),
			MessageID: message.ID,
			Content:   part.Content,
			Order:     part.Order,
		})
	}
	for _, part := range input.Files {
		message.FileContents = append(message.FileContents, domain.FileContent{
			ID:        newID(),
			MessageID: message.ID,
			URL:       part.URL,
			Name:      part.Name,
			Size:      part.Size,
			MimeType:  part.MimeType,
			Order:     part.Order,
		})
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.logger.Info().
		Str("message_id", message.ID).
		Str("channel_id", message.ChannelID).
		Int("parts", len(message.TextContents)+len(message.FileContents)).
		Msg("message posted")
	return message, nil
}

func (s *MessageService) Get(ctx context.Context, id string) (*domain.Message, error) {
	return s.messages.FindByID(ctx, id)
}

// ListByChannel returns the channel's messages oldest first, with
// contents attached. An unknown channel is a not-found error rather
// than an empty page.
func (s *MessageService) ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]*domain.Message, error) {
	if _, err := s.channels.FindByID(ctx, channelID); err != nil {
		return nil, err
	}
	return s.messages.ListByChannel(ctx, channelID, clampLimit(limit), max(offset, 0))
}

// Delete removes a message and its content rows. Only the creator may
// delete a message.
func (s *MessageService) Delete(ctx context.Context, id, requesterID string) error {
	message, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if message.CreatorID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	s.logger.Info().Str("message_id", id).Msg("message deleted")
	return nil
}
