package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/loqui/chat-system/internal/core/domain"
	"github.com/loqui/chat-system/internal/core/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type ChannelService struct {
	repo   ports.ChannelRepository
	logger zerolog.Logger
}

func NewChannelService(repo ports.ChannelRepository, logger zerolog.Logger) *ChannelService {
	return &ChannelService{repo: repo, logger: logger}
}

func (s *ChannelService) Create(ctx context.Context, input ports.CreateChannelInput) (*domain.Channel, error) {
	channelType := domain.ChannelType(input.Type)
	if input.Type == "" {
		channelType = domain.ChannelPublic
	}
	if !channelType.Valid() {
		return nil, fmt.Errorf("unknown channel type %q", input.Type)
	}

	channel := &domain.Channel{
		ID:          newID(),
		Name:        input.Name,
		Description: input.Description,
		Type:        channelType,
		Avatar:      input.Avatar,
		CreatorID:   input.CreatorID,
		CreatedAt:   nowUTC(),
	}

	if err := s.repo.Create(ctx, channel); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}

	s.logger.Info().Str("channel_id", channel.ID).Str("creator_id", channel.CreatorID).Msg("channel created")
	return channel, nil
}

func (s *ChannelService) Get(ctx context.Context, id string) (*domain.Channel, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ChannelService) List(ctx context.Context, limit, offset int) ([]*domain.Channel, error) {
	return s.repo.List(ctx, clampLimit(limit), max(offset, 0))
}

// Delete removes a channel and, via cascade, every message in it. Only
// the creator may delete a channel.
func (s *ChannelService) Delete(ctx context.Context, id, requesterID string) error {
	channel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if channel.CreatorID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	s.logger.Info().Str("channel_id", id).Msg("channel deleted")
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
