package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/loqui/chat-system/internal/core/domain"
)

const channelColumns = "channel_id, name, description, type, avatar, creator_id, created_at"

type ChannelRepository struct {
	db *sql.DB
}

func NewChannelRepository(db *sql.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	query := `
		INSERT INTO channels (channel_id, name, description, type, avatar, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		channel.ID,
		channel.Name,
		nullable(channel.Description),
		string(channel.Type),
		nullable(channel.Avatar),
		channel.CreatorID,
		channel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

func (r *ChannelRepository) FindByID(ctx context.Context, id string) (*domain.Channel, error) {
	query := fmt.Sprintf(`SELECT %s FROM channels WHERE channel_id = $1`, channelColumns)

	channel, err := scanChannel(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, fmt.Errorf("find channel: %w", err)
	}
	return channel, nil
}

func (r *ChannelRepository) List(ctx context.Context, limit, offset int) ([]*domain.Channel, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM channels
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, channelColumns)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var channels []*domain.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}

// Delete removes the channel; messages and their contents go with it via
// ON DELETE CASCADE.
func (r *ChannelRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE channel_id = $1`, id); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

func scanChannel(row rowScanner) (*domain.Channel, error) {
	var (
		channel             domain.Channel
		description, avatar sql.NullString
		channelType         string
	)
	if err := row.Scan(
		&channel.ID,
		&channel.Name,
		&description,
		&channelType,
		&avatar,
		&channel.CreatorID,
		&channel.CreatedAt,
	); err != nil {
		return nil, err
	}
	channel.Description = description.String
	channel.Avatar = avatar.String
	channel.Type = domain.ChannelType(channelType)
	return &channel, nil
}
