package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/loqui/chat-system/internal/core/domain"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts the message and all its content rows in a single
// transaction, so a message never exists half-written.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (message_id, channel_id, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, message.ID, message.ChannelID, message.CreatorID, message.CreatedAt, message.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	for _, part := range message.TextContents {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO text_contents (content_id, message_id, content, ord)
			VALUES ($1, $2, $3, $4)
		`, part.ID, part.MessageID, part.Content, part.Order)
		if err != nil {
			return fmt.Errorf("insert text content: %w", err)
		}
	}

	for _, part := range message.FileContents {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO file_contents (content_id, message_id, url, name, size, mime_type, ord)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, part.ID, part.MessageID, part.URL, part.Name, part.Size, part.MimeType, part.Order)
		if err != nil {
			return fmt.Errorf("insert file content: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	query := `
		SELECT message_id, channel_id, creator_id, created_at, updated_at
		FROM messages
		WHERE message_id = $1
	`

	var message domain.Message
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&message.ID,
		&message.ChannelID,
		&message.CreatorID,
		&message.CreatedAt,
		&message.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}

	if err := r.loadContents(ctx, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]*domain.Message, error) {
	query := `
		SELECT message_id, channel_id, creator_id, created_at, updated_at
		FROM messages
		WHERE channel_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, channelID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*domain.Message
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.ChannelID,
			&message.CreatorID,
			&message.CreatedAt,
			&message.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	for _, message := range messages {
		if err := r.loadContents(ctx, message); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

// Delete removes the message; content rows go with it via cascade.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE message_id = $1`, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func (r *MessageRepository) loadContents(ctx context.Context, message *domain.Message) error {
	textRows, err := r.db.QueryContext(ctx, `
		SELECT content_id, message_id, content, ord
		FROM text_contents
		WHERE message_id = $1
		ORDER BY ord ASC
	`, message.ID)
	if err != nil {
		return fmt.Errorf("load text contents: %w", err)
	}
	defer func() {
		_ = textRows.Close()
	}()

	for textRows.Next() {
		var part domain.TextContent
		if err := textRows.Scan(&part.ID, &part.MessageID, &part.Content, &part.Order); err != nil {
			return fmt.Errorf("scan text content: %w", err)
		}
		message.TextContents = append(message.TextContents, part)
	}
	if err := textRows.Err(); err != nil {
		return fmt.Errorf("iterate text contents: %w", err)
	}

	fileRows, err := r.db.QueryContext(ctx, `
		SELECT content_id, message_id, url, name, size, mime_type, ord
		FROM file_contents
		WHERE message_id = $1
		ORDER BY ord ASC
	`, message.ID)
	if err != nil {
		return fmt.Errorf("load file contents: %w", err)
	}
	defer func() {
		_ = fileRows.Close()
	}()

	for fileRows.Next() {
		var part domain.FileContent
		if err := fileRows.Scan(&part.ID, &part.MessageID, &part.URL, &part.Name, &part.Size, &part.MimeType, &part.Order); err != nil {
			return fmt.Errorf("scan file content: %w", err)
		}
		message.FileContents = append(message.FileContents, part)
	}
	if err := fileRows.Err(); err != nil {
		return fmt.Errorf("iterate file contents: %w", err)
	}

	return nil
}
