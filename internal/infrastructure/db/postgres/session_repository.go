package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/loqui/chat-system/internal/core/domain"
)

// SessionRepository persists session tokens in the auth_tokens table,
// keyed by the opaque token string.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO auth_tokens (token, user_id, created_at, last_used_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.CreatedAt,
		session.LastUsedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Find(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT token, user_id, created_at, last_used_at, expires_at
		FROM auth_tokens
		WHERE token = $1
	`

	var session domain.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.LastUsedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Touch moves last_used_at to now. A token deleted between lookup and
// touch updates zero rows, which is fine: the data is diagnostic.
func (r *SessionRepository) Touch(ctx context.Context, token string) error {
	query := `UPDATE auth_tokens SET last_used_at = now() WHERE token = $1`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Delete removes the session row. Deleting an absent token is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM auth_tokens WHERE token = $1`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
