package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/loqui/chat-system/internal/core/domain"
)

const userColumns = "user_id, user_name, email, phone, password, avatar, created_at"

// UserRepository persists accounts in the users table. The unique
// constraints on user_name, email, and phone are the final authority on
// registration conflicts; Create translates their violations back into
// the same domain errors the advisory checks produce.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (user_id, user_name, email, phone, password, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		nullable(user.Email),
		nullable(user.Phone),
		user.PasswordHash,
		nullable(user.Avatar),
		user.CreatedAt,
	)
	if err != nil {
		return nil, mapUserConflict(err)
	}

	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = $1`, userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// FindByLogin matches loginText against username, email, and phone with
// a logical OR. More than one account can match when, say, one account's
// username equals another's phone; callers get the full candidate list.
func (r *UserRepository) FindByLogin(ctx context.Context, loginText string) ([]*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE user_name = $1 OR email = $1 OR phone = $1
	`, userColumns)

	rows, err := r.db.QueryContext(ctx, query, loginText)
	if err != nil {
		return nil, fmt.Errorf("find by login: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_name = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)`, phone)
}

func (r *UserRepository) exists(ctx context.Context, query, value string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence probe: %w", err)
	}
	return exists, nil
}

// mapUserConflict turns a Postgres unique violation (SQLSTATE 23505)
// into the field-specific conflict error, identified by constraint name.
func mapUserConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_user_name_key":
			return domain.ErrUsernameTaken
		case "users_email_key":
			return domain.ErrEmailTaken
		case "users_phone_key":
			return domain.ErrPhoneTaken
		}
	}
	return fmt.Errorf("insert user: %w", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user                 domain.User
		email, phone, avatar sql.NullString
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&phone,
		&user.PasswordHash,
		&avatar,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	user.Email = email.String
	user.Phone = phone.String
	user.Avatar = avatar.String
	return &user, nil
}

// nullable maps an empty string to NULL. NULLs never collide under the
// unique constraints, so accounts without an email or phone coexist.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
