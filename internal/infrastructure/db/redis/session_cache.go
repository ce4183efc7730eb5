package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/loqui/chat-system/internal/core/domain"
)

const sessionCacheTTL = time.Minute

// SessionCache is a short-lived read-through cache for token
// verification, keyed session:<token>. It is strictly best-effort:
// every failure degrades to a database lookup, and entries are deleted
// before the database row on logout so a revoked token cannot verify
// from a stale hit.
type SessionCache struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewSessionCache(client *redis.Client, logger zerolog.Logger) *SessionCache {
	return &SessionCache{client: client, logger: logger}
}

type cachedSession struct {
	UserID     string      `json:"user_id"`
	CreatedAt  time.Time   `json:"created_at"`
	LastUsedAt time.Time   `json:"last_used_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
	User       domain.User `json:"user"`
}

func (c *SessionCache) Get(ctx context.Context, token string) (*domain.Session, *domain.User, bool) {
	payload, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug().Err(err).Msg("session cache read failed")
		}
		return nil, nil, false
	}

	var entry cachedSession
	if err := json.Unmarshal(payload, &entry); err != nil {
		c.logger.Debug().Err(err).Msg("session cache entry corrupt")
		return nil, nil, false
	}

	session := &domain.Session{
		Token:      token,
		UserID:     entry.UserID,
		CreatedAt:  entry.CreatedAt,
		LastUsedAt: entry.LastUsedAt,
		ExpiresAt:  entry.ExpiresAt,
	}
	return session, &entry.User, true
}

func (c *SessionCache) Set(ctx context.Context, session *domain.Session, user *domain.User) {
	// Never outlive the session itself.
	ttl := sessionCacheTTL
	if remaining := time.Until(session.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	payload, err := json.Marshal(cachedSession{
		UserID:     session.UserID,
		CreatedAt:  session.CreatedAt,
		LastUsedAt: session.LastUsedAt,
		ExpiresAt:  session.ExpiresAt,
		User:       *user,
	})
	if err != nil {
		c.logger.Debug().Err(err).Msg("session cache encode failed")
		return
	}

	if err := c.client.Set(ctx, c.key(session.Token), payload, ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("session cache write failed")
	}
}

func (c *SessionCache) Delete(ctx context.Context, token string) {
	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("session cache invalidation failed")
	}
}

func (c *SessionCache) key(token string) string {
	return fmt.Sprintf("session:%s", token)
}
