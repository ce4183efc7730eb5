package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/loqui/chat-system/internal/core/domain"
	"github.com/loqui/chat-system/internal/core/ports"
)

const (
	defaultSessionTTL = 60 * 24 * time.Hour
	touchTimeout      = 5 * time.Second
)

// SessionService orchestrates registration, login, token verification,
// and logout. It holds no mutable state of its own; every session lives
// in the session repository, so the service is safe to replicate across
// processes.
type SessionService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	tokens   ports.TokenGenerator
	hasher   ports.PasswordHasher
	cache    ports.SessionCache
	lastUsed ports.LastUsedRecorder
	ttl      time.Duration
	now      ports.Clock
	logger   zerolog.Logger
}

func NewSessionService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	tokens ports.TokenGenerator,
	hasher ports.PasswordHasher,
	ttl time.Duration,
	logger zerolog.Logger,
) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// WithCache attaches a best-effort verify cache. The repository stays
// authoritative; cache misses and failures fall through to it.
func (s *SessionService) WithCache(cache ports.SessionCache) *SessionService {
	s.cache = cache
	return s
}

// WithLastUsedRecorder routes last-used updates through rec instead of
// spawning a goroutine per verification.
func (s *SessionService) WithLastUsedRecorder(rec ports.LastUsedRecorder) *SessionService {
	s.lastUsed = rec
	return s
}

// WithClock overrides the time source. For tests.
func (s *SessionService) WithClock(clock ports.Clock) *SessionService {
	s.now = clock
	return s
}

// Register creates an account and logs it in, returning the account and
// a fresh session token.
//
// The three uniqueness probes run in a fixed order (username, email,
// phone) so the reported conflict is deterministic when several fields
// collide at once. They are advisory only: two concurrent registrations
// with the same email both pass the probe, and the storage unique
// constraint rejects the second insert with the same conflict error.
func (s *SessionService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, string, error) {
	if taken, err := s.users.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, "", fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, "", domain.ErrUsernameTaken
	}
	if input.Email != "" {
		if taken, err := s.users.ExistsByEmail(ctx, input.Email); err != nil {
			return nil, "", fmt.Errorf("check email: %w", err)
		} else if taken {
			return nil, "", domain.ErrEmailTaken
		}
	}
	if input.Phone != "" {
		if taken, err := s.users.ExistsByPhone(ctx, input.Phone); err != nil {
			return nil, "", fmt.Errorf("check phone: %w", err)
		} else if taken {
			return nil, "", domain.ErrPhoneTaken
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           newID(),
		Username:     input.Username,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueSession(ctx, created.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", created.ID).Str("user_name", created.Username).Msg("account registered")
	return created, token, nil
}

// Login resolves loginText against username, email, and phone, then
// verifies the password against every candidate in turn; the first
// matching account wins. An unknown identifier and a wrong password both
// return domain.ErrInvalidCredentials so responses cannot be used to
// probe which identifiers exist.
func (s *SessionService) Login(ctx context.Context, loginText, password string) (*domain.User, string, error) {
	candidates, err := s.users.FindByLogin(ctx, loginText)
	if err != nil {
		return nil, "", fmt.Errorf("resolve login: %w", err)
	}

	var user *domain.User
	for _, candidate := range candidates {
		if s.hasher.Verify(candidate.PasswordHash, password) {
			user = candidate
			break
		}
	}
	if user == nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")
	return user, token, nil
}

// Verify resolves a presented token to its owning account. Unknown and
// expired tokens fail identically. The last-used timestamp is updated
// off the request path; its outcome never affects the response.
func (s *SessionService) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	if s.cache != nil {
		if session, user, ok := s.cache.Get(ctx, token); ok {
			if session.Expired(s.now()) {
				return nil, domain.ErrInvalidSession
			}
			s.recordLastUsed(token)
			return user, nil
		}
	}

	session, err := s.sessions.Find(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, domain.ErrInvalidSession
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		// The owning account is gone; cascade delete should have taken
		// the token with it, but either way the token no longer
		// authenticates anyone.
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("load session owner: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, session, user)
	}
	s.recordLastUsed(token)
	return user, nil
}

// Logout revokes the token. An absent or already-revoked token is a
// silent no-op.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	// Cache entry goes first: once Logout returns, the token must not
	// verify from a stale cache hit.
	if s.cache != nil {
		s.cache.Delete(ctx, token)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Debug().Msg("session revoked")
	return nil
}

func (s *SessionService) issueSession(ctx context.Context, userID string) (string, error) {
	token, err := s.tokens.Generate()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	now := s.now().UTC()
	session := &domain.Session{
		Token:      token,
		UserID:     userID,
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *SessionService) recordLastUsed(token string) {
	if s.lastUsed != nil {
		s.lastUsed.Record(token)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		if err := s.sessions.Touch(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("session touch failed")
		}
	}()
}
