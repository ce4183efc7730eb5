package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/loqui/chat-system/internal/core/domain"
	"github.com/loqui/chat-system/internal/core/ports"
)

type stubUserRepo struct {
	mu        sync.Mutex
	users     []*domain.User
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	// Mirror the storage-level unique constraints.
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
		if user.Email != "" && existing.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if user.Phone != "" && existing.Phone == user.Phone {
			return nil, domain.ErrPhoneTaken
		}
	}
	r.users = append(r.users, cloneUser(user))
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByLogin(_ context.Context, loginText string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []*domain.User
	for _, u := range r.users {
		if u.Username == loginText || (u.Email != "" && u.Email == loginText) || (u.Phone != "" && u.Phone == loginText) {
			matches = append(matches, cloneUser(u))
		}
	}
	return matches, nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	touched  []string
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.Token] = &clone
	return nil
}

func (r *stubSessionRepo) Find(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *stubSessionRepo) Touch(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = append(r.touched, token)
	if session, ok := r.sessions[token]; ok {
		session.LastUsedAt = time.Now().UTC()
	}
	return nil
}

func (r *stubSessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *stubSessionRepo) touchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.touched)
}

// syncRecorder applies touches inline so tests need no goroutine
// synchronisation.
type syncRecorder struct {
	repo *stubSessionRepo
}

func (s *syncRecorder) Record(token string) {
	_ = s.repo.Touch(context.Background(), token)
}

func newTestSessionService(users *stubUserRepo, sessions *stubSessionRepo) *SessionService {
	return NewSessionService(
		users,
		sessions,
		NewTokenGenerator(),
		NewPasswordHasher(),
		time.Hour,
		zerolog.Nop(),
	).WithLastUsedRecorder(&syncRecorder{repo: sessions})
}

func TestSessionService_Register_Success(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	user, token, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "p@ss1word",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated user id")
	}
	if user.PasswordHash == "p@ss1word" {
		t.Fatalf("expected password to be hashed")
	}
	if token == "" {
		t.Fatalf("expected session token")
	}

	// Registration logs the account in: the token must verify.
	verified, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify after Register failed: %v", err)
	}
	if verified.ID != user.ID {
		t.Fatalf("token resolved to %s, want %s", verified.ID, user.ID)
	}
}

func TestSessionService_Register_ProjectionExcludesPassword(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	user, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "p@ss1word",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	payload, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	if strings.Contains(string(payload), "argon2id") || strings.Contains(string(payload), user.PasswordHash) {
		t.Fatalf("serialized account leaks password hash: %s", payload)
	}
}

func TestSessionService_Register_ConflictOrder(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Phone:    "+15550001",
		Password: "p@ss1word",
	}); err != nil {
		t.Fatalf("seed registration failed: %v", err)
	}

	// All three fields collide; username is reported first.
	_, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Phone:    "+15550001",
		Password: "other-pass",
	})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	_, _, err = svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob",
		Email:    "alice@example.com",
		Phone:    "+15550001",
		Password: "other-pass",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	_, _, err = svc.Register(context.Background(), ports.RegisterInput{
		Username: "carol",
		Phone:    "+15550001",
		Password: "other-pass",
	})
	if !errors.Is(err, domain.ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
}

func TestSessionService_Register_ConstraintRace(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	// The advisory probe passes but the insert hits the unique
	// constraint, as happens when two registrations race. The caller
	// must see the same conflict error either way.
	users.createErr = domain.ErrEmailTaken

	_, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "p@ss1word",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken from constraint, got %v", err)
	}
}

func TestSessionService_Login_UnknownIdentifier(t *testing.T) {
	svc := newTestSessionService(newStubUserRepo(), newStubSessionRepo())

	_, _, err := svc.Login(context.Background(), "ghost", "whatever1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionService_Login_WrongPassword(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "p@ss1word",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "alice", "not-the-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionService_Login_IssuesFreshToken(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	registered, t1, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "p@ss1word",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	loggedIn, t2, err := svc.Login(context.Background(), "alice", "p@ss1word")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != registered.ID {
		t.Fatalf("login resolved to %s, want %s", loggedIn.ID, registered.ID)
	}
	if t1 == t2 {
		t.Fatalf("expected a fresh token per login")
	}

	// Both sessions are concurrently valid.
	for _, token := range []string{t1, t2} {
		user, err := svc.Verify(context.Background(), token)
		if err != nil {
			t.Fatalf("Verify(%s) failed: %v", token, err)
		}
		if user.ID != registered.ID {
			t.Fatalf("token resolved to %s, want %s", user.ID, registered.ID)
		}
	}
}

func TestSessionService_Login_AmbiguousIdentifier(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	// Account A's username collides with account B's phone.
	a, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "5550001",
		Password: "password-a",
	})
	if err != nil {
		t.Fatalf("register a failed: %v", err)
	}
	b, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob",
		Phone:    "5550001",
		Password: "password-b",
	})
	if err != nil {
		t.Fatalf("register b failed: %v", err)
	}

	gotA, _, err := svc.Login(context.Background(), "5550001", "password-a")
	if err != nil {
		t.Fatalf("login as a failed: %v", err)
	}
	if gotA.ID != a.ID {
		t.Fatalf("expected account a (%s), got %s", a.ID, gotA.ID)
	}

	gotB, _, err := svc.Login(context.Background(), "5550001", "password-b")
	if err != nil {
		t.Fatalf("login as b failed: %v", err)
	}
	if gotB.ID != b.ID {
		t.Fatalf("expected account b (%s), got %s", b.ID, gotB.ID)
	}
}

func TestSessionService_Verify_EmptyAndUnknownToken(t *testing.T) {
	svc := newTestSessionService(newStubUserRepo(), newStubSessionRepo())

	if _, err := svc.Verify(context.Background(), ""); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for empty token, got %v", err)
	}
	if _, err := svc.Verify(context.Background(), "no-such-token"); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for unknown token, got %v", err)
	}
}

func TestSessionService_Verify_ExpiredToken(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	now := time.Now().UTC()
	svc := newTestSessionService(users, sessions).WithClock(func() time.Time { return now })

	_, token, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "p@ss1word",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Jump past expiry. The row is still present; detection is lazy.
	now = now.Add(2 * time.Hour)

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
	if _, err := sessions.Find(context.Background(), token); err != nil {
		t.Fatalf("expired session row should not be deleted: %v", err)
	}
}

func TestSessionService_Verify_TouchesLastUsed(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	_, token, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "p@ss1word",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	before := sessions.touchCount()
	if _, err := svc.Verify(context.Background(), token); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if sessions.touchCount() != before+1 {
		t.Fatalf("expected one touch after verify, got %d", sessions.touchCount()-before)
	}
}

func TestSessionService_Logout_RevokesToken(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := newTestSessionService(users, sessions)

	_, t1, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "p@ss1word",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, t2, err := svc.Login(context.Background(), "alice", "p@ss1word")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), t1); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Verify(context.Background(), t1); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after logout, got %v", err)
	}

	// Other sessions for the same account survive.
	if _, err := svc.Verify(context.Background(), t2); err != nil {
		t.Fatalf("second session should still verify: %v", err)
	}

	// Logout is idempotent.
	if err := svc.Logout(context.Background(), t1); err != nil {
		t.Fatalf("repeated logout errored: %v", err)
	}
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout without token errored: %v", err)
	}
}

type stubSessionCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	hits    int
}

type cacheEntry struct {
	session domain.Session
	user    domain.User
}

func newStubSessionCache() *stubSessionCache {
	return &stubSessionCache{entries: make(map[string]cacheEntry)}
}

func (c *stubSessionCache) Get(_ context.Context, token string) (*domain.Session, *domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[token]
	if !ok {
		return nil, nil, false
	}
	c.hits++
	session, user := entry.session, entry.user
	return &session, &user, true
}

func (c *stubSessionCache) Set(_ context.Context, session *domain.Session, user *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[session.Token] = cacheEntry{session: *session, user: *user}
}

func (c *stubSessionCache) Delete(_ context.Context, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
}

func TestSessionService_Verify_UsesCache(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	cache := newStubSessionCache()
	svc := newTestSessionService(users, sessions).WithCache(cache)

	user, token, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Password: "p@ss1word",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// First verify misses the cache and populates it.
	if _, err := svc.Verify(context.Background(), token); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	// Second verify is served from cache.
	verified, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("cached verify failed: %v", err)
	}
	if verified.ID != user.ID {
		t.Fatalf("cached verify resolved to %s, want %s", verified.ID, user.ID)
	}
	if cache.hits != 1 {
		t.Fatalf("expected exactly one cache hit, got %d", cache.hits)
	}

	// Logout purges the cache entry; the token must not verify again.
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after logout, got %v", err)
	}
}
