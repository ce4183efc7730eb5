package domain

import (
	"errors"
	"time"
)

var (
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
	ErrPhoneTaken    = errors.New("phone already registered")
	ErrUserNotFound  = errors.New("user not found")

	// ErrInvalidCredentials covers both an unknown login identifier and a
	// wrong password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User models a registered account. Email and phone are optional; when
// present each is unique across all accounts. An empty string means the
// field was never provided and is stored as NULL.
type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"user_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the projection safe to show to other users: no email,
// phone, or password material.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}

// PublicUser is the cross-user profile projection.
type PublicUser struct {
	ID       string `json:"user_id"`
	Username string `json:"user_name"`
	Avatar   string `json:"avatar,omitempty"`
}
