package domain

import (
	"errors"
	"time"
)

// ChannelType classifies how a channel is joined and displayed.
type ChannelType string

const (
	ChannelPublic  ChannelType = "public"
	ChannelPrivate ChannelType = "private"
	ChannelDirect  ChannelType = "direct"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrForbidden       = errors.New("access forbidden")
)

// Valid reports whether t is one of the known channel types.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelPublic, ChannelPrivate, ChannelDirect:
		return true
	}
	return false
}

// Channel groups messages under a name. Deleting a channel cascades to
// its messages and their contents.
type Channel struct {
	ID          string      `json:"channel_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        ChannelType `json:"type"`
	Avatar      string      `json:"avatar,omitempty"`
	CreatorID   string      `json:"creator_id"`
	CreatedAt   time.Time   `json:"created_at"`
}
