package domain

import (
	"errors"
	"time"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message has no content")
)

// Message is a single post in a channel. Its body lives in ordered
// content rows (text and file parts interleaved by Order).
type Message struct {
	ID        string    `json:"message_id"`
	ChannelID string    `json:"channel_id"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TextContents []TextContent `json:"text_contents"`
	FileContents []FileContent `json:"file_contents"`
}

// TextContent is one text part of a message.
type TextContent struct {
	ID        string `json:"content_id"`
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
	Order     int    `json:"order"`
}

// FileContent is one file attachment part of a message.
type FileContent struct {
	ID        string `json:"content_id"`
	MessageID string `json:"message_id"`
	URL       string `json:"url"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
	Order     int    `json:"order"`
}
