package service

import (
	"time"

	"github.com/google/uuid"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// newID returns a UUIDv7 string. V7 ids are time-ordered, which keeps
// primary key indexes growing mostly append-only.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
