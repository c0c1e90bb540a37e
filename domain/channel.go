// Package domain contains core concepts of the chat system:
// channels, messages, users and the commands that act on them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Channel is a named conversation space. Seq is assigned by the store
// at insert time and reproduces insertion order when listing.
type Channel struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedBy   string
	Seq         uint64
	CreatedAt   time.Time
}
