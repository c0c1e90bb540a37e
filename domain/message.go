package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
//
// UserName and UserImage are a snapshot of the sender's profile taken
// at send time. They never change afterwards, even if the sender later
// renames themselves: old messages keep the old display name.
type Message struct {
	ID        uuid.UUID
	ChannelID uuid.UUID
	UserID    string
	Content   string
	UserName  string
	UserImage *string
	Seq       uint64
	At        time.Time
}
