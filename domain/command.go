package domain

import "github.com/google/uuid"

// CreateChannelCommand carries the caller's intent to open a new
// channel. Duplicate names are allowed; only emptiness is rejected.
type CreateChannelCommand struct {
	Name        string `validate:"required"`
	Description *string
}

// SendMessageCommand carries a message into a channel. The channel id
// is taken as-is and is not checked against the store.
type SendMessageCommand struct {
	ChannelID uuid.UUID
	Content   string `validate:"required"`
}
