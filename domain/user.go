package domain

import "time"

// User is an account known to the identity layer. Name and Image are
// optional profile fields; senders without a name fall back to a
// placeholder display string when messages are denormalized.
type User struct {
	ID        string
	Email     string
	Name      *string
	Image     *string
	Roles     []string
	CreatedAt time.Time
}
