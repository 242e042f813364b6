package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents a message in a session chat
type ChatMessage struct {
	ID        uuid.UUID  `db:"id"`
	SessionID uuid.UUID  `db:"session_id"`
	UserID    uuid.UUID  `db:"user_id"`
	Message   string     `db:"message"`
	CreatedAt time.Time  `db:"created_at"`
	EditedAt  *time.Time `db:"edited_at"`

	// AuthorName is empty when the author row no longer resolves.
	AuthorName    string `db:"-"`
	AuthorMissing bool   `db:"-"`
}
