package models

import (
	"time"

	"github.com/google/uuid"
)

// Participation is a row of 'session_participants'
type Participation struct {
	ID        uuid.UUID `db:"id"`
	SessionID uuid.UUID `db:"session_id"`
	UserID    uuid.UUID `db:"user_id"`
	JoinedAt  time.Time `db:"joined_at"`
}

// Participant is a participation joined with the user's identity fields
type Participant struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Email     string
	JoinedAt  time.Time
}
