package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	School       string    `db:"school"`
	Bio          *string   `db:"bio"`
	Rating       *float64  `db:"rating"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// FullName is the display name used for creators and chat authors
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserProfileUpdate holds the profile fields a user may change. Nil means unchanged.
type UserProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
}
