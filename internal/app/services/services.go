package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models"
)

// Store contracts the services depend on. The Postgres repositories
// implement them; tests substitute in-memory versions.

// UserStore is the credential store
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update models.UserProfileUpdate) (*models.User, error)
}

// SessionStore is the session registry
type SessionStore interface {
	Create(ctx context.Context, session *models.StudySession) (*models.SessionDetails, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SessionDetails, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.SessionDetails, error)
	ListBySchool(ctx context.Context, school string, filter models.SessionFilter) ([]*models.SessionDetails, error)
	Update(ctx context.Context, id uuid.UUID, update models.SessionUpdate) (*models.SessionDetails, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ParticipantStore is the participant ledger. Add must be atomic with
// respect to concurrent joins on the same session.
type ParticipantStore interface {
	Add(ctx context.Context, sessionID, userID uuid.UUID) (*models.Participation, error)
	Remove(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
	List(ctx context.Context, sessionID uuid.UUID) ([]*models.Participant, error)
	IsParticipant(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
}

// ChatStore is the chat log
type ChatStore interface {
	CreateForParticipant(ctx context.Context, message *models.ChatMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Broadcaster pushes chat events to live subscribers and drops
// subscribers that lose access to a session.
type Broadcaster interface {
	Publish(sessionID uuid.UUID, eventType string, data interface{})
	Disconnect(sessionID, userID uuid.UUID)
	CloseSession(sessionID uuid.UUID)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email string) (token string, expiresIn int, err error)
}
