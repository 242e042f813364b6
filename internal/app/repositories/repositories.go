package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/studymate/backend/internal/db"
)

// psql is the statement builder shared by every repository
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	SessionRepository     *SessionRepository
	ParticipantRepository *ParticipantRepository
	ChatRepository        *ChatRepository
}

// NewRepositories initializes all repositories on one connection
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(conn),
		SessionRepository:     NewSessionRepository(conn),
		ParticipantRepository: NewParticipantRepository(conn),
		ChatRepository:        NewChatRepository(conn),
	}
}
