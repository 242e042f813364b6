package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/pkg/apperrors"
)

// SessionLookup resolves a session with its derived fields
type SessionLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.SessionDetails, error)
}

// MembershipLookup answers whether a user is on a session's roster
type MembershipLookup interface {
	IsParticipant(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
}

// AuthorizationService holds the ownership and membership checks shared by services
type AuthorizationService struct {
	sessions    SessionLookup
	memberships MembershipLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(sessions SessionLookup, memberships MembershipLookup) *AuthorizationService {
	return &AuthorizationService{
		sessions:    sessions,
		memberships: memberships,
	}
}

// RequireSessionCreator loads the session and fails with Forbidden unless
// userID created it. NotFound if the session is absent.
func (s *AuthorizationService) RequireSessionCreator(ctx context.Context, sessionID, userID uuid.UUID, action string) (*models.SessionDetails, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.CreatorID != userID {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("Only the session creator can %s this session", action))
	}

	return session, nil
}

// RequireParticipant fails with ErrNotParticipant unless userID holds a
// participation row for sessionID.
func (s *AuthorizationService) RequireParticipant(ctx context.Context, sessionID, userID uuid.UUID) error {
	ok, err := s.memberships.IsParticipant(ctx, sessionID, userID)
	if err != nil {
		return fmt.Errorf("error checking participation: %w", err)
	}
	if !ok {
		return apperrors.ErrNotParticipant
	}
	return nil
}

// RequireMessageAuthor fails with Forbidden unless userID wrote the message
func (s *AuthorizationService) RequireMessageAuthor(message *models.ChatMessage, userID uuid.UUID) error {
	if message.UserID != userID {
		return apperrors.NewForbiddenError("You can only delete your own messages")
	}
	return nil
}
