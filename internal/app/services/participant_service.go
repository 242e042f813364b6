package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/pkg/apperrors"
)

// ParticipantService is the participant ledger: joins, leaves and rosters
type ParticipantService struct {
	participantRepo ParticipantStore
	sessionRepo     SessionStore
	broadcaster     Broadcaster
	logger          zerolog.Logger
}

// NewParticipantService creates a new ParticipantService. broadcaster may be nil.
func NewParticipantService(participantRepo ParticipantStore, sessionRepo SessionStore, broadcaster Broadcaster, logger zerolog.Logger) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		sessionRepo:     sessionRepo,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

// JoinSession adds userID to the session roster and returns the updated session.
// Fails NotFound, Conflict "already joined" or Conflict "full", in that order.
func (s *ParticipantService) JoinSession(ctx context.Context, sessionID, userID uuid.UUID) (*dto.SessionResponse, error) {
	if _, err := s.participantRepo.Add(ctx, sessionID, userID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Debug().Err(err).Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("Join rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("Failed to join session")
		return nil, fmt.Errorf("error joining session: %w", err)
	}

	s.logger.Info().Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("User joined session")

	details, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(details), nil
}

// LeaveSession removes userID from the roster. The creator can never leave.
// Leaving a session one is not part of succeeds.
func (s *ParticipantService) LeaveSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.CreatorID == userID {
		return apperrors.ErrCreatorCannotLeave
	}

	removed, err := s.participantRepo.Remove(ctx, sessionID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("Failed to leave session")
		return fmt.Errorf("error leaving session: %w", err)
	}

	if !removed {
		s.logger.Debug().Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("Leave for non-participant, nothing to remove")
		return nil
	}

	// Live chat is participant-only
	if s.broadcaster != nil {
		s.broadcaster.Disconnect(sessionID, userID)
	}

	s.logger.Info().Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("User left session")
	return nil
}

// ListParticipants returns the roster, earliest joiner first
func (s *ParticipantService) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]*dto.ParticipantResponse, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}

	out := make([]*dto.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, dto.NewParticipantResponse(p))
	}
	return out, nil
}
