package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/studymate/backend/internal/app/auth"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/validation"
)

// SessionService is the session registry
type SessionService struct {
	sessionRepo SessionStore
	userRepo    UserStore
	authz       *auth.AuthorizationService
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewSessionService creates a new SessionService. broadcaster may be nil.
func NewSessionService(sessionRepo SessionStore, userRepo UserStore, authz *auth.AuthorizationService, broadcaster Broadcaster, logger zerolog.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		authz:       authz,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func validateDate(value string) error {
	if !validation.NewStringValidation(value).WithPattern(validation.CompiledPatterns.Date).Validate() {
		return apperrors.NewValidationError("date", "date must be formatted YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return apperrors.NewValidationError("date", "date is not a valid calendar date")
	}
	return nil
}

func validateTime(value string) error {
	if !validation.NewStringValidation(value).WithPattern(validation.CompiledPatterns.Time).Validate() {
		return apperrors.NewValidationError("time", "time must be formatted HH:MM")
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return apperrors.NewValidationError("time", "time is not a valid time of day")
	}
	return nil
}

func requireText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if !validation.NewStringValidation(value).WithMaxLength(max).Validate() {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("%s is required and at most %d characters", field, max))
	}
	return value, nil
}

func validateDescription(value *string) error {
	if value == nil {
		return nil
	}
	max := validation.DescriptionMaxLength
	if !validation.NewStringValidation(*value).WithRequired(false).WithMaxLength(max).Validate() {
		return apperrors.NewValidationError("description", fmt.Sprintf("description must be at most %d characters", max))
	}
	return nil
}

// CreateSession creates a session owned by creatorID, who becomes its first participant
func (s *SessionService) CreateSession(ctx context.Context, creatorID uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	title, err := requireText("title", req.Title, 200)
	if err != nil {
		return nil, err
	}
	courseCode, err := requireText("course_code", req.CourseCode, 50)
	if err != nil {
		return nil, err
	}
	location, err := requireText("location", req.Location, 255)
	if err != nil {
		return nil, err
	}
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if err := validateTime(req.Time); err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}
	if !req.MeetingType.Valid() {
		return nil, apperrors.NewValidationError("meeting_type", "meeting_type must be one of on_campus, off_campus, online")
	}
	if req.MaxCapacity <= 0 {
		return nil, apperrors.NewValidationError("max_capacity", "max_capacity must be greater than 0")
	}

	if _, err := s.userRepo.GetByID(ctx, creatorID); err != nil {
		return nil, err
	}

	session := &models.StudySession{
		Title:       title,
		CourseCode:  courseCode,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    location,
		MeetingType: req.MeetingType,
		MaxCapacity: req.MaxCapacity,
		CreatorID:   creatorID,
	}

	details, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		s.logger.Error().Err(err).Str("creatorID", creatorID.String()).Msg("Failed to create study session")
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	s.logger.Info().
		Str("sessionID", details.ID.String()).
		Str("creatorID", creatorID.String()).
		Int("maxCapacity", details.MaxCapacity).
		Msg("Study session created")

	return dto.NewSessionResponse(details), nil
}

// GetSession fetches one session with its derived fields
func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	details, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(details), nil
}

// ListMySessions returns the sessions userID created or joined
func (s *SessionService) ListMySessions(ctx context.Context, userID uuid.UUID) ([]*dto.SessionResponse, error) {
	list, err := s.sessionRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing user sessions: %w", err)
	}
	return dto.NewSessionResponses(list), nil
}

// ListSchoolSessions lists the sessions created by members of the caller's school
func (s *SessionService) ListSchoolSessions(ctx context.Context, userID uuid.UUID, req *dto.SessionFilterRequest) ([]*dto.SessionResponse, error) {
	if req.MeetingType != "" && !req.MeetingType.Valid() {
		return nil, apperrors.NewValidationError("meeting_type", "meeting_type must be one of on_campus, off_campus, online")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	filter := models.SessionFilter{
		CourseCode:  req.CourseCode,
		MeetingType: req.MeetingType,
		ExcludeFull: req.ExcludeFull,
	}

	s.logger.Debug().Str("school", user.School).Interface("filter", filter).Msg("Listing school sessions")

	list, err := s.sessionRepo.ListBySchool(ctx, user.School, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing school sessions: %w", err)
	}
	return dto.NewSessionResponses(list), nil
}

// UpdateSession applies a creator-only partial update
func (s *SessionService) UpdateSession(ctx context.Context, id, requesterID uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	update := models.SessionUpdate{
		Description: req.Description,
		MeetingType: req.MeetingType,
		MaxCapacity: req.MaxCapacity,
	}

	if req.Title != nil {
		v, err := requireText("title", *req.Title, 200)
		if err != nil {
			return nil, err
		}
		update.Title = &v
	}
	if req.Location != nil {
		v, err := requireText("location", *req.Location, 255)
		if err != nil {
			return nil, err
		}
		update.Location = &v
	}
	if req.Date != nil {
		if err := validateDate(*req.Date); err != nil {
			return nil, err
		}
		update.Date = req.Date
	}
	if req.Time != nil {
		if err := validateTime(*req.Time); err != nil {
			return nil, err
		}
		update.Time = req.Time
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}
	if req.MeetingType != nil && !req.MeetingType.Valid() {
		return nil, apperrors.NewValidationError("meeting_type", "meeting_type must be one of on_campus, off_campus, online")
	}
	if req.MaxCapacity != nil && *req.MaxCapacity <= 0 {
		return nil, apperrors.NewValidationError("max_capacity", "max_capacity must be greater than 0")
	}

	current, err := s.authz.RequireSessionCreator(ctx, id, requesterID, "update")
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return dto.NewSessionResponse(current), nil
	}

	details, err := s.sessionRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("sessionID", id.String()).Msg("Failed to update study session")
		return nil, fmt.Errorf("error updating session: %w", err)
	}

	s.logger.Info().Str("sessionID", id.String()).Msg("Study session updated")
	return dto.NewSessionResponse(details), nil
}

// DeleteSession removes a session with its roster and chat. Creator only.
func (s *SessionService) DeleteSession(ctx context.Context, id, requesterID uuid.UUID) error {
	if _, err := s.authz.RequireSessionCreator(ctx, id, requesterID, "delete"); err != nil {
		return err
	}

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("sessionID", id.String()).Msg("Failed to delete study session")
		return fmt.Errorf("error deleting session: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.CloseSession(id)
	}

	s.logger.Info().Str("sessionID", id.String()).Str("requesterID", requesterID.String()).Msg("Study session deleted")
	return nil
}
