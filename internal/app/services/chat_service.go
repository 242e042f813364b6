package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/studymate/backend/internal/app/auth"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/validation"
	"github.com/studymate/backend/internal/pkg/websocket"
)

// ChatService is the per-session chat log
type ChatService struct {
	chatRepo    ChatStore
	sessionRepo SessionStore
	userRepo    UserStore
	authz       *auth.AuthorizationService
	broadcaster Broadcaster
	maxLimit    int
	logger      zerolog.Logger
}

// NewChatService creates a new ChatService. broadcaster may be nil.
func NewChatService(
	chatRepo ChatStore,
	sessionRepo SessionStore,
	userRepo UserStore,
	authz *auth.AuthorizationService,
	broadcaster Broadcaster,
	maxLimit int,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		authz:       authz,
		broadcaster: broadcaster,
		maxLimit:    maxLimit,
		logger:      logger,
	}
}

func (s *ChatService) publish(sessionID uuid.UUID, eventType string, data interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(sessionID, eventType, data)
	}
}

// PostMessage appends a message from a participant
func (s *ChatService) PostMessage(ctx context.Context, sessionID, userID uuid.UUID, text string) (*dto.MessageResponse, error) {
	text = strings.TrimSpace(text)
	if !validation.NewStringValidation(text).WithMaxLength(validation.MessageMaxLength).Validate() {
		return nil, apperrors.NewValidationError("message", fmt.Sprintf("message must be 1 to %d characters", validation.MessageMaxLength))
	}

	if err := s.authz.RequireParticipant(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		SessionID: sessionID,
		UserID:    userID,
		Message:   text,
	}

	// The insert re-checks membership in the same statement
	if err := s.chatRepo.CreateForParticipant(ctx, message); err != nil {
		if errors.Is(err, apperrors.ErrPermissionDenied) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("sessionID", sessionID.String()).Str("userID", userID.String()).Msg("Failed to store chat message")
		return nil, fmt.Errorf("error creating message: %w", err)
	}
	message.AuthorName = author.FullName()

	resp := dto.NewMessageResponse(message)
	s.publish(sessionID, websocket.EventMessageCreated, resp)

	s.logger.Debug().Str("sessionID", sessionID.String()).Str("messageID", message.ID.String()).Msg("Chat message posted")
	return resp, nil
}

// ListMessages returns a window of the session's chat, oldest first
func (s *ChatService) ListMessages(ctx context.Context, sessionID uuid.UUID, limit, offset int) (*dto.MessageListResponse, error) {
	if limit < 1 || limit > s.maxLimit {
		return nil, apperrors.NewValidationError("limit", fmt.Sprintf("limit must be between 1 and %d", s.maxLimit))
	}
	if offset < 0 {
		return nil, apperrors.NewValidationError("offset", "offset must not be negative")
	}

	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.ListBySession(ctx, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}

	out := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		if m.AuthorMissing {
			s.logger.Warn().
				Str("sessionID", sessionID.String()).
				Str("messageID", m.ID.String()).
				Str("userID", m.UserID.String()).
				Msg("chat message author missing")
		}
		out = append(out, dto.NewMessageResponse(m))
	}

	return &dto.MessageListResponse{
		Messages: out,
		Limit:    limit,
		Offset:   offset,
		Count:    len(out),
	}, nil
}

// DeleteMessage removes a message. Only its author may delete it.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID, requesterID uuid.UUID) error {
	message, err := s.chatRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	if err := s.authz.RequireMessageAuthor(message, requesterID); err != nil {
		return err
	}

	if err := s.chatRepo.Delete(ctx, messageID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("messageID", messageID.String()).Msg("Failed to delete chat message")
		return fmt.Errorf("error deleting message: %w", err)
	}

	s.publish(message.SessionID, websocket.EventMessageDeleted, map[string]uuid.UUID{"id": messageID})
	return nil
}

// AuthorizeSubscription checks that userID may follow the session's live chat
func (s *ChatService) AuthorizeSubscription(ctx context.Context, sessionID, userID uuid.UUID) error {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return s.authz.RequireParticipant(ctx, sessionID, userID)
}
