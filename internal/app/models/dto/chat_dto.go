package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models"
)

// CreateMessageRequest represents a new chat message.
// session_id is optional; when sent it must match the path.
type CreateMessageRequest struct {
	SessionID *uuid.UUID `json:"session_id"`
	Message   string     `json:"message" binding:"required,max=2000" example:"See you at 3!"`
}

// MessageResponse is a chat message with its author's display name.
// AuthorUnknown is set when the author record no longer exists.
type MessageResponse struct {
	ID            uuid.UUID  `json:"id"`
	SessionID     uuid.UUID  `json:"session_id"`
	UserID        uuid.UUID  `json:"user_id"`
	UserName      string     `json:"user_name"`
	AuthorUnknown bool       `json:"author_unknown"`
	Message       string     `json:"message"`
	CreatedAt     time.Time  `json:"created_at"`
	EditedAt      *time.Time `json:"edited_at"`
}

// MessageListResponse is one window of a session's chat
type MessageListResponse struct {
	Messages []*MessageResponse `json:"messages"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
	Count    int                `json:"count"`
}

// NewMessageResponse maps a chat message
func NewMessageResponse(m *models.ChatMessage) *MessageResponse {
	return &MessageResponse{
		ID:            m.ID,
		SessionID:     m.SessionID,
		UserID:        m.UserID,
		UserName:      m.AuthorName,
		AuthorUnknown: m.AuthorMissing,
		Message:       m.Message,
		CreatedAt:     m.CreatedAt,
		EditedAt:      m.EditedAt,
	}
}
