package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models"
)

// CreateSessionRequest represents a new study session
type CreateSessionRequest struct {
	Title       string             `json:"title" binding:"required,max=200" example:"Midterm review"`
	CourseCode  string             `json:"course_code" binding:"required,max=50" example:"CS101"`
	Description *string            `json:"description" binding:"omitempty,max=2000"`
	Date        string             `json:"date" binding:"required" example:"2025-05-01"`
	Time        string             `json:"time" binding:"required" example:"14:30"`
	Location    string             `json:"location" binding:"required,max=255" example:"Library room 3"`
	MeetingType models.MeetingType `json:"meeting_type" binding:"required,oneof=on_campus off_campus online" example:"on_campus"`
	MaxCapacity int                `json:"max_capacity" binding:"required,gt=0" example:"5"`
}

// UpdateSessionRequest is a partial session update
type UpdateSessionRequest struct {
	Title       *string             `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string             `json:"description" binding:"omitempty,max=2000"`
	Date        *string             `json:"date"`
	Time        *string             `json:"time"`
	Location    *string             `json:"location" binding:"omitempty,min=1,max=255"`
	MeetingType *models.MeetingType `json:"meeting_type" binding:"omitempty,oneof=on_campus off_campus online"`
	MaxCapacity *int                `json:"max_capacity" binding:"omitempty,gt=0"`
}

// SessionFilterRequest is bound from the listing query string
type SessionFilterRequest struct {
	CourseCode  string             `form:"course_code"`
	MeetingType models.MeetingType `form:"meeting_type" binding:"omitempty,oneof=on_campus off_campus online"`
	ExcludeFull bool               `form:"exclude_full"`
}

// SessionResponse is a study session with its derived fields
type SessionResponse struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	CourseCode      string             `json:"course_code"`
	Description     *string            `json:"description"`
	Date            string             `json:"date"`
	Time            string             `json:"time"`
	Location        string             `json:"location"`
	MeetingType     models.MeetingType `json:"meeting_type"`
	MaxCapacity     int                `json:"max_capacity"`
	CurrentCapacity int                `json:"current_capacity"`
	IsFull          bool               `json:"is_full"`
	CreatorID       uuid.UUID          `json:"creator_id"`
	CreatorName     string             `json:"creator_name"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ParticipantResponse is one roster entry
type ParticipantResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	JoinedAt  time.Time `json:"joined_at"`
}

// NewSessionResponse maps session details to the response
func NewSessionResponse(d *models.SessionDetails) *SessionResponse {
	return &SessionResponse{
		ID:              d.ID,
		Title:           d.Title,
		CourseCode:      d.CourseCode,
		Description:     d.Description,
		Date:            d.Date,
		Time:            d.Time,
		Location:        d.Location,
		MeetingType:     d.MeetingType,
		MaxCapacity:     d.MaxCapacity,
		CurrentCapacity: d.CurrentCapacity,
		IsFull:          d.IsFull(),
		CreatorID:       d.CreatorID,
		CreatorName:     d.CreatorName,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// NewSessionResponses maps a slice, never returning nil
func NewSessionResponses(list []*models.SessionDetails) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(list))
	for _, d := range list {
		out = append(out, NewSessionResponse(d))
	}
	return out
}

// NewParticipantResponse maps a participant
func NewParticipantResponse(p *models.Participant) *ParticipantResponse {
	return &ParticipantResponse{
		ID:        p.UserID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		JoinedAt:  p.JoinedAt,
	}
}
