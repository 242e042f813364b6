package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models"
)

// UserResponse is a user's public profile
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email" example:"alice@school.edu"`
	FirstName string    `json:"first_name" example:"Alice"`
	LastName  string    `json:"last_name" example:"Smith"`
	School    string    `json:"school" example:"State University"`
	Bio       *string   `json:"bio"`
	Rating    *float64  `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileRequest carries the optional profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio" binding:"omitempty,max=1000"`
}

// NewUserResponse maps a user model to its response
func NewUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		School:    u.School,
		Bio:       u.Bio,
		Rating:    u.Rating,
		CreatedAt: u.CreatedAt,
	}
}
