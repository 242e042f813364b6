package dto

import "github.com/google/uuid"

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"alice@school.edu"`
	Password  string `json:"password" binding:"required,min=8,max=72" example:"s3cret-pass"`
	FirstName string `json:"first_name" binding:"required,max=100" example:"Alice"`
	LastName  string `json:"last_name" binding:"required,max=100" example:"Smith"`
	School    string `json:"school" binding:"required,max=255" example:"State University"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@school.edu"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email" example:"alice@school.edu"`
	FirstName   string    `json:"first_name" example:"Alice"`
	LastName    string    `json:"last_name" example:"Smith"`
	School      string    `json:"school" example:"State University"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type" example:"bearer"`
	ExpiresIn   int       `json:"expires_in" example:"86400"`
}
