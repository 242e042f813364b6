package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/auth"
	"github.com/studymate/backend/internal/pkg/validation"
)

// AuthService handles registration and login
type AuthService struct {
	userRepo       UserStore
	tokens         TokenIssuer
	allowedDomains []string
	logger         zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. allowedDomains extends the
// built-in academic suffixes.
func NewAuthService(userRepo UserStore, tokens TokenIssuer, allowedDomains []string, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		tokens:         tokens,
		allowedDomains: allowedDomains,
		logger:         logger,
	}
}

// Register creates a user and signs a token for it
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validation.IsAcademicEmail(email, s.allowedDomains) {
		return nil, apperrors.NewValidationError("email", "Email must belong to an academic institution")
	}
	if len(req.Password) < validation.PasswordMinLength {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("Password must be at least %d characters", validation.PasswordMinLength))
	}
	if len(req.Password) > validation.PasswordMaxBytes {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("Password must be at most %d bytes", validation.PasswordMaxBytes))
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	school := strings.TrimSpace(req.School)
	for field, value := range map[string]string{"first_name": firstName, "last_name": lastName, "school": school} {
		if !validation.NewStringValidation(value).WithMinLength(validation.NameMinLength).WithMaxLength(255).Validate() {
			return nil, apperrors.NewValidationError(field, field+" is required")
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		School:       school,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Info().Str("email", email).Msg("Registration rejected, email already registered")
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User registered")
	return s.authResponse(user)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error, and both paths run one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Error().Err(err).Msg("Failed to look up user for login")
			return nil, fmt.Errorf("error fetching user: %w", err)
		}
		auth.CheckPassword(s.dummyPasswordHash(), req.Password)
		return nil, apperrors.ErrLoginFailed
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Debug().Str("userID", user.ID.String()).Msg("Login failed, password mismatch")
		return nil, apperrors.ErrLoginFailed
	}

	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to sign access token")
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &dto.AuthResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		School:      user.School,
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("not-a-real-password")
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
