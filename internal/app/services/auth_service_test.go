package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(email, school string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     email,
		Password:  "correct-horse",
		FirstName: "Alice",
		LastName:  "Smith",
		School:    school,
	}
}

func mustRegister(t *testing.T, env *testEnv, email, school string) uuid.UUID {
	t.Helper()
	resp, err := env.auth.Register(context.Background(), registerRequest(email, school))
	require.NoError(t, err)
	return resp.ID
}

func TestRegister_AcademicEmails(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"alice@school.edu", true},
		{"bob@cs.ox.ac.uk", true},
		{"carol@uni-heidelberg.de", true},
		{"dave@unimelb.edu.au", true},
		{"eve@gmail.com", false},
		{"not-an-email", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			env := newTestEnv()
			resp, err := env.auth.Register(context.Background(), registerRequest(tt.email, "State"))
			if !tt.ok {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, resp.Email)
			assert.Equal(t, "bearer", resp.TokenType)
			assert.NotEmpty(t, resp.AccessToken)
			assert.Equal(t, 3600, resp.ExpiresIn)
		})
	}
}

func TestRegister_ExtraDomains(t *testing.T) {
	env := newTestEnv()
	env.auth = NewAuthService(memUsers{env.db}, fakeTokens{}, []string{"college.org"}, env.auth.logger)

	_, err := env.auth.Register(context.Background(), registerRequest("alice@mail.college.org", "College"))
	require.NoError(t, err)
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	env := newTestEnv()
	mustRegister(t, env, "alice@school.edu", "State")

	_, err := env.auth.Register(context.Background(), registerRequest("Alice@School.EDU", "State"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	env := newTestEnv()

	short := registerRequest("alice@school.edu", "State")
	short.Password = "short"
	_, err := env.auth.Register(context.Background(), short)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	blank := registerRequest("alice@school.edu", "   ")
	_, err = env.auth.Register(context.Background(), blank)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRegister_PasswordByteLimit(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"72 bytes", strings.Repeat("a", 72), true},
		{"72 bytes multibyte", strings.Repeat("é", 36), true},
		{"80 bytes", strings.Repeat("a", 80), false},
		{"74 bytes in 37 runes", strings.Repeat("é", 37), false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			req := registerRequest(fmt.Sprintf("user%d@school.edu", i), "State")
			req.Password = tt.password

			resp, err := env.auth.Register(context.Background(), req)
			if tt.ok {
				require.NoError(t, err)
				_, err = env.auth.Login(context.Background(), &dto.LoginRequest{Email: req.Email, Password: tt.password})
				assert.NoError(t, err)
				assert.NotNil(t, resp)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			var ce *apperrors.CustomError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "password", ce.Details["field"])
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	id := mustRegister(t, env, "alice@school.edu", "State")

	resp, err := env.auth.Login(context.Background(), &dto.LoginRequest{Email: " ALICE@school.edu ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, fmt.Sprintf("token-%s", id), resp.AccessToken)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv()
	mustRegister(t, env, "alice@school.edu", "State")

	_, wrongPassword := env.auth.Login(context.Background(), &dto.LoginRequest{Email: "alice@school.edu", Password: "wrong-password"})
	_, unknownEmail := env.auth.Login(context.Background(), &dto.LoginRequest{Email: "nobody@school.edu", Password: "correct-horse"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperrors.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUserProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := mustRegister(t, env, "alice@school.edu", "State")

	bio := "Math major"
	first := " Alicia "
	profile, err := env.users.UpdateProfile(ctx, id, &dto.UpdateProfileRequest{FirstName: &first, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", profile.FirstName)
	assert.Equal(t, "Smith", profile.LastName)
	require.NotNil(t, profile.Bio)
	assert.Equal(t, bio, *profile.Bio)

	blank := "  "
	_, err = env.users.UpdateProfile(ctx, id, &dto.UpdateProfileRequest{LastName: &blank})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.users.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
