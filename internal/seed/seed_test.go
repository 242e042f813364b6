package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userStub struct {
	created []*appModels.User
	err     error
}

func (s *userStub) Create(_ context.Context, user *appModels.User) error {
	if s.err != nil {
		return s.err
	}
	user.ID = uuid.New()
	s.created = append(s.created, user)
	return nil
}

type sessionStub struct {
	created []*appModels.StudySession
}

func (s *sessionStub) Create(_ context.Context, session *appModels.StudySession) (*appModels.SessionDetails, error) {
	s.created = append(s.created, session)
	return &appModels.SessionDetails{StudySession: *session, CurrentCapacity: 1}, nil
}

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

func TestCreateDemoData(t *testing.T) {
	users, sessions := &userStub{}, &sessionStub{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, CreateDemoData(context.Background(), users, sessions, now, zerolog.Nop()))

	require.Len(t, users.created, 1)
	demo := users.created[0]
	assert.Equal(t, DemoEmail, demo.Email)
	assert.True(t, auth.CheckPassword(demo.PasswordHash, DemoPassword))

	require.Len(t, sessions.created, 2)
	for _, s := range sessions.created {
		assert.Equal(t, demo.ID, s.CreatorID)
		assert.True(t, s.MeetingType.Valid())
		assert.Positive(t, s.MaxCapacity)
	}
	assert.Equal(t, "2025-03-13", sessions.created[0].Date)
	assert.Equal(t, "2025-03-17", sessions.created[1].Date)
}

func TestCreateDemoData_AlreadySeeded(t *testing.T) {
	users := &userStub{err: apperrors.ErrEmailAlreadyExists}
	sessions := &sessionStub{}

	require.NoError(t, CreateDemoData(context.Background(), users, sessions, time.Now(), zerolog.Nop()))
	assert.Empty(t, sessions.created)
}

func TestCreateDemoData_StoreFailure(t *testing.T) {
	users := &userStub{err: errors.New("connection reset")}

	err := CreateDemoData(context.Background(), users, &sessionStub{}, time.Now(), zerolog.Nop())
	assert.ErrorContains(t, err, "connection reset")
}
