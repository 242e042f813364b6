package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/auth"
)

// DemoEmail and DemoPassword are the credentials of the seeded account
const (
	DemoEmail    = "demo@studymate.edu"
	DemoPassword = "studymate-demo"
)

// UserCreator stores new accounts
type UserCreator interface {
	Create(ctx context.Context, user *appModels.User) error
}

// SessionCreator stores new sessions
type SessionCreator interface {
	Create(ctx context.Context, session *appModels.StudySession) (*appModels.SessionDetails, error)
}

// CreateDemoData creates a demo account with two upcoming sessions.
// Nothing is written when the demo account already exists.
func CreateDemoData(ctx context.Context, users UserCreator, sessions SessionCreator, now time.Time, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating demo data...")

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("error hashing demo password: %w", err)
	}

	demo := &appModels.User{
		Email:        DemoEmail,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "Student",
		School:       "StudyMate University",
	}
	if err := users.Create(ctx, demo); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Info().Str("email", DemoEmail).Msg("Demo data already present, skipping")
			return nil
		}
		return fmt.Errorf("error creating demo user: %w", err)
	}

	for _, s := range demoSessions(demo.ID, now) {
		details, err := sessions.Create(ctx, s)
		if err != nil {
			return fmt.Errorf("error creating demo session %q: %w", s.Title, err)
		}
		lgr.Debug().Str("sessionID", details.ID.String()).Str("title", details.Title).Msg("Demo session created")
	}

	lgr.Info().Str("email", DemoEmail).Msg("Demo data created")
	return nil
}

func demoSessions(creatorID uuid.UUID, now time.Time) []*appModels.StudySession {
	description := "Bring your problem sets."
	return []*appModels.StudySession{
		{
			Title:       "Calculus midterm review",
			CourseCode:  "MATH101",
			Description: &description,
			Date:        now.AddDate(0, 0, 3).Format("2006-01-02"),
			Time:        "14:00",
			Location:    "Library, room 2",
			MeetingType: appModels.MeetingOnCampus,
			MaxCapacity: 6,
			CreatorID:   creatorID,
		},
		{
			Title:       "Algorithms study group",
			CourseCode:  "CS201",
			Date:        now.AddDate(0, 0, 7).Format("2006-01-02"),
			Time:        "18:30",
			Location:    "https://meet.example.com/cs201",
			MeetingType: appModels.MeetingOnline,
			MaxCapacity: 10,
			CreatorID:   creatorID,
		},
	}
}
