package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewSessionRepository(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM session_messages WHERE session_id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM session_participants WHERE session_id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM study_sessions WHERE id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewSessionRepository(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM session_messages WHERE session_id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM session_participants WHERE session_id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM study_sessions WHERE id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), id), apperrors.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_UpdateCapacityBelowCount(t *testing.T) {
	mock := newMock(t)
	repo := NewSessionRepository(mock)
	id, creatorID := uuid.New(), uuid.New()
	one := 1

	mock.ExpectBegin()
	mock.ExpectQuery(lockSessionSQL).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"max_capacity", "creator_id"}).AddRow(4, creatorID))
	mock.ExpectQuery(countMembersSQL).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), id, models.SessionUpdate{MaxCapacity: &one})
	assert.ErrorIs(t, err, apperrors.ErrCapacityBelowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByIDMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewSessionRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM study_sessions s JOIN users u ON u.id = s.creator_id WHERE s.id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_CreateUnknownCreator(t *testing.T) {
	mock := newMock(t)
	repo := NewSessionRepository(mock)
	session := &models.StudySession{
		Title:       "Linear algebra review",
		CourseCode:  "MATH201",
		Date:        "2025-03-01",
		Time:        "14:00",
		Location:    "Library room 2",
		MeetingType: models.MeetingOnCampus,
		MaxCapacity: 5,
		CreatorID:   uuid.New(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO study_sessions`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: sessionsCreatorFKey})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), session)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
