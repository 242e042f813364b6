package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertMessageSQL = `INSERT INTO session_messages \(session_id, user_id, message\)\s+SELECT \$1, \$2, \$3\s+WHERE EXISTS`

func TestChatRepository_CreateForParticipant(t *testing.T) {
	mock := newMock(t)
	repo := NewChatRepository(mock)
	sessionID, userID, messageID := uuid.New(), uuid.New(), uuid.New()
	createdAt := time.Now()

	mock.ExpectQuery(insertMessageSQL).WithArgs(sessionID, userID, "hello").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "edited_at"}).
			AddRow(messageID, createdAt, (*time.Time)(nil)))

	msg := &models.ChatMessage{SessionID: sessionID, UserID: userID, Message: "hello"}
	require.NoError(t, repo.CreateForParticipant(context.Background(), msg))
	assert.Equal(t, messageID, msg.ID)
	assert.Equal(t, createdAt, msg.CreatedAt)
	assert.Nil(t, msg.EditedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_CreateForNonParticipant(t *testing.T) {
	mock := newMock(t)
	repo := NewChatRepository(mock)
	sessionID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(insertMessageSQL).WithArgs(sessionID, userID, "hello").WillReturnError(pgx.ErrNoRows)

	err := repo.CreateForParticipant(context.Background(), &models.ChatMessage{SessionID: sessionID, UserID: userID, Message: "hello"})
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_ListBySession(t *testing.T) {
	mock := newMock(t)
	repo := NewChatRepository(mock)
	sessionID := uuid.New()
	known, gone := uuid.New(), uuid.New()
	now := time.Now()
	first, last := "Alice", "Smith"

	mock.ExpectQuery(`FROM session_messages m LEFT JOIN users u ON u.id = m.user_id WHERE m.session_id = \$1 ORDER BY m.created_at ASC, m.seq ASC LIMIT 2 OFFSET 4`).
		WithArgs(sessionID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "user_id", "message", "created_at", "edited_at", "first_name", "last_name"}).
			AddRow(uuid.New(), sessionID, known, "hi", now, (*time.Time)(nil), &first, &last).
			AddRow(uuid.New(), sessionID, gone, "bye", now.Add(time.Second), (*time.Time)(nil), (*string)(nil), (*string)(nil)))

	messages, err := repo.ListBySession(context.Background(), sessionID, 2, 4)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "Alice Smith", messages[0].AuthorName)
	assert.False(t, messages[0].AuthorMissing)

	assert.Empty(t, messages[1].AuthorName)
	assert.True(t, messages[1].AuthorMissing)
	assert.Equal(t, gone, messages[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewChatRepository(mock)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM session_messages WHERE id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM session_messages WHERE id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), apperrors.ErrMessageNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_GetByIDMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewChatRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM session_messages WHERE id = \$1`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}
