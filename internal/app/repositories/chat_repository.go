package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/db"
	"github.com/studymate/backend/internal/pkg/apperrors"
)

// ChatRepository is the append-only chat log over 'session_messages'
type ChatRepository struct {
	db db.DBTX
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(conn db.DBTX) *ChatRepository {
	return &ChatRepository{db: conn}
}

// CreateForParticipant inserts the message only if its author still holds a
// participation row, in a single statement. ErrNotParticipant otherwise.
func (r *ChatRepository) CreateForParticipant(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO session_messages (session_id, user_id, message)
		SELECT $1, $2, $3
		WHERE EXISTS (
			SELECT 1 FROM session_participants WHERE session_id = $1 AND user_id = $2
		)
		RETURNING id, created_at, edited_at
	`

	err := r.db.QueryRow(ctx, query, message.SessionID, message.UserID, message.Message).
		Scan(&message.ID, &message.CreatedAt, &message.EditedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotParticipant
		}
		return fmt.Errorf("error creating chat message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by its ID
func (r *ChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error) {
	sql, args, err := psql.Select("id", "session_id", "user_id", "message", "created_at", "edited_at").
		From("session_messages").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var m models.ChatMessage
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.SessionID, &m.UserID, &m.Message, &m.CreatedAt, &m.EditedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error retrieving chat message: %w", err)
	}

	return &m, nil
}

// ListBySession returns a window of a session's messages, oldest first.
// Authors that no longer resolve come back with AuthorMissing set.
func (r *ChatRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error) {
	sql, args, err := psql.Select(
		"m.id", "m.session_id", "m.user_id", "m.message", "m.created_at", "m.edited_at",
		"u.first_name", "u.last_name",
	).
		From("session_messages m").
		LeftJoin("users u ON u.id = m.user_id").
		Where("m.session_id = ?", sessionID).
		OrderBy("m.created_at ASC", "m.seq ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.ChatMessage, 0)
	for rows.Next() {
		var (
			m                   models.ChatMessage
			firstName, lastName *string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Message, &m.CreatedAt, &m.EditedAt, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		if firstName == nil || lastName == nil {
			m.AuthorMissing = true
		} else {
			m.AuthorName = *firstName + " " + *lastName
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return messages, nil
}

// Delete removes a message by id
func (r *ChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := psql.Delete("session_messages").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}

	return nil
}
