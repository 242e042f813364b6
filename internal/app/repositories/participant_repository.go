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
	"github.com/studymate/backend/internal/pkg/dberrors"
)

const sessionParticipantsKey = "session_participants_session_user_key"

// ParticipantRepository is the participant ledger over 'session_participants'
type ParticipantRepository struct {
	db db.DBTX
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(conn db.DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: conn}
}

// Add joins userID to sessionID. The session row is locked for the whole
// check-then-insert so concurrent joins cannot overfill it.
func (r *ParticipantRepository) Add(ctx context.Context, sessionID, userID uuid.UUID) (*models.Participation, error) {
	var participation *models.Participation

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		maxCapacity, _, err := lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		joined, err := isParticipant(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if joined {
			return apperrors.ErrAlreadyJoined
		}

		count, err := countParticipants(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if count >= maxCapacity {
			return apperrors.ErrSessionFull
		}

		sql, args, err := psql.Insert("session_participants").
			Columns("session_id", "user_id").
			Values(sessionID, userID).
			Suffix("RETURNING id, joined_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		p := &models.Participation{SessionID: sessionID, UserID: userID}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.JoinedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, sessionParticipantsKey) {
				return apperrors.ErrAlreadyJoined
			}
			return fmt.Errorf("error executing query: %w", err)
		}
		participation = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return participation, nil
}

// Remove deletes the participation row. It reports whether a row existed.
func (r *ParticipantRepository) Remove(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	sql, args, err := psql.Delete("session_participants").
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// List returns the participants of a session, earliest joiner first
func (r *ParticipantRepository) List(ctx context.Context, sessionID uuid.UUID) ([]*models.Participant, error) {
	sql, args, err := psql.Select("u.id", "u.first_name", "u.last_name", "u.email", "sp.joined_at").
		From("session_participants sp").
		Join("users u ON u.id = sp.user_id").
		Where("sp.session_id = ?", sessionID).
		OrderBy("sp.joined_at ASC", "sp.seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return participants, nil
}

// IsParticipant checks if a user holds a participation row for the session
func (r *ParticipantRepository) IsParticipant(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	return isParticipant(ctx, r.db, sessionID, userID)
}

func isParticipant(ctx context.Context, conn db.DBTX, sessionID, userID uuid.UUID) (bool, error) {
	sql, args, err := psql.Select("1").
		From("session_participants").
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var exists int
	if err := conn.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}
