package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/studymate/backend/internal/app/models"
	"github.com/studymate/backend/internal/db"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/dberrors"
)

const (
	participantCountExpr = "(SELECT COUNT(*) FROM session_participants sp WHERE sp.session_id = s.id)"
	sessionsCreatorFKey  = "study_sessions_creator_id_fkey"
)

// SessionRepository is the session registry over 'study_sessions'
type SessionRepository struct {
	db db.DBTX
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(conn db.DBTX) *SessionRepository {
	return &SessionRepository{db: conn}
}

// sessionDetailsQuery selects sessions with creator name and live participant count
func sessionDetailsQuery() squirrel.SelectBuilder {
	return psql.Select(
		"s.id", "s.title", "s.course_code", "s.description", "s.date", "s.time",
		"s.location", "s.meeting_type", "s.max_capacity", "s.creator_id",
		"s.created_at", "s.updated_at",
		"u.first_name", "u.last_name",
		participantCountExpr+" AS current_capacity",
	).
		From("study_sessions s").
		Join("users u ON u.id = s.creator_id")
}

func scanSessionDetails(row pgx.Row) (*models.SessionDetails, error) {
	var (
		d                   models.SessionDetails
		firstName, lastName string
	)
	err := row.Scan(
		&d.ID, &d.Title, &d.CourseCode, &d.Description, &d.Date, &d.Time,
		&d.Location, &d.MeetingType, &d.MaxCapacity, &d.CreatorID,
		&d.CreatedAt, &d.UpdatedAt,
		&firstName, &lastName,
		&d.CurrentCapacity,
	)
	if err != nil {
		return nil, err
	}
	d.CreatorName = firstName + " " + lastName
	return &d, nil
}

func listSessionDetails(ctx context.Context, conn db.DBTX, query squirrel.SelectBuilder) ([]*models.SessionDetails, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.SessionDetails, 0)
	for rows.Next() {
		d, err := scanSessionDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		sessions = append(sessions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sessions, nil
}

func getSessionDetails(ctx context.Context, conn db.DBTX, id uuid.UUID) (*models.SessionDetails, error) {
	sql, args, err := sessionDetailsQuery().Where("s.id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	d, err := scanSessionDetails(conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return d, nil
}

// lockSession takes the row lock that serialises joins and capacity changes
// on one session. It returns the locked max_capacity and creator.
func lockSession(ctx context.Context, tx pgx.Tx, id uuid.UUID) (maxCapacity int, creatorID uuid.UUID, err error) {
	sql, args, err := psql.Select("max_capacity", "creator_id").
		From("study_sessions").
		Where("id = ?", id).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return 0, uuid.Nil, fmt.Errorf("error building SQL: %w", err)
	}

	if err := tx.QueryRow(ctx, sql, args...).Scan(&maxCapacity, &creatorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, uuid.Nil, apperrors.ErrSessionNotFound
		}
		return 0, uuid.Nil, fmt.Errorf("error locking session: %w", err)
	}
	return maxCapacity, creatorID, nil
}

func countParticipants(ctx context.Context, conn db.DBTX, sessionID uuid.UUID) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").
		From("session_participants").
		Where("session_id = ?", sessionID).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// Create inserts the session and the creator's participation in one transaction
func (r *SessionRepository) Create(ctx context.Context, session *models.StudySession) (*models.SessionDetails, error) {
	var details *models.SessionDetails

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := psql.Insert("study_sessions").
			Columns("title", "course_code", "description", "date", "time",
				"location", "meeting_type", "max_capacity", "creator_id").
			Values(session.Title, session.CourseCode, session.Description, session.Date, session.Time,
				session.Location, string(session.MeetingType), session.MaxCapacity, session.CreatorID).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt); err != nil {
			if dberrors.IsForeignKeyViolation(err, sessionsCreatorFKey) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("error inserting session: %w", err)
		}

		sql, args, err = psql.Insert("session_participants").
			Columns("session_id", "user_id").
			Values(session.ID, session.CreatorID).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error inserting creator participation: %w", err)
		}

		details, err = getSessionDetails(ctx, tx, session.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// GetByID returns the session with derived fields
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SessionDetails, error) {
	return getSessionDetails(ctx, r.db, id)
}

// ListForUser returns sessions the user created or joined, each once
func (r *SessionRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.SessionDetails, error) {
	query := sessionDetailsQuery().
		Where(squirrel.Or{
			squirrel.Expr("s.creator_id = ?", userID),
			squirrel.Expr("s.id IN (SELECT session_id FROM session_participants WHERE user_id = ?)", userID),
		}).
		OrderBy("s.date", "s.time", "s.created_at")

	return listSessionDetails(ctx, r.db, query)
}

// ListBySchool returns sessions whose creator belongs to school
func (r *SessionRepository) ListBySchool(ctx context.Context, school string, filter models.SessionFilter) ([]*models.SessionDetails, error) {
	query := sessionDetailsQuery().Where(squirrel.Eq{"u.school": school})

	if filter.CourseCode != "" {
		query = query.Where(squirrel.Eq{"s.course_code": filter.CourseCode})
	}
	if filter.MeetingType != "" {
		query = query.Where(squirrel.Eq{"s.meeting_type": string(filter.MeetingType)})
	}
	if filter.ExcludeFull {
		query = query.Where(participantCountExpr + " < s.max_capacity")
	}

	return listSessionDetails(ctx, r.db, query.OrderBy("s.date", "s.time", "s.created_at"))
}

// Update applies a partial update under the session row lock.
// Lowering max_capacity below the live count fails with ErrCapacityBelowCount.
func (r *SessionRepository) Update(ctx context.Context, id uuid.UUID, update models.SessionUpdate) (*models.SessionDetails, error) {
	var details *models.SessionDetails

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, _, err := lockSession(ctx, tx, id); err != nil {
			return err
		}

		if update.MaxCapacity != nil {
			count, err := countParticipants(ctx, tx, id)
			if err != nil {
				return err
			}
			if *update.MaxCapacity < count {
				return apperrors.ErrCapacityBelowCount
			}
		}

		query := psql.Update("study_sessions").Set("updated_at", squirrelNow).Where("id = ?", id)
		if update.Title != nil {
			query = query.Set("title", *update.Title)
		}
		if update.Description != nil {
			query = query.Set("description", *update.Description)
		}
		if update.Date != nil {
			query = query.Set("date", *update.Date)
		}
		if update.Time != nil {
			query = query.Set("time", *update.Time)
		}
		if update.Location != nil {
			query = query.Set("location", *update.Location)
		}
		if update.MeetingType != nil {
			query = query.Set("meeting_type", string(*update.MeetingType))
		}
		if update.MaxCapacity != nil {
			query = query.Set("max_capacity", *update.MaxCapacity)
		}

		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error updating session: %w", err)
		}

		details, err = getSessionDetails(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// Delete removes the session with its messages and participations in one transaction
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, table := range []string{"session_messages", "session_participants"} {
			sql, args, err := psql.Delete(table).Where("session_id = ?", id).ToSql()
			if err != nil {
				return fmt.Errorf("error building SQL: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error deleting from %s: %w", table, err)
			}
		}

		sql, args, err := psql.Delete("study_sessions").Where("id = ?", id).ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error deleting session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrSessionNotFound
		}
		return nil
	})
}
