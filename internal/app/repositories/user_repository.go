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

const usersEmailKey = "users_email_key"

var userColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name",
	"school", "bio", "rating", "created_at", "updated_at",
}

// UserRepository is the credential store over the 'users' table
type UserRepository struct {
	db db.DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.DBTX) *UserRepository {
	return &UserRepository{db: conn}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.School, &u.Bio, &u.Rating, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and fills its generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := psql.Insert("users").
		Columns("email", "password_hash", "first_name", "last_name", "school").
		Values(user.Email, user.PasswordHash, user.FirstName, user.LastName, user.School).
		Suffix("RETURNING id, created_at, updated_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailKey) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetByEmail looks a user up by exact (already normalised) email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, psql.Select(userColumns...).From("users").Where("email = ?", email))
}

// GetByID looks a user up by id
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, psql.Select(userColumns...).From("users").Where("id = ?", id))
}

// UpdateProfile applies the non-nil fields of update and returns the stored row
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update models.UserProfileUpdate) (*models.User, error) {
	query := psql.Update("users").Set("updated_at", squirrelNow).Where("id = ?", id)
	if update.FirstName != nil {
		query = query.Set("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		query = query.Set("last_name", *update.LastName)
	}
	if update.Bio != nil {
		query = query.Set("bio", *update.Bio)
	}
	query = query.Suffix("RETURNING " + joinColumns(userColumns))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, query squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return user, nil
}
