// Package users stores user accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/jmoiron/sqlx"
)

// SQLRepository works on both Postgres and SQLite; placeholders are rebound
// for the driver behind db.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts user and fills in its id. A username or email collision is
// reported as common.ErrorAlreadyExists, an oversized column value as
// common.ErrorValidation.
func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := r.db.Rebind(
		`INSERT INTO users (username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`)

	err := sqlx.GetContext(ctx, r.db, &user.ID, query,
		user.Username, user.Email, user.PasswordHash, user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		if dbx.IsValueTooLong(err) {
			return nil, fmt.Errorf("%w: value too long", common.ErrorValidation)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.db.Rebind(
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE username = ?`)

	user := &models.User{}
	err := sqlx.GetContext(ctx, r.db, user, query, username)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	query := r.db.Rebind(
		`SELECT username, email, created_at FROM users
		 WHERE id = ?`)

	profile := &models.Profile{}
	err := sqlx.GetContext(ctx, r.db, profile, query, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}
