// Package tasks stores to-do items.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/checklist"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/jmoiron/sqlx"
)

const taskColumns = `id, user_id, text, description, tag, checklist, completed, created_at, updated_at`

// row mirrors the tasks table; nullable columns are normalized by toModel.
type row struct {
	ID          int64          `db:"id"`
	UserID      int64          `db:"user_id"`
	Text        string         `db:"text"`
	Description sql.NullString `db:"description"`
	Tag         sql.NullString `db:"tag"`
	Checklist   sql.NullString `db:"checklist"`
	Completed   bool           `db:"completed"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type SQLRepository struct {
	db  dbx.DBTX
	log logging.Logger
}

func NewSQLRepository(db dbx.DBTX, log logging.Logger) *SQLRepository {
	return &SQLRepository{db: db, log: log}
}

func (r *SQLRepository) toModel(ctx context.Context, in row) models.Task {
	items, ok := checklist.Decode(in.Checklist.String)
	if !ok {
		r.log.Warn(ctx, "corrupt checklist replaced with empty list", "task_id", in.ID, "user_id", in.UserID)
	}

	return models.Task{
		ID:          in.ID,
		UserID:      in.UserID,
		Text:        in.Text,
		Description: in.Description.String,
		Tag:         in.Tag.String,
		Checklist:   items,
		Completed:   in.Completed,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
}

// List returns the user's tasks in insertion order.
func (r *SQLRepository) List(ctx context.Context, userID int64) ([]models.Task, error) {
	query := r.db.Rebind(
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE user_id = ?
		 ORDER BY id`)

	var rows []row
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]models.Task, 0, len(rows))
	for _, rw := range rows {
		result = append(result, r.toModel(ctx, rw))
	}

	return result, nil
}

func (r *SQLRepository) Get(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	query := r.db.Rebind(
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE id = ? AND user_id = ?`)

	var rw row
	if err := sqlx.GetContext(ctx, r.db, &rw, query, taskID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	task := r.toModel(ctx, rw)
	return &task, nil
}

// Create inserts task and fills in its id. Timestamps are taken from task.
func (r *SQLRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	blob, err := checklist.Encode(task.Checklist)
	if err != nil {
		return nil, fmt.Errorf("encode checklist: %w", err)
	}

	query := r.db.Rebind(
		`INSERT INTO tasks (user_id, text, description, tag, checklist, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`)

	err = sqlx.GetContext(ctx, r.db, &task.ID, query,
		task.UserID, task.Text, task.Description, task.Tag, blob, task.Completed, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, dbError(err)
	}

	if task.Checklist == nil {
		task.Checklist = checklist.Checklist{}
	}

	return task, nil
}

// Update applies the non-nil fields of patch and sets updated_at to now.
func (r *SQLRepository) Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch, now time.Time) error {
	var blob any
	if patch.Checklist != nil {
		encoded, err := checklist.Encode(*patch.Checklist)
		if err != nil {
			return fmt.Errorf("encode checklist: %w", err)
		}
		blob = encoded
	}

	query := r.db.Rebind(
		`UPDATE tasks SET
		     text = COALESCE(?, text),
		     description = COALESCE(?, description),
		     tag = COALESCE(?, tag),
		     checklist = COALESCE(?, checklist),
		     completed = COALESCE(?, completed),
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		nullable(patch.Text), nullable(patch.Description), nullable(patch.Tag), blob, nullable(patch.Completed),
		now, taskID, userID)
	if err != nil {
		return dbError(err)
	}

	return expectOneRow(res)
}

func (r *SQLRepository) Delete(ctx context.Context, userID, taskID int64) error {
	query := r.db.Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// dbError maps a write failure; oversized values become validation errors.
func dbError(err error) error {
	if dbx.IsValueTooLong(err) {
		return fmt.Errorf("%w: value too long", common.ErrorValidation)
	}
	return fmt.Errorf("db error: %w", err)
}

// nullable turns a nil pointer into SQL NULL so COALESCE keeps the column.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
