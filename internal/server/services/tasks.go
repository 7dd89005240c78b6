package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
)

// TaskService exposes task operations. userID is always the authenticated
// caller; it is never taken from request data.
type TaskService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewTaskService(db *sqlx.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) List(ctx context.Context, userID int64) ([]models.Task, error) {
	var result []models.Task
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Tasks(conn).List(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeError("error listing tasks", err)
	}
	return result, nil
}

func (s *TaskService) Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	if common.Blank(in.Text) {
		return nil, fmt.Errorf("%w: task text required", common.ErrorValidation)
	}
	if tooLong(in.Tag, maxTagLength) {
		return nil, lengthError("tag", maxTagLength)
	}

	now := s.now()
	task := &models.Task{
		UserID:      userID,
		Text:        in.Text,
		Description: in.Description,
		Tag:         in.Tag,
		Checklist:   in.Checklist,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		task, err = s.repomanager.Tasks(conn).Create(ctx, task)
		return err
	})
	if err != nil {
		return nil, storeError("error creating task", err)
	}
	return task, nil
}

// Update applies patch to the caller's task and returns the stored result.
// A task that is missing or owned by someone else yields common.ErrorNotFound.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (*models.Task, error) {
	if patch.Text != nil && common.Blank(*patch.Text) {
		return nil, fmt.Errorf("%w: task text required", common.ErrorValidation)
	}
	if patch.Tag != nil && tooLong(*patch.Tag, maxTagLength) {
		return nil, lengthError("tag", maxTagLength)
	}

	var task *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		if err := repo.Update(ctx, userID, taskID, patch, s.now()); err != nil {
			return err
		}
		var err error
		task, err = repo.Get(ctx, userID, taskID)
		return err
	})
	if err != nil {
		return nil, storeError("error updating task", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		return s.repomanager.Tasks(conn).Delete(ctx, userID, taskID)
	})
	return storeError("error deleting task", err)
}
