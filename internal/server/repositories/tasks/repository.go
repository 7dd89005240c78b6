package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

// Repository stores tasks. Every method is scoped by the owning user id, so a
// task that exists but belongs to someone else is reported exactly like a
// missing one.
type Repository interface {
	List(ctx context.Context, userID int64) ([]models.Task, error)
	Get(ctx context.Context, userID, taskID int64) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch, now time.Time) error
	Delete(ctx context.Context, userID, taskID int64) error
}
