package models

import (
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/server/checklist"
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	Text        string              `json:"text"`
	Description string              `json:"description"`
	Tag         string              `json:"tag"`
	Checklist   checklist.Checklist `json:"checklist"`
	Completed   bool                `json:"completed"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Text        string              `json:"text"`
	Description string              `json:"description"`
	Tag         string              `json:"tag"`
	Checklist   checklist.Checklist `json:"checklist"`
}

// TaskPatch carries a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Text        *string              `json:"text"`
	Description *string              `json:"description"`
	Tag         *string              `json:"tag"`
	Checklist   *checklist.Checklist `json:"checklist"`
	Completed   *bool                `json:"completed"`
}
