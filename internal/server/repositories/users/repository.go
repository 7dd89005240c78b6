package users

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
}
