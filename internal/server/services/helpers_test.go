package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) (*sqlx.DB, *repomanager.SQLRepositoryManager) {
	t.Helper()

	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.DriverSQLite, fmt.Sprintf("file:services_%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewSQLRepositoryManager(dbx.DriverSQLite, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db.DB))

	return db, rm
}

func newTestServices(t *testing.T) (*UserService, *TaskService, *auth.TokenManager) {
	t.Helper()

	db, rm := newTestDB(t)
	tokens := auth.NewTokenManager([]byte("test-secret"), 2*time.Hour)
	users := NewUserService(db, rm, auth.NewBcryptHasher(bcrypt.MinCost), tokens)
	tasks := NewTaskService(db, rm)

	return users, tasks, tokens
}

// steppingClock returns a clock that advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}
