// Package repomanager vends repository implementations bound to a database
// handle and applies the embedded schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/migrations"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager serves both supported drivers; only the migration set
// differs between them.
type SQLRepositoryManager struct {
	dialect goose.Dialect
	dir     string
	log     logging.Logger
}

// NewSQLRepositoryManager constructs a RepositoryManager for driver
// (dbx.DriverPostgres or dbx.DriverSQLite).
func NewSQLRepositoryManager(driver string, log logging.Logger) (*SQLRepositoryManager, error) {
	m := &SQLRepositoryManager{log: log}

	switch driver {
	case dbx.DriverPostgres:
		m.dialect, m.dir = goose.DialectPostgres, "postgres"
	case dbx.DriverSQLite:
		m.dialect, m.dir = goose.DialectSQLite3, "sqlite"
	default:
		return nil, fmt.Errorf("%w: %q", dbx.ErrUnsupportedDriver, driver)
	}

	return m, nil
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// Tasks returns a tasks.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewSQLRepository(db, m.log)
}

// gooseUp is a seam for testing migration failures.
var gooseUp = func(ctx context.Context, p *goose.Provider) ([]*goose.MigrationResult, error) {
	return p.Up(ctx)
}

// RunMigrations applies every pending migration for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	fsys, err := migrations.Dir(m.dir)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(m.dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	results, err := gooseUp(ctx, provider)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		m.log.Info(ctx, "migration applied", "source", r.Source.Path, "duration", r.Duration.String())
	}

	return nil
}
