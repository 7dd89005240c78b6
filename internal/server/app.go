// Package server wires configuration, storage, services and the HTTP and gRPC
// front ends into one runnable application.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/config"
	gs "github.com/dmitrijs2005/gophtodo/internal/server/grpc"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtodo/internal/server/rest"
	"github.com/dmitrijs2005/gophtodo/internal/server/services"
	"github.com/jmoiron/sqlx"
)

type App struct {
	config *config.Config
	logger *logging.ZapLogger
	db     *sqlx.DB
	http   *rest.HTTPServer
	grpc   *gs.GRPCServer
}

// NewApp opens the database, applies migrations unless disabled and builds
// both servers. The caller owns the returned App and must Run it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewZapLogger(logging.Options{Level: c.LogLevel, Development: c.LogDevelopment})

	secret := c.SecretKey
	if secret == "" {
		var err error
		secret, err = common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("secret generation error: %w", err)
		}
		logger.Warn(ctx, "JWT_SECRET is not set, using a random key; tokens will not survive a restart")
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if c.SkipMigrations {
		logger.Info(ctx, "Skipping migrations")
	} else if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tokens := auth.NewTokenManager([]byte(secret), c.AccessTokenValidityDuration)
	gate := auth.NewGate(tokens)

	us := services.NewUserService(db, rm, auth.NewBcryptHasher(c.BcryptCost), tokens)
	ts := services.NewTaskService(db, rm)

	h := rest.NewHandler(us, ts, db, logger)
	router := rest.NewRouter(h, gate, c.TrustedOrigins, logger)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		http:   rest.NewHTTPServer(c.HTTPAddr, router, logger, c.ReadTimeout, c.WriteTimeout, c.ShutdownTimeout),
	}
	if c.GRPCAddr != "" {
		app.grpc = gs.NewGRPCServer(c.GRPCAddr, logger, us, ts, gate, db, c.HealthCheckInterval)
	}

	return app, nil
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until one of the servers
// fails, then stops the other one and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				cancelFunc()
			}
		}()
	}

	start("http", app.http.Run)
	if app.grpc != nil {
		start("grpc", app.grpc.Run)
	}

	wg.Wait()

	app.logger.Info(context.Background(), "Shutting down...")
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	_ = app.logger.Sync()

	return firstErr
}

// Close releases resources of an App that was built but never run.
func (app *App) Close() error {
	return app.db.Close()
}
