package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/server/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCAddr = "127.0.0.1:0"
	c.DatabaseDriver = dbx.DriverSQLite
	c.DatabaseDSN = fmt.Sprintf("file:app_%s?mode=memory&cache=shared", uuid.NewString())
	c.LogLevel = "error"
	c.HealthCheckInterval = 50 * time.Millisecond
	return c
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_MigrationsCreateTables(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	defer app.Close()

	var n int
	err = app.db.GetContext(context.Background(), &n,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'tasks')")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestApp_SkipMigrations(t *testing.T) {
	c := testConfig()
	c.SkipMigrations = true

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	defer app.Close()

	var n int
	err = app.db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'users'")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApp_UnsupportedDriver(t *testing.T) {
	c := testConfig()
	c.DatabaseDriver = "oracle"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, dbx.ErrUnsupportedDriver)
}

func TestApp_ListenFailureStopsRun(t *testing.T) {
	c := testConfig()
	c.HTTPAddr = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
