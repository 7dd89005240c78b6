package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()

	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}

	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()

	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":                      "www.example:9000",
		"grpc_addr":                      ":6000",
		"database_driver":                "sqlite",
		"database_dsn":                   "file:todo.db",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "90m",
		"bcrypt_cost":                    5,
		"trusted_origins":                []string{"http://x.example"},
		"log_development":                true,
		"shutdown_timeout":               "1s",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, ":6000", cfg.GRPCAddr)
		assert.Equal(t, "sqlite", cfg.DatabaseDriver)
		assert.Equal(t, "file:todo.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 90*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 5, cfg.BcryptCost)
		assert.Equal(t, []string{"http://x.example"}, cfg.TrustedOrigins)
		assert.True(t, cfg.LogDevelopment)
		assert.Equal(t, time.Second, cfg.ShutdownTimeout)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, nil))

		want := &Config{}
		want.LoadDefaults()
		assert.Equal(t, want, cfg)
	})

	t.Run("partial file keeps other fields", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "debug"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, ":5000", cfg.HTTPAddr)
		assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-config", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}
