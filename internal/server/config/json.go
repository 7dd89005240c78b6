package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
	"github.com/dmitrijs2005/gophtodo/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Durations
// accept "2h" style strings or integer nanoseconds. Absent fields keep the
// value from the previous source.
type JsonConfig struct {
	HTTPAddr                    string          `json:"http_addr"`
	GRPCAddr                    string          `json:"grpc_addr"`
	DatabaseDriver              string          `json:"database_driver"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
	TrustedOrigins              []string        `json:"trusted_origins"`
	LogLevel                    string          `json:"log_level"`
	LogDevelopment              *bool           `json:"log_development"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
	HealthCheckInterval         *timex.Duration `json:"health_check_interval"`
}

// parseJson overlays the file named by -c/-config onto config.
// No flag means nothing to load.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.LogDevelopment != nil {
		config.LogDevelopment = *c.LogDevelopment
	}
	if c.TrustedOrigins != nil {
		config.TrustedOrigins = c.TrustedOrigins
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
