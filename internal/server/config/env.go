package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotEnvFile is loaded before the environment is parsed. Variables already
// present in the process environment win over the file.
var dotEnvFile = ".env"

type platformEnv struct {
	Port string `env:"PORT"`
}

// parseEnv overlays environment variables onto config. Unset variables leave
// the field untouched. PORT is honored for platforms that only provide a port
// number, unless HTTP_ADDR is set explicitly.
func parseEnv(config *Config) error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var p platformEnv
	if err := env.Parse(&p); err != nil {
		return err
	}
	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok && p.Port != "" {
		config.HTTPAddr = ":" + p.Port
	}

	return env.Parse(config)
}
