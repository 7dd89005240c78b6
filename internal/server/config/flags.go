package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string         HTTP bind address (e.g. ":5000")
//	-g string         gRPC health bind address, empty disables it
//	-driver string    database driver: pgx or sqlite
//	-d string         database DSN
//	-k string         token signing secret
//	-t int            access token validity, minutes
//	-skip-migrations  do not apply schema migrations at startup
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, flagx.Allowed{
		Value: []string{"-a", "-g", "-driver", "-d", "-k", "-t"},
		Bool:  []string{"-skip-migrations"},
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run the gRPC health server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx or sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "token signing secret")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.BoolVar(&config.SkipMigrations, "skip-migrations", config.SkipMigrations, "skip schema migrations")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})

	return nil
}
