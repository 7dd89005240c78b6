package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the to-do server
//	-t int      request timeout (in seconds)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, flagx.Allowed{Value: []string{"-a", "-t"}})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
