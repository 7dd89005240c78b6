// Package config loads runtime configuration for the to-do CLI.
//
// Sources, later ones override earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config:
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "request_timeout": "10s"
//	}
//
//  3. Command-line flags: -a server URL, -t request timeout in seconds.
package config

import "time"

type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds a Config from defaults, the JSON file and flags.
// args are the command-line arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
