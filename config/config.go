// Package config loads the TOML configuration of the mock
// mail server and applies host-specific overrides from the
// process environment.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Structs

// Config holds all information parsed from
// supplied config file.
type Config struct {
	IMAP       Endpoint
	SMTP       Endpoint
	Prometheus Prometheus
}

// Endpoint describes one of the two protocol listeners:
// where it binds and the greeting text it opens every
// session with.
type Endpoint struct {
	ListenAddr string
	Greeting   string
}

// Prometheus configures the optional metrics endpoint.
// An empty address disables it.
type Prometheus struct {
	ListenAddr string
}

// Functions

// LoadConfig takes in the path to the main config file in
// TOML syntax and places the values from the file in the
// corresponding struct. Fields absent from the file keep
// the defaults for local testing.
func LoadConfig(configFile string) (*Config, error) {

	conf := DefaultConfig()

	_, err := toml.DecodeFile(configFile, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read in TOML config file at '%s'", configFile)
	}

	return conf, nil
}

// DefaultConfig returns the configuration used when no file
// overrides anything: both listeners on deliberately
// unprivileged local ports, metrics disabled.
func DefaultConfig() *Config {

	return &Config{
		IMAP: Endpoint{
			ListenAddr: "127.0.0.1:1143",
			Greeting:   "Mock IMAP Server Ready",
		},
		SMTP: Endpoint{
			ListenAddr: "127.0.0.1:1587",
			Greeting:   "Mock SMTP Server Ready",
		},
	}
}
