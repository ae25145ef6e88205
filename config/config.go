// Package config reads the exporter's optional environment configuration.
// Every default reproduces the fixed behavior: listen on :9256, native
// process source, no filter.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	SourceNative   = "native"
	SourceGopsutil = "gopsutil"
)

// Config holds the exporter configuration.
type Config struct {
	ListenAddr string `env:"PROCESS_EXPORTER_LISTEN_ADDR" envDefault:":9256"`
	Source     string `env:"PROCESS_EXPORTER_SOURCE" envDefault:"native"`
	Filter     string `env:"PROCESS_EXPORTER_FILTER" envDefault:""`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given environment instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	switch c.Source {
	case SourceNative, SourceGopsutil:
	default:
		return fmt.Errorf("unknown process source %q (want %s or %s)", c.Source, SourceNative, SourceGopsutil)
	}
	return nil
}
