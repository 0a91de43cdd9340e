// Package config loads printline's on-disk configuration: the serial port
// and baud rate to open, and how chatty the session's logging should be.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a printline invocation needs beyond what's on
// the command line.
type Config struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"logLevel"`

	// ConnectTimeoutSeconds bounds how long printline waits after
	// connecting for the firmware's first "start"/"ok" (it carries on with
	// a warning once that time is up); it is also the serial port's read
	// timeout. Expressed in seconds in the file and converted by
	// ConnectTimeout().
	ConnectTimeoutSeconds int `yaml:"connectTimeoutSeconds"`
}

// defaults mirror printcore.py's own constructor defaults (115200 baud,
// 5-second initial timeout).
func defaults() Config {
	return Config{
		Baud:                  115200,
		LogLevel:              "info",
		ConnectTimeoutSeconds: 5,
	}
}

// Load reads and parses a YAML config file at path, filling in defaults
// for anything left unset. A missing file is not an error: Load returns
// defaults() so printline works with command-line flags alone.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Baud == 0 {
		cfg.Baud = defaults().Baud
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults().LogLevel
	}
	if cfg.ConnectTimeoutSeconds == 0 {
		cfg.ConnectTimeoutSeconds = defaults().ConnectTimeoutSeconds
	}
	return &cfg, nil
}

// ConnectTimeout returns ConnectTimeoutSeconds as a time.Duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}
