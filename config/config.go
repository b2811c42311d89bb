// Package config handles codestep.toml engine configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents a codestep.toml configuration file.
type Config struct {
	Cache Cache `toml:"cache"`
	Log   Log   `toml:"log"`
}

// Cache configures the artifact cache.
type Cache struct {
	// PersistPath is the SQLite database path for the persistent artifact
	// tier. Empty disables persistence (memory-only cache).
	PersistPath string `toml:"persist-path"`
}

// Log configures logging.
type Log struct {
	// Verbosity follows commonlog conventions: -1 silences, higher values
	// log more.
	Verbosity int `toml:"verbosity"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: Log{Verbosity: 0},
	}
}

// Load parses a codestep.toml file from the given path. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if c.Cache.PersistPath != "" {
		abs, err := filepath.Abs(c.Cache.PersistPath)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve path %s: %w", c.Cache.PersistPath, err)
		}
		c.Cache.PersistPath = abs
	}

	return c, nil
}
