// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds every setting of the points server and CLI.
type Config struct {
	// HTTP Server
	Port int `env:"POINTS_PORT" envDefault:"8080"`

	// Storage
	Storage string `env:"POINTS_STORAGE" envDefault:"sqlite"`
	DBPath  string `env:"POINTS_DB_PATH" envDefault:"points.db"`

	// AdminCode unlocks mutations for a session.
	AdminCode string `env:"POINTS_ADMIN_CODE" envDefault:"102030"`

	// CatalogPath optionally replaces the built-in catalogs (.json, .yaml, .toml).
	CatalogPath string `env:"POINTS_CATALOG_PATH"`

	// AllowedOrigins for CORS, comma separated.
	AllowedOrigins []string `env:"POINTS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`

	// StaticDir holds the built front end; skipped when missing.
	StaticDir string `env:"POINTS_STATIC_DIR" envDefault:"./web/dist"`

	// RolloverInterval is how often the server checks for a new month.
	RolloverInterval time.Duration `env:"POINTS_ROLLOVER_INTERVAL" envDefault:"1m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads optional dotenv files, then the environment.
// Missing dotenv files are ignored; variables already set win.
func Load(dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}

	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			problems = append(problems, "sqlite storage requires POINTS_DB_PATH")
		}
	case StorageMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid storage %q: must be %s or %s", c.Storage, StorageSQLite, StorageMemory))
	}

	if c.RolloverInterval <= 0 {
		problems = append(problems, "rollover interval must be positive")
	}

	if c.AdminCode == "" {
		problems = append(problems, "admin code must not be empty")
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be json or console", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
