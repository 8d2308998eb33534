package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "points.db", cfg.DBPath)
	assert.Equal(t, "102030", cfg.AdminCode)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./web/dist", cfg.StaticDir)
	assert.Equal(t, time.Minute, cfg.RolloverInterval)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("POINTS_PORT", "3000")
	t.Setenv("POINTS_STORAGE", "memory")
	t.Setenv("POINTS_ADMIN_CODE", "s3cret")
	t.Setenv("POINTS_ALLOWED_ORIGINS", "https://points.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "s3cret", cfg.AdminCode)
	assert.Equal(t, []string{"https://points.example"}, cfg.AllowedOrigins)
}

func TestLoad_DotenvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, so make sure
	// the one under test is unset for the duration of the test.
	t.Setenv("POINTS_CATALOG_PATH", "")
	os.Unsetenv("POINTS_CATALOG_PATH")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POINTS_CATALOG_PATH=catalog.yaml\n"), 0o600))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("POINTS_CATALOG_PATH") })

	assert.Equal(t, "catalog.yaml", cfg.CatalogPath)
}

func TestLoad_BadPort(t *testing.T) {
	t.Setenv("POINTS_PORT", "eighty")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:             8080,
		Storage:          StorageSQLite,
		DBPath:           "points.db",
		AdminCode:        "1",
		LogFormat:        "json",
		RolloverInterval: time.Minute,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"unknown storage", func(c *Config) { c.Storage = "redis" }},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }},
		{"empty admin code", func(c *Config) { c.AdminCode = "" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"zero rollover interval", func(c *Config) { c.RolloverInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "console"}
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "loud"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
