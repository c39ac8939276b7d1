package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Commons featured desktop backgrounds", cfg.Scan.Category)
	assert.Equal(t, 10, cfg.Scan.MaxDepth)
	assert.Equal(t, 500, cfg.Scan.PageSize)
	assert.Equal(t, "tiles", cfg.Output.Directory)
	assert.Equal(t, 30*time.Second, cfg.Commons.APITimeout)
	assert.Equal(t, 60*time.Second, cfg.Download.Timeout)
	assert.Equal(t, 5, cfg.Download.MaxAttempts)
	assert.Equal(t, 5, cfg.RateLimit.APIRequestsPerSecond)
	assert.Equal(t, 1, cfg.RateLimit.DownloadsPerSecond)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WCMIRROR_CATEGORY", "Lighthouses in Finland")
	t.Setenv("WCMIRROR_MAX_DEPTH", "3")
	t.Setenv("WCMIRROR_OUTPUT_DIR", "/tmp/mirror")
	t.Setenv("WCMIRROR_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "Lighthouses in Finland", cfg.Scan.Category)
	assert.Equal(t, 3, cfg.Scan.MaxDepth)
	assert.Equal(t, "/tmp/mirror", cfg.Output.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidDepth(t *testing.T) {
	t.Setenv("WCMIRROR_MAX_DEPTH", "not-a-number")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, 10, cfg.Scan.MaxDepth)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
scan:
  category: "Maps of Europe"
  max_depth: 4
output:
  directory: "maps"
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "Maps of Europe", cfg.Scan.Category)
	assert.Equal(t, 4, cfg.Scan.MaxDepth)
	assert.Equal(t, "maps", cfg.Output.Directory)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched values keep their defaults
	assert.Equal(t, 500, cfg.Scan.PageSize)
}

func TestLoadFromFileMissingPathIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.LoadFromFile(""))
}

func TestLoadFromFileMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [not: valid"), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"category":  "Castles",
		"depth":     2,
		"output":    "castles",
		"log-level": "error",
	})

	assert.Equal(t, "Castles", cfg.Scan.Category)
	assert.Equal(t, 2, cfg.Scan.MaxDepth)
	assert.Equal(t, "castles", cfg.Output.Directory)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty category", func(c *Config) { c.Scan.Category = "" }},
		{"negative depth", func(c *Config) { c.Scan.MaxDepth = -1 }},
		{"zero page size", func(c *Config) { c.Scan.PageSize = 0 }},
		{"oversized page", func(c *Config) { c.Scan.PageSize = 501 }},
		{"empty output dir", func(c *Config) { c.Output.Directory = "" }},
		{"empty user agent", func(c *Config) { c.Commons.UserAgent = "" }},
		{"zero api rate", func(c *Config) { c.RateLimit.APIRequestsPerSecond = 0 }},
		{"zero attempts", func(c *Config) { c.Download.MaxAttempts = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFlagPrecedenceOverEnv(t *testing.T) {
	t.Setenv("WCMIRROR_CATEGORY", "FromEnv")

	cfg, err := Load("", map[string]interface{}{"category": "FromFlag"})
	require.NoError(t, err)
	assert.Equal(t, "FromFlag", cfg.Scan.Category)
}
