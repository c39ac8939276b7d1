package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Commons category mirror
type Config struct {
	// Commons API endpoints and request identity
	Commons CommonsConfig `yaml:"commons" json:"commons"`

	// Category scan settings
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Outbound request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CommonsConfig holds MediaWiki API endpoints and the fixed header identity
// sent with every request
type CommonsConfig struct {
	APIURL      string        `yaml:"api_url" json:"api_url"`
	FilePathURL string        `yaml:"file_path_url" json:"file_path_url"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
	Referer     string        `yaml:"referer" json:"referer"`
	APITimeout  time.Duration `yaml:"api_timeout" json:"api_timeout"`
}

// ScanConfig holds category tree traversal settings
type ScanConfig struct {
	Category string `yaml:"category" json:"category"`
	MaxDepth int    `yaml:"max_depth" json:"max_depth"`
	PageSize int    `yaml:"page_size" json:"page_size"`
}

// RateLimitConfig holds outbound request pacing settings
type RateLimitConfig struct {
	APIRequestsPerSecond int `yaml:"api_requests_per_second" json:"api_requests_per_second"`
	DownloadsPerSecond   int `yaml:"downloads_per_second" json:"downloads_per_second"`
}

// DownloadConfig holds file download settings
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Commons: CommonsConfig{
			APIURL:      "https://commons.wikimedia.org/w/api.php",
			FilePathURL: "https://commons.wikimedia.org/wiki/Special:FilePath",
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
			Referer:     "https://commons.wikimedia.org/",
			APITimeout:  30 * time.Second,
		},
		Scan: ScanConfig{
			Category: "Commons featured desktop backgrounds",
			MaxDepth: 10,
			PageSize: 500,
		},
		RateLimit: RateLimitConfig{
			APIRequestsPerSecond: 5, // 0.2s between metadata calls
			DownloadsPerSecond:   1,
		},
		Download: DownloadConfig{
			Timeout:     60 * time.Second,
			MaxAttempts: 5,
		},
		Output: OutputConfig{
			Directory: "tiles",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if category := os.Getenv("WCMIRROR_CATEGORY"); category != "" {
		c.Scan.Category = category
	}
	if depth := os.Getenv("WCMIRROR_MAX_DEPTH"); depth != "" {
		if val, err := strconv.Atoi(depth); err == nil && val >= 0 {
			c.Scan.MaxDepth = val
		}
	}
	if outputDir := os.Getenv("WCMIRROR_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if userAgent := os.Getenv("WCMIRROR_USER_AGENT"); userAgent != "" {
		c.Commons.UserAgent = userAgent
	}
	if apiURL := os.Getenv("WCMIRROR_API_URL"); apiURL != "" {
		c.Commons.APIURL = apiURL
	}
	if logLevel := os.Getenv("WCMIRROR_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".wcmirror.yaml",
		".wcmirror.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "wcmirror", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "wcmirror", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".wcmirror.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Commons.APIURL == "" {
		errs = append(errs, errors.New("commons API URL is required"))
	}
	if c.Commons.FilePathURL == "" {
		errs = append(errs, errors.New("commons file path URL is required"))
	}
	if c.Commons.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Commons.APITimeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	if c.Scan.Category == "" {
		errs = append(errs, errors.New("root category is required"))
	}
	if c.Scan.MaxDepth < 0 {
		errs = append(errs, errors.New("max depth cannot be negative"))
	}
	if c.Scan.PageSize <= 0 || c.Scan.PageSize > 500 {
		errs = append(errs, errors.New("page size must be between 1 and 500"))
	}

	if c.RateLimit.APIRequestsPerSecond <= 0 {
		errs = append(errs, errors.New("API requests per second must be positive"))
	}
	if c.RateLimit.DownloadsPerSecond <= 0 {
		errs = append(errs, errors.New("downloads per second must be positive"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max download attempts must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if category, ok := flags["category"].(string); ok && category != "" {
		c.Scan.Category = category
	}
	if depth, ok := flags["depth"].(int); ok && depth >= 0 {
		c.Scan.MaxDepth = depth
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wcmirror.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
