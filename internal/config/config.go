// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	APIKey              string
	BaseURL             string
	DatabasePath        string
	LogPath             string
	ProbeURL            string
	RefreshSchedule     string
	ProbeTimeout        time.Duration
	HTTPTimeout         time.Duration
	InitialRefreshDelay time.Duration
	Offline             bool
	SkipCheck           bool
	Foreground          bool
	Debug               bool
	Notify              bool
}

// Default values
const (
	defaultBaseURL             = "https://api.vapi.ai"
	defaultProbeURL            = "https://1.1.1.1"
	defaultRefreshSchedule     = "@every 5m"
	defaultProbeTimeout        = time.Second
	defaultHTTPTimeout         = 30 * time.Second
	defaultInitialRefreshDelay = 3 * time.Second
)

// Load reads configuration from .env files and environment variables.
//
// A missing VAPI_API_KEY is not an error here: the key is only required when
// a fetch is actually attempted, and the browser is fully usable offline.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIKey:              getEnvString("VAPI_API_KEY", ""),
		BaseURL:             getEnvString("VAPI_BASE_URL", defaultBaseURL),
		DatabasePath:        getEnvString("VCB_DB_PATH", getDefaultDatabasePath()),
		LogPath:             getEnvString("VCB_LOG_PATH", getDefaultLogPath()),
		ProbeURL:            getEnvString("VCB_PROBE_URL", defaultProbeURL),
		RefreshSchedule:     getEnvString("VCB_REFRESH_SCHEDULE", defaultRefreshSchedule),
		ProbeTimeout:        getEnvDuration("VCB_PROBE_TIMEOUT", defaultProbeTimeout),
		HTTPTimeout:         getEnvDuration("VCB_HTTP_TIMEOUT", defaultHTTPTimeout),
		InitialRefreshDelay: getEnvDuration("VCB_INITIAL_REFRESH_DELAY", defaultInitialRefreshDelay),
		Offline:             getEnvBool("VCB_OFFLINE", false),
		SkipCheck:           getEnvBool("VCB_SKIP_CHECK", false),
		Foreground:          getEnvBool("VCB_FOREGROUND", false),
		Debug:               getEnvBool("VCB_DEBUG", false),
		Notify:              getEnvBool("VCB_NOTIFY", true),
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory location
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "vcb", ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite cache file.
// The temp dir keeps the cache disposable: deleting it just forces a refetch.
func getDefaultDatabasePath() string {
	return filepath.Join(os.TempDir(), "vapi_calls.db")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	return filepath.Join(os.TempDir(), "vcb.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts the forms strconv.ParseBool accepts ("1", "t", "true", ...).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
