package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	"csvdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Session SessionConfig
	Charts  ChartConfig
	Log     LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// UploadConfig bounds what the dashboard accepts
type UploadConfig struct {
	MaxBytes    int64
	PreviewRows int
}

// SessionConfig holds cookie and in-memory session settings
type SessionConfig struct {
	Secret          string
	CookieName      string
	IdleTTL         time.Duration
	JanitorInterval time.Duration
	// GeneratedSecret is true when no SESSION_SECRET was provided
	GeneratedSecret bool
}

// ChartConfig holds the fixed chart geometry
type ChartConfig struct {
	Width  int
	Height int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

const minSecretLength = 32

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Upload:  *loadUploadConfig(),
		Charts:  *loadChartConfig(),
		Log:     LogConfig{Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO"))},
		Session: *loadSessionConfig(),
	}

	if config.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate session secret")
		}
		config.Session.Secret = secret
		config.Session.GeneratedSecret = true
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when nothing is set, for tests and the CLI
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080", GinMode: "release", ShutdownTimeout: 10 * time.Second},
		Upload:  UploadConfig{MaxBytes: 50 * 1024 * 1024, PreviewRows: 5},
		Session: SessionConfig{CookieName: "csvdash_session", IdleTTL: 2 * time.Hour, JanitorInterval: 5 * time.Minute},
		Charts:  ChartConfig{Width: 640, Height: 360},
		Log:     LogConfig{Level: "INFO"},
	}
}

// LoadCLI reads the settings the command-line tool uses from the environment.
// Server and session settings keep their defaults and the log level defaults
// to WARN.
func LoadCLI() (*Config, error) {
	config := Default()
	config.Upload = *loadUploadConfig()
	config.Charts = *loadChartConfig()
	config.Log = LogConfig{Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "WARN"))}

	if err := validateAnalysisConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes:    getEnvInt64OrDefault("UPLOAD_MAX_BYTES", 50*1024*1024), // 50MB, same limit as the upload form
		PreviewRows: getEnvIntOrDefault("PREVIEW_ROWS", 5),
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		Secret:          os.Getenv("SESSION_SECRET"),
		CookieName:      getEnvOrDefault("SESSION_COOKIE", "csvdash_session"),
		IdleTTL:         getEnvDurationOrDefault("SESSION_IDLE_TTL", 2*time.Hour),
		JanitorInterval: getEnvDurationOrDefault("SESSION_JANITOR_INTERVAL", 5*time.Minute),
	}
}

func loadChartConfig() *ChartConfig {
	return &ChartConfig{
		Width:  getEnvIntOrDefault("CHART_WIDTH", 640),
		Height: getEnvIntOrDefault("CHART_HEIGHT", 360),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if len(config.Session.Secret) < minSecretLength {
		return errors.ConfigInvalid("SESSION_SECRET must be at least 32 characters")
	}
	if config.Session.IdleTTL <= 0 {
		return errors.ConfigInvalid("SESSION_IDLE_TTL must be positive")
	}
	return validateAnalysisConfig(config)
}

// validateAnalysisConfig checks the settings shared by the server and the CLI
func validateAnalysisConfig(config *Config) error {
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("UPLOAD_MAX_BYTES must be positive")
	}
	if config.Upload.PreviewRows < 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS cannot be negative")
	}
	if config.Charts.Width < 200 || config.Charts.Height < 150 {
		return errors.ConfigInvalid("CHART_WIDTH/CHART_HEIGHT too small to draw a chart")
	}
	switch config.Log.Level {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, minSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
