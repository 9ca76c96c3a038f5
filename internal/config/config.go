// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidPort is returned when PORT is outside 1-65535.
	ErrInvalidPort = errors.New("config: PORT must be between 1 and 65535")
	// ErrInvalidRequestTimeout is returned when REQUEST_TIMEOUT is not positive.
	ErrInvalidRequestTimeout = errors.New("config: REQUEST_TIMEOUT must be positive")
	// ErrInvalidExecTimeout is returned when EXEC_TIMEOUT is not positive.
	ErrInvalidExecTimeout = errors.New("config: EXEC_TIMEOUT must be positive")
	// ErrInvalidFetchTimeout is returned when FETCH_TIMEOUT is not positive.
	ErrInvalidFetchTimeout = errors.New("config: FETCH_TIMEOUT must be positive")
	// ErrInvalidMaxSourceBytes is returned when MAX_SOURCE_BYTES is not positive.
	ErrInvalidMaxSourceBytes = errors.New("config: MAX_SOURCE_BYTES must be positive")
	// ErrInvalidRateLimit is returned when RATE_LIMIT_PER_MINUTE is negative.
	ErrInvalidRateLimit = errors.New("config: RATE_LIMIT_PER_MINUTE must not be negative")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port               int           `env:"PORT, default=8080" json:"port"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE, default=60" json:"rate_limit_per_minute"` // 0 disables
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT, default=3m" json:"request_timeout"`

	// Engine settings
	FFmpegPath  string        `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	WorkDir     string        `env:"WORK_DIR, default=/tmp/avatarkit" json:"work_dir"`
	ExecTimeout time.Duration `env:"EXEC_TIMEOUT, default=2m" json:"exec_timeout"`

	// Source settings
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT, default=30s" json:"fetch_timeout"`
	MaxSourceBytes int64         `env:"MAX_SOURCE_BYTES, default=16777216" json:"max_source_bytes"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are in range.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}
	if c.ExecTimeout <= 0 {
		return ErrInvalidExecTimeout
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.MaxSourceBytes <= 0 {
		return ErrInvalidMaxSourceBytes
	}
	if c.RateLimitPerMinute < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo is NewLogger writing to w.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, RateLimitPerMinute: %d, RequestTimeout: %s, FFmpegPath: %s, WorkDir: %s, ExecTimeout: %s, FetchTimeout: %s, MaxSourceBytes: %d, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.RateLimitPerMinute,
		c.RequestTimeout,
		c.FFmpegPath,
		c.WorkDir,
		c.ExecTimeout,
		c.FetchTimeout,
		c.MaxSourceBytes,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
