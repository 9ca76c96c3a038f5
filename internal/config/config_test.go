package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every setting for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "RATE_LIMIT_PER_MINUTE", "REQUEST_TIMEOUT",
		"FFMPEG_PATH", "WORK_DIR", "EXEC_TIMEOUT",
		"FETCH_TIMEOUT", "MAX_SOURCE_BYTES",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"LOG_FORMAT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, 3*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "/tmp/avatarkit", cfg.WorkDir)
	assert.Equal(t, 2*time.Minute, cfg.ExecTimeout)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(16<<20), cfg.MaxSourceBytes)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.S3Enabled())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("REQUEST_TIMEOUT", "90s")
	t.Setenv("FFMPEG_PATH", "/usr/local/bin/ffmpeg")
	t.Setenv("WORK_DIR", "/custom/work")
	t.Setenv("EXEC_TIMEOUT", "45s")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("MAX_SOURCE_BYTES", "1048576")
	t.Setenv("S3_BUCKET", "my-bucket")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("AWS_ACCESS_KEY_ID", "access-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret-key")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/usr/local/bin/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "/custom/work", cfg.WorkDir)
	assert.Equal(t, 45*time.Second, cfg.ExecTimeout)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxSourceBytes)
	assert.Equal(t, "my-bucket", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
	assert.Equal(t, "access-key", cfg.AWSAccessKeyID)
	assert.Equal(t, "secret-key", cfg.AWSSecretAccessKey)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.S3Enabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("unparseable integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "not-a-number")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unparseable duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EXEC_TIMEOUT", "soon")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("out of range value fails validation", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MAX_SOURCE_BYTES", "-1")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidMaxSourceBytes)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:               8080,
			RateLimitPerMinute: 60,
			RequestTimeout:     time.Minute,
			ExecTimeout:        time.Minute,
			FetchTimeout:       time.Second,
			MaxSourceBytes:     1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid config", func(*Config) {}, nil},
		{"zero port", func(c *Config) { c.Port = 0 }, ErrInvalidPort},
		{"port too high", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, ErrInvalidRequestTimeout},
		{"zero exec timeout", func(c *Config) { c.ExecTimeout = 0 }, ErrInvalidExecTimeout},
		{"negative fetch timeout", func(c *Config) { c.FetchTimeout = -time.Second }, ErrInvalidFetchTimeout},
		{"zero max source bytes", func(c *Config) { c.MaxSourceBytes = 0 }, ErrInvalidMaxSourceBytes},
		{"negative rate limit", func(c *Config) { c.RateLimitPerMinute = -1 }, ErrInvalidRateLimit},
		{"rate limit disabled", func(c *Config) { c.RateLimitPerMinute = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_S3Enabled(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		expected bool
	}{
		{"both set", "bucket", "region", true},
		{"only bucket", "bucket", "", false},
		{"only region", "", "region", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				S3Bucket: tt.bucket,
				S3Region: tt.region,
			}
			assert.Equal(t, tt.expected, cfg.S3Enabled())
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		Port:               8080,
		WorkDir:            "/tmp/test",
		FFmpegPath:         "/opt/ffmpeg",
		S3Bucket:           "bucket",
		AWSAccessKeyID:     "access-id",
		AWSSecretAccessKey: "secret-key",
		LogFormat:          "json",
		LogLevel:           "info",
	}

	str := cfg.String()

	// Should contain non-sensitive values
	assert.Contains(t, str, "8080")
	assert.Contains(t, str, "/tmp/test")
	assert.Contains(t, str, "/opt/ffmpeg")
	assert.Contains(t, str, "bucket")

	// Should NOT contain sensitive values
	assert.NotContains(t, str, "secret-key")
	assert.NotContains(t, str, "access-id")
}

func TestConfig_NewLogger(t *testing.T) {
	for _, format := range []string{"json", "text", ""} {
		t.Run(format, func(t *testing.T) {
			cfg := &Config{LogFormat: format, LogLevel: "warn"}

			logger := cfg.NewLogger()
			require.NotNil(t, logger)
			assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
			assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
		})
	}
}

func TestConfig_NewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogFormat: "json", LogLevel: "info"}

	cfg.NewLoggerTo(&buf).Info("test message", slog.String("op", "crop"))

	assert.Contains(t, buf.String(), `"msg":"test message"`)
	assert.Contains(t, buf.String(), `"op":"crop"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo}, // defaults to info
		{"", slog.LevelInfo},        // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}
