package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/avatarkit/internal/avatar"
	"github.com/maauso/avatarkit/internal/config"
	"github.com/maauso/avatarkit/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:           8080,
		FFmpegPath:     "ffmpeg",
		WorkDir:        filepath.Join(t.TempDir(), "work"),
		ExecTimeout:    time.Minute,
		FetchTimeout:   time.Second,
		MaxSourceBytes: 1 << 20,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewDependencies(t *testing.T) {
	cfg := testConfig(t)

	deps, err := NewDependencies(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, deps.AvatarService)
	assert.Equal(t, cfg.WorkDir, deps.Workspace.Dir())
	assert.NoError(t, deps.Workspace.Check(context.Background()))

	info, err := os.Stat(cfg.WorkDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewDependencies_PublishingDisabledWithoutS3(t *testing.T) {
	deps, err := NewDependencies(context.Background(), testConfig(t), testLogger())
	require.NoError(t, err)

	_, err = deps.AvatarService.Publish(context.Background(), avatar.Result{MIMEType: "image/gif", Bytes: []byte("GIF89a")})
	assert.ErrorIs(t, err, storage.ErrPublishingDisabled)
}

func TestNewDependencies_S3(t *testing.T) {
	cfg := testConfig(t)
	cfg.S3Bucket = "bucket"
	cfg.S3Region = "us-east-1"
	cfg.S3Endpoint = "http://localhost:9000"
	cfg.AWSAccessKeyID = "test"
	cfg.AWSSecretAccessKey = "test"

	deps, err := NewDependencies(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, deps.AvatarService)
}

func TestNewDependencies_UnusableWorkDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	cfg := testConfig(t)
	cfg.WorkDir = filepath.Join(file, "work")

	_, err := NewDependencies(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}
