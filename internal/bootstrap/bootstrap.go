// Package bootstrap provides dependency initialization for avatarkit binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/avatarkit/internal/avatar"
	"github.com/maauso/avatarkit/internal/config"
	"github.com/maauso/avatarkit/internal/engine"
	"github.com/maauso/avatarkit/internal/fetch"
	"github.com/maauso/avatarkit/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server and CLI.
type Dependencies struct {
	AvatarService *avatar.Service
	// Workspace is the engine's work directory, exposed for health checks.
	Workspace *storage.Workspace
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize the engine workspace
	ws, err := storage.NewWorkspace(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	logger.Info("engine workspace configured",
		slog.String("work_dir", ws.Dir()),
	)

	publisher, err := initPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// One engine, one queue: every operation shares the workspace.
	ffmpeg := engine.NewFFmpegEngine(ws,
		engine.WithBinary(cfg.FFmpegPath),
		engine.WithExecTimeout(cfg.ExecTimeout),
		engine.WithLogger(logger),
	)
	queue := engine.NewQueue(ffmpeg, logger)

	fetcher := fetch.NewFetcher(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxBytes(cfg.MaxSourceBytes),
	)

	svc := avatar.NewService(fetcher, queue, logger, avatar.WithPublisher(publisher))

	return &Dependencies{
		AvatarService: svc,
		Workspace:     ws,
	}, nil
}

// initPublisher creates the S3 publisher when configured, or a disabled one.
func initPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Publisher, error) {
	if !cfg.S3Enabled() {
		logger.Info("publishing disabled, S3 not configured")
		return storage.DisabledPublisher{}, nil
	}

	pub, err := storage.NewS3Publisher(ctx, storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 publisher: %w", err)
	}
	logger.Info("S3 publishing configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
	)
	return pub, nil
}
