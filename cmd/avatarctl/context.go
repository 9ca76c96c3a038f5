package main

import (
	"context"
	"fmt"
	"os"

	"github.com/maauso/avatarkit/internal/avatar"
	"github.com/maauso/avatarkit/internal/bootstrap"
	"github.com/maauso/avatarkit/internal/config"
)

// avatarService is the part of avatar.Service the commands use.
type avatarService interface {
	CropToSquare(ctx context.Context, source string) (avatar.Result, error)
	AddDecoration(ctx context.Context, avatarSource, decorationSource string) (avatar.Result, error)
	Publish(ctx context.Context, res avatar.Result) (string, error)
}

// commandContext builds the service lazily so --help never needs ffmpeg
// or a writable work directory.
type commandContext struct {
	newService func(ctx context.Context) (avatarService, error)
	service    avatarService
}

func newCommandContext() *commandContext {
	return &commandContext{newService: defaultService}
}

func (c *commandContext) ensureService(ctx context.Context) (avatarService, error) {
	if c.service != nil {
		return c.service, nil
	}
	svc, err := c.newService(ctx)
	if err != nil {
		return nil, err
	}
	c.service = svc
	return svc, nil
}

func defaultService(ctx context.Context) (avatarService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Stdout carries results.
	logger := cfg.NewLoggerTo(os.Stderr)

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize dependencies: %w", err)
	}
	return deps.AvatarService, nil
}
