// Package main provides the entry point for the avatarkit HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maauso/avatarkit/internal/bootstrap"
	"github.com/maauso/avatarkit/internal/config"
	"github.com/maauso/avatarkit/internal/server"
)

const shutdownGrace = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	// Base64 inflates sources by 4/3 and a decorate request carries two.
	handlers := server.NewHandlers(deps.AvatarService, logger,
		server.WithMaxBodyBytes(cfg.MaxSourceBytes*3),
		server.WithHealthCheck(deps.Workspace.Check),
	)
	routerCfg := server.DefaultConfig()
	routerCfg.RateLimitPerMinute = cfg.RateLimitPerMinute
	routerCfg.RequestTimeout = cfg.RequestTimeout

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     server.NewRouter(handlers, logger, routerCfg),
		ReadTimeout: 30 * time.Second,
		// Leave room for the error response after a request times out.
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("avatarkit listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	// In-flight requests get shutdownGrace to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
