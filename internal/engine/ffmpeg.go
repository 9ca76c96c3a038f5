package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/maauso/avatarkit/internal/metrics"
	"github.com/maauso/avatarkit/internal/storage"
)

// Compile-time check that FFmpegEngine implements Engine.
var _ Engine = (*FFmpegEngine)(nil)

// FFmpegEngine implements Engine using the ffmpeg CLI. Every invocation
// runs with the workspace as its working directory, so commands address
// files by bare name.
type FFmpegEngine struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath  string
	workspace   *storage.Workspace
	execTimeout time.Duration
	logger      *slog.Logger
}

// FFmpegOption configures an FFmpegEngine.
type FFmpegOption func(*FFmpegEngine)

// WithBinary sets the ffmpeg binary path. Empty keeps the default.
func WithBinary(path string) FFmpegOption {
	return func(e *FFmpegEngine) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithExecTimeout bounds a single engine invocation.
func WithExecTimeout(d time.Duration) FFmpegOption {
	return func(e *FFmpegEngine) {
		if d > 0 {
			e.execTimeout = d
		}
	}
}

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger *slog.Logger) FFmpegOption {
	return func(e *FFmpegEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewFFmpegEngine creates an engine operating on ws.
func NewFFmpegEngine(ws *storage.Workspace, opts ...FFmpegOption) *FFmpegEngine {
	e := &FFmpegEngine{
		ffmpegPath:  "ffmpeg",
		workspace:   ws,
		execTimeout: 2 * time.Minute,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteFile stores data in the workspace.
func (e *FFmpegEngine) WriteFile(ctx context.Context, name string, data []byte) error {
	return e.workspace.Write(ctx, name, data)
}

// ReadFile reads a file from the workspace.
func (e *FFmpegEngine) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return e.workspace.Read(ctx, name)
}

// RemoveFiles deletes files from the workspace.
func (e *FFmpegEngine) RemoveFiles(ctx context.Context, names []string) error {
	return e.workspace.Remove(ctx, names)
}

// Exec executes ffmpeg with the given arguments and returns an *ExecError
// containing stderr output if the command fails.
func (e *FFmpegEngine) Exec(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	// #nosec G204 - ffmpegPath is set by the application, argv never passes through a shell
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	cmd.Dir = e.workspace.Dir()

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	metrics.EngineExecDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EngineExecErrors.Inc()
		// Check if context was cancelled
		if ctx.Err() != nil {
			err = fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		e.logger.Debug("ffmpeg failed",
			slog.String("error", err.Error()),
			slog.String("stderr", stderr.String()),
		)
		return &ExecError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// ExecError represents an error from running the engine, including its diagnostic output.
type ExecError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
