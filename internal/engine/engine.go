// Package engine drives the external media engine: a single ffmpeg
// instance working on a private directory of named files. It assembles
// argument vectors from filter graphs, scopes file names per operation
// and admits one operation at a time.
package engine

import (
	"context"
	"errors"
)

// Static errors for engine operations.
var (
	// ErrInputMismatch is returned when a command declares a different number of inputs than its graph reads.
	ErrInputMismatch = errors.New("engine: input count does not match graph")
	// ErrNoOutput is returned when a command has no output file.
	ErrNoOutput = errors.New("engine: output file is required")
)

// Engine is the command-and-filesystem interface of the media engine.
// Implementations process one Exec at a time; callers serialize through Queue.
type Engine interface {
	// WriteFile stores data under name in the engine's filesystem.
	WriteFile(ctx context.Context, name string, data []byte) error

	// Exec runs the engine with args. Failures are reported as *ExecError.
	Exec(ctx context.Context, args []string) error

	// ReadFile returns the content of name from the engine's filesystem.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// RemoveFiles deletes names from the engine's filesystem, ignoring missing ones.
	RemoveFiles(ctx context.Context, names []string) error
}
