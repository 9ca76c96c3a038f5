package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is a directory holding named files for one engine instance.
// Names are flat: separators and dot-prefixed names are rejected.
type Workspace struct {
	dir string
}

// NewWorkspace creates a Workspace rooted at dir.
// If dir is empty, a directory under os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewWorkspace(dir string) (*Workspace, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "avatarkit")
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}

	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Check verifies the workspace directory still accepts new files.
func (w *Workspace) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	f, err := os.CreateTemp(w.dir, "healthcheck-*")
	if err != nil {
		return fmt.Errorf("workspace not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove %s: %w", filepath.Base(name), err)
	}
	return nil
}

// Path returns the absolute location of name inside the workspace.
func (w *Workspace) Path(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(w.dir, name), nil
}

// Write stores data under name, replacing any previous content.
func (w *Workspace) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	path, err := w.Path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Read returns the content stored under name.
func (w *Workspace) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	path, err := w.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - name is validated to stay inside the workspace
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Remove deletes the named files.
// It continues even if some files fail to delete,
// returning the first error encountered. Missing files are ignored.
func (w *Workspace) Remove(ctx context.Context, names []string) error {
	var firstErr error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}

		path, err := w.Path(name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", name, err)
			}
		}
	}
	return firstErr
}
