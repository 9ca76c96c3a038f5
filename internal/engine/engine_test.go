package engine

import (
	"context"
	"os"
	"sync"
)

// memEngine is an in-memory Engine for tests.
type memEngine struct {
	mu      sync.Mutex
	files   map[string][]byte
	execs   [][]string
	removed []string
	execFn  func(ctx context.Context, args []string, files map[string][]byte) error
}

func newMemEngine() *memEngine {
	return &memEngine{files: make(map[string][]byte)}
}

func (m *memEngine) WriteFile(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func (m *memEngine) Exec(ctx context.Context, args []string) error {
	m.mu.Lock()
	m.execs = append(m.execs, args)
	fn := m.execFn
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, args, m.files)
}

func (m *memEngine) ReadFile(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *memEngine) RemoveFiles(_ context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		delete(m.files, n)
		m.removed = append(m.removed, n)
	}
	return nil
}

func (m *memEngine) fileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
