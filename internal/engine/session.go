package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Session scopes engine file names to one operation. Every name it hands
// out carries the session token, and Close removes everything the session
// wrote or asked the engine to produce.
type Session struct {
	engine  Engine
	token   string
	touched []string
}

// NewSession starts a session on e with a fresh token.
func NewSession(e Engine) *Session {
	return &Session{
		engine: e,
		token:  uuid.NewString(),
	}
}

// Token returns the per-operation token embedded in file names.
func (s *Session) Token() string {
	return s.token
}

// Name returns the scoped file name for role, e.g. "input-base-<token>.png".
// ext includes the leading dot.
func (s *Session) Name(role, ext string) string {
	return role + "-" + s.token + ext
}

// Write stores data under name.
func (s *Session) Write(ctx context.Context, name string, data []byte) error {
	s.touch(name)
	if err := s.engine.WriteFile(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Exec assembles and runs cmd.
func (s *Session) Exec(ctx context.Context, cmd Command) error {
	args, err := cmd.Args()
	if err != nil {
		return err
	}
	s.touch(cmd.Output)
	return s.engine.Exec(ctx, args)
}

// Read returns the content of name.
func (s *Session) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.engine.ReadFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Close removes every file the session touched.
func (s *Session) Close(ctx context.Context) error {
	if len(s.touched) == 0 {
		return nil
	}
	names := s.touched
	s.touched = nil
	return s.engine.RemoveFiles(ctx, names)
}

func (s *Session) touch(name string) {
	for _, n := range s.touched {
		if n == name {
			return
		}
	}
	s.touched = append(s.touched, name)
}
