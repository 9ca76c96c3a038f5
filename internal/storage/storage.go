// Package storage provides the local workspace backing the media engine's
// private filesystem and the optional publisher for finished avatars.
package storage

import (
	"context"
	"errors"
	"io"
)

// Static errors for storage operations.
var (
	// ErrInvalidName is returned when a file name would escape the workspace.
	ErrInvalidName = errors.New("storage: invalid file name")
	// ErrPublishingDisabled is returned when publishing is requested but no bucket is configured.
	ErrPublishingDisabled = errors.New("storage: publishing is not configured")
)

// Publisher uploads finished artifacts and returns their public URL.
type Publisher interface {
	// Publish stores data under key with the given content type.
	Publish(ctx context.Context, key, contentType string, data io.Reader) (url string, err error)
}

// Compile-time check that DisabledPublisher implements Publisher.
var _ Publisher = DisabledPublisher{}

// DisabledPublisher rejects every upload with ErrPublishingDisabled.
type DisabledPublisher struct{}

// Publish always returns ErrPublishingDisabled.
func (DisabledPublisher) Publish(_ context.Context, _, _ string, _ io.Reader) (string, error) {
	return "", ErrPublishingDisabled
}
