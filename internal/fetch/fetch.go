// Package fetch resolves image sources (remote URLs, data URIs or bare
// base64) into sniffed media assets.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maauso/avatarkit/internal/dataurl"
	"github.com/maauso/avatarkit/internal/media"
)

// Static errors for source resolution.
var (
	// ErrEmptySource is returned when the source string is empty.
	ErrEmptySource = errors.New("fetch: source is empty")
	// ErrInvalidSource is returned when a source is neither a URL nor decodable base64.
	ErrInvalidSource = errors.New("fetch: source is not a URL or base64 image")
	// ErrRequestFailed is returned when a remote source answers with a non-2xx status code.
	ErrRequestFailed = errors.New("fetch: request failed")
	// ErrTooLarge is returned when a source exceeds the configured size limit.
	ErrTooLarge = errors.New("fetch: source exceeds size limit")
)

// DefaultMaxBytes bounds the size of a single fetched source.
const DefaultMaxBytes = 16 << 20

// Fetcher loads image bytes from a source string.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// Option is a function that configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client for remote sources.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithMaxBytes sets the maximum accepted source size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewFetcher creates a Fetcher with a 30s HTTP timeout and DefaultMaxBytes limit.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxBytes:   DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves source and sniffs its content. A declared type in a data
// URI or a URL extension is ignored: only the bytes decide the format.
// The returned asset may be unrecognized; callers check Asset.Recognized.
func (f *Fetcher) Fetch(ctx context.Context, source string) (media.Asset, error) {
	source = strings.TrimSpace(source)

	var (
		data []byte
		err  error
	)
	switch {
	case source == "":
		return media.Asset{}, ErrEmptySource
	case isRemote(source):
		data, err = f.download(ctx, source)
	case dataurl.IsDataURI(source):
		data, _, err = dataurl.Decode(source)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrInvalidSource, err)
		}
	default:
		data, err = decodeBase64(source)
	}
	if err != nil {
		return media.Asset{}, err
	}

	if int64(len(data)) > f.maxBytes {
		return media.Asset{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	return media.NewAsset(data), nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read %s: %w", url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, url)
	}
	return data, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func decodeBase64(s string) ([]byte, error) {
	data, err := dataurl.DecodeBase64(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	return data, nil
}
