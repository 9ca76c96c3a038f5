// Package avatar prepares avatar imagery for display: square previews
// and decorated, palette-optimized animated avatars rendered by the media
// engine.
package avatar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/maauso/avatarkit/internal/dataurl"
	"github.com/maauso/avatarkit/internal/engine"
	"github.com/maauso/avatarkit/internal/filtergraph"
	"github.com/maauso/avatarkit/internal/media"
	"github.com/maauso/avatarkit/internal/metrics"
	"github.com/maauso/avatarkit/internal/storage"
)

// Errors returned by avatar operations. Every failure ends the operation;
// nothing is retried.
var (
	// ErrUnrecognizedFormat is returned when a required input is not a supported image.
	// No engine interaction happens before this check.
	ErrUnrecognizedFormat = errors.New("avatar: unrecognized image format")
	// ErrFetch is returned when a source cannot be resolved to bytes.
	ErrFetch = errors.New("avatar: cannot load source")
	// ErrEngineExecution is returned when the media engine refuses or fails to run the command.
	ErrEngineExecution = errors.New("avatar: media engine execution failed")
	// ErrIO is returned when the engine filesystem cannot be written or read.
	ErrIO = errors.New("avatar: engine filesystem failure")
	// ErrOutputUnavailable is returned when the engine ran but its output file cannot be read.
	ErrOutputUnavailable = fmt.Errorf("%w: output not produced", ErrIO)
	// ErrEncoding is returned when the output cannot be turned into a data URI.
	ErrEncoding = errors.New("avatar: cannot encode result")
	// ErrPublish is returned when a result cannot be published.
	ErrPublish = errors.New("avatar: cannot publish result")
)

const (
	opCrop     = "crop"
	opDecorate = "decorate"

	// decorationExt is used for decorations regardless of their sniffed type.
	// The engine picks the animated demuxer from the extension.
	decorationExt = ".gif"
	outputMIME    = "image/gif"
)

// Fetcher resolves a source string to a sniffed asset.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (media.Asset, error)
}

// Result is the outcome of a successful operation.
type Result struct {
	// DataURI is "data:<mime>;base64,<payload>".
	DataURI string
	// MIMEType is the type of the produced image.
	MIMEType string
	// Bytes is the raw produced image.
	Bytes []byte
}

// Service runs avatar operations against a shared engine queue.
type Service struct {
	fetcher   Fetcher
	queue     *engine.Queue
	publisher storage.Publisher
	logger    *slog.Logger
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithPublisher sets the publisher used by Publish.
func WithPublisher(p storage.Publisher) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewService creates a Service. Publishing is disabled unless WithPublisher is given.
func NewService(fetcher Fetcher, queue *engine.Queue, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		fetcher:   fetcher,
		queue:     queue,
		publisher: storage.DisabledPublisher{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CropToSquare crops the image at source to a centered
// filtergraph.SquareSize square. The output keeps the input format.
func (s *Service) CropToSquare(ctx context.Context, source string) (Result, error) {
	start := time.Now()
	res, err := s.cropToSquare(ctx, source)
	s.observe(opCrop, start, err)
	return res, err
}

func (s *Service) cropToSquare(ctx context.Context, source string) (Result, error) {
	img, err := s.load(ctx, "image", source)
	if err != nil {
		return Result{}, err
	}

	var out []byte
	err = s.queue.Run(ctx, func(ctx context.Context, sess *engine.Session) error {
		cmd := engine.Command{
			Inputs: []string{sess.Name("input-image", img.Ext)},
			Graph:  filtergraph.CropToSquare(filtergraph.SquareSize),
			Output: sess.Name("output-square", img.Ext),
		}
		if err := s.write(ctx, sess, cmd.Inputs[0], img.Bytes); err != nil {
			return err
		}

		var err error
		out, err = s.run(ctx, sess, cmd)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	return encode(out, img.MIMEType)
}

// AddDecoration masks the avatar at avatarSource to a circle, centers it
// on a transparent filtergraph.CanvasSize canvas, overlays the animated
// decoration and encodes the result as a palette-optimized GIF.
func (s *Service) AddDecoration(ctx context.Context, avatarSource, decorationSource string) (Result, error) {
	start := time.Now()
	res, err := s.addDecoration(ctx, avatarSource, decorationSource)
	s.observe(opDecorate, start, err)
	return res, err
}

func (s *Service) addDecoration(ctx context.Context, avatarSource, decorationSource string) (Result, error) {
	base, err := s.load(ctx, "avatar", avatarSource)
	if err != nil {
		return Result{}, err
	}
	deco, err := s.load(ctx, "decoration", decorationSource)
	if err != nil {
		return Result{}, err
	}
	if deco.Ext != decorationExt {
		s.logger.Debug("decoration is not a gif, writing with gif extension",
			slog.String("mime", deco.MIMEType),
		)
	}

	var out []byte
	err = s.queue.Run(ctx, func(ctx context.Context, sess *engine.Session) error {
		cmd := engine.Command{
			Inputs: []string{
				sess.Name("input-base", base.Ext),
				sess.Name("input-decoration", decorationExt),
			},
			Graph:  filtergraph.Decoration(filtergraph.CanvasSize),
			Output: sess.Name("output-decorated", decorationExt),
		}
		if err := s.write(ctx, sess, cmd.Inputs[0], base.Bytes); err != nil {
			return err
		}
		if err := s.write(ctx, sess, cmd.Inputs[1], deco.Bytes); err != nil {
			return err
		}

		var err error
		out, err = s.run(ctx, sess, cmd)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	return encode(out, outputMIME)
}

// Publish uploads res under a content-addressed key and returns its URL.
func (s *Service) Publish(ctx context.Context, res Result) (string, error) {
	ext := ".bin"
	if mt := mimetype.Lookup(res.MIMEType); mt != nil {
		ext = mt.Extension()
	}
	sum := sha256.Sum256(res.Bytes)
	key := "avatars/" + hex.EncodeToString(sum[:]) + ext

	url, err := s.publisher.Publish(ctx, key, res.MIMEType, bytes.NewReader(res.Bytes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}

	s.logger.Info("avatar published",
		slog.String("key", key),
		slog.String("url", url),
	)
	return url, nil
}

// load fetches and sniffs a required input.
func (s *Service) load(ctx context.Context, role, source string) (media.Asset, error) {
	asset, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		return media.Asset{}, fmt.Errorf("%w: %s: %w", ErrFetch, role, err)
	}
	if !asset.Recognized() {
		return media.Asset{}, fmt.Errorf("%w: %s", ErrUnrecognizedFormat, role)
	}
	return asset, nil
}

func (s *Service) write(ctx context.Context, sess *engine.Session, name string, data []byte) error {
	if err := sess.Write(ctx, name, data); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// run executes cmd and reads its output file.
func (s *Service) run(ctx context.Context, sess *engine.Session, cmd engine.Command) ([]byte, error) {
	if err := sess.Exec(ctx, cmd); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineExecution, err)
	}

	out, err := sess.Read(ctx, cmd.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}

	s.logger.Debug("engine produced output",
		slog.String("session", sess.Token()),
		slog.String("output", cmd.Output),
		slog.Int("bytes", len(out)),
	)
	return out, nil
}

func encode(data []byte, mimeType string) (Result, error) {
	uri, err := dataurl.Encode(data, mimeType)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return Result{DataURI: uri, MIMEType: mimeType, Bytes: data}, nil
}

func (s *Service) observe(op string, start time.Time, err error) {
	outcome := Outcome(err)
	metrics.OperationsTotal.WithLabelValues(op, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Warn("avatar operation failed",
			slog.String("op", op),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Info("avatar operation completed",
		slog.String("op", op),
		slog.Duration("duration", time.Since(start)),
	)
}

// Outcome classifies err into a short label for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnrecognizedFormat):
		return "unrecognized_format"
	case errors.Is(err, ErrFetch):
		return "fetch_failed"
	case errors.Is(err, ErrEngineExecution):
		return "engine_failed"
	case errors.Is(err, ErrOutputUnavailable):
		return "output_unavailable"
	case errors.Is(err, ErrIO):
		return "io_failed"
	case errors.Is(err, ErrEncoding):
		return "encoding_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
