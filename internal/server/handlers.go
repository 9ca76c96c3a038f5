package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/avatarkit/internal/avatar"
	"github.com/maauso/avatarkit/internal/dataurl"
	"github.com/maauso/avatarkit/internal/storage"
)

// DefaultMaxBodyBytes bounds request bodies. Inline sources are base64 and
// a decorate request carries two of them.
const DefaultMaxBodyBytes = 64 << 20

// AvatarService is the avatar processing used by the handlers.
type AvatarService interface {
	CropToSquare(ctx context.Context, source string) (avatar.Result, error)
	AddDecoration(ctx context.Context, avatarSource, decorationSource string) (avatar.Result, error)
	Publish(ctx context.Context, res avatar.Result) (string, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service      AvatarService
	validator    *validator.Validate
	logger       *slog.Logger
	maxBodyBytes int64
	healthCheck  func(ctx context.Context) error
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithMaxBodyBytes sets the maximum accepted request body size.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handlers) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithHealthCheck makes GET /health report 503 while check fails.
func WithHealthCheck(check func(ctx context.Context) error) HandlerOption {
	return func(h *Handlers) {
		h.healthCheck = check
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service AvatarService, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:      service,
		validator:    newValidator(),
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("imagesource", isInlineSource); err != nil {
		panic(err)
	}
	return v
}

// isInlineSource accepts a base64 data URI or bare base64, decoded the same
// way the fetcher decodes them.
func isInlineSource(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if dataurl.IsDataURI(s) {
		_, _, err := dataurl.Decode(s)
		return err == nil
	}
	_, err := dataurl.DecodeBase64(s)
	return err == nil
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.healthCheck != nil {
		if err := h.healthCheck(r.Context()); err != nil {
			h.logger.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Crop handles POST /v1/avatars/crop requests.
func (h *Handlers) Crop(w http.ResponseWriter, r *http.Request) {
	var req CropRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.CropToSquare(r.Context(), req.Source)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.respond(w, r, res, req.Publish)
}

// Decorate handles POST /v1/avatars/decorate requests.
func (h *Handlers) Decorate(w http.ResponseWriter, r *http.Request) {
	var req DecorateRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.AddDecoration(r.Context(), req.Avatar, req.Decoration)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.respond(w, r, res, req.Publish)
}

// decode reads and validates a JSON body. It writes the error response
// and returns false when the body is unusable.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "BODY_TOO_LARGE")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, res avatar.Result, publish bool) {
	resp := AvatarResponse{
		DataURI:  res.DataURI,
		MIMEType: res.MIMEType,
	}
	if publish {
		url, err := h.service.Publish(r.Context(), res)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		resp.URL = url
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeServiceError maps avatar errors to HTTP responses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"

	switch {
	case errors.Is(err, avatar.ErrUnrecognizedFormat):
		status, code, message = http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "source is not a supported image"
	case errors.Is(err, avatar.ErrFetch):
		status, code, message = http.StatusUnprocessableEntity, "SOURCE_UNAVAILABLE", "source could not be loaded"
	case errors.Is(err, avatar.ErrEngineExecution):
		status, code, message = http.StatusBadGateway, "ENGINE_FAILED", "media engine failed"
	case errors.Is(err, avatar.ErrIO):
		status, code, message = http.StatusBadGateway, "OUTPUT_UNAVAILABLE", "media engine produced no output"
	case errors.Is(err, avatar.ErrEncoding):
		status, code, message = http.StatusInternalServerError, "ENCODING_FAILED", "result could not be encoded"
	case errors.Is(err, storage.ErrPublishingDisabled):
		status, code, message = http.StatusBadRequest, "PUBLISHING_DISABLED", "publishing is not configured"
	case errors.Is(err, avatar.ErrPublish):
		status, code, message = http.StatusBadGateway, "PUBLISH_FAILED", "result could not be published"
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, "TIMEOUT", "processing timed out"
	case errors.Is(err, context.Canceled):
		status, code, message = http.StatusRequestTimeout, "REQUEST_CANCELLED", "request cancelled"
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(context.Background(), level, "avatar request failed",
		slog.Int("status", status),
		slog.String("code", code),
		slog.String("error", err.Error()),
	)
	writeError(w, status, message, code)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
