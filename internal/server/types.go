// Package server provides the HTTP surface for avatar processing.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CropRequest is the HTTP request body for cropping an avatar to a square.
type CropRequest struct {
	// Source is an http(s) URL, a base64 data URI or bare base64 image bytes.
	Source string `json:"source" validate:"required,url|imagesource"`
	// Publish indicates whether to upload the result and return its URL.
	Publish bool `json:"publish"`
}

// DecorateRequest is the HTTP request body for decorating an avatar.
type DecorateRequest struct {
	// Avatar is the base image source.
	Avatar string `json:"avatar" validate:"required,url|imagesource"`
	// Decoration is the animated overlay source, usually a GIF.
	Decoration string `json:"decoration" validate:"required,url|imagesource"`
	// Publish indicates whether to upload the result and return its URL.
	Publish bool `json:"publish"`
}

// AvatarResponse is the HTTP response for a processed avatar.
type AvatarResponse struct {
	// DataURI is the result as "data:<mime>;base64,<payload>".
	DataURI string `json:"data_uri"`
	// MIMEType is the type of the produced image.
	MIMEType string `json:"mime_type"`
	// URL is the published location (if publish=true).
	URL string `json:"url,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is "ok" or "unavailable".
	Status string `json:"status"`
	// Error describes why the service is unavailable.
	Error string `json:"error,omitempty"`
}
