// Package dataurl encodes byte buffers as base64 data URIs and decodes them back.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode"
)

// Static errors for data URI handling.
var (
	// ErrEmptyPayload is returned when there are no bytes to encode.
	ErrEmptyPayload = errors.New("dataurl: empty payload")
	// ErrInvalidMediaType is returned when the MIME type cannot be parsed.
	ErrInvalidMediaType = errors.New("dataurl: invalid media type")
	// ErrMalformed is returned when a string is not a base64 data URI.
	ErrMalformed = errors.New("dataurl: malformed data URI")
)

const (
	scheme       = "data:"
	base64Marker = ";base64"
)

// Encode returns data as "data:<mimeType>;base64,<payload>". The whole
// slice is encoded regardless of its backing array.
func Encode(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}
	if _, _, err := mime.ParseMediaType(mimeType); err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidMediaType, mimeType, err)
	}

	var b strings.Builder
	b.Grow(len(scheme) + len(mimeType) + len(base64Marker) + 1 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(scheme)
	b.WriteString(mimeType)
	b.WriteString(base64Marker)
	b.WriteByte(',')
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

// IsDataURI reports whether s uses the data: scheme.
func IsDataURI(s string) bool {
	return len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme)
}

// Decode parses a base64 data URI and returns its payload and declared MIME type.
func Decode(uri string) (data []byte, mimeType string, err error) {
	if !IsDataURI(uri) {
		return nil, "", ErrMalformed
	}
	header, payload, ok := strings.Cut(uri[len(scheme):], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload separator", ErrMalformed)
	}
	mimeType, isBase64 := strings.CutSuffix(header, base64Marker)
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", ErrMalformed)
	}

	data, err = DecodeBase64(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return data, mimeType, nil
}

// DecodeBase64 decodes standard base64 with or without padding. Whitespace
// anywhere in s is ignored, so line-wrapped output decodes as well.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, ErrEmptyPayload
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
