// Package media holds fetched image bytes together with the format
// sniffed from their content.
package media

import (
	"github.com/gabriel-vasile/mimetype"
)

// supported lists the image types the engine can decode, keyed by sniffed MIME type.
var supported = map[string]bool{
	"image/png":              true,
	"image/vnd.mozilla.apng": true,
	"image/jpeg":             true,
	"image/gif":              true,
	"image/webp":             true,
	"image/bmp":              true,
	"image/tiff":             true,
}

// extensions overrides the sniffed extension where the engine picks its
// muxer from the file name. An animated PNG named ".png" selects the
// single-image muxer, which fails on the second frame.
var extensions = map[string]string{
	"image/vnd.mozilla.apng": ".apng",
}

// Asset is an immutable fetched image. MIMEType and Ext are empty when
// the content matched no supported image format.
type Asset struct {
	Bytes    []byte
	MIMEType string
	// Ext is the file extension matching MIMEType, with the leading dot.
	Ext string
}

// NewAsset sniffs data and returns the resulting Asset.
func NewAsset(data []byte) Asset {
	mime, ext, _ := Sniff(data)
	return Asset{Bytes: data, MIMEType: mime, Ext: ext}
}

// Recognized reports whether the asset content matched a supported image format.
func (a Asset) Recognized() bool {
	return a.MIMEType != ""
}

// Sniff detects the image format of data from its content alone.
// It returns ok=false when the content is not a supported image.
func Sniff(data []byte) (mime, ext string, ok bool) {
	if len(data) == 0 {
		return "", "", false
	}
	mt := mimetype.Detect(data)
	if !supported[mt.String()] {
		return "", "", false
	}
	ext = mt.Extension()
	if override, ok := extensions[mt.String()]; ok {
		ext = override
	}
	return mt.String(), ext, true
}
