package media

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maauso/avatarkit/internal/testsupport"
)

func TestSniff(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}

	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantExt  string
		wantOK   bool
	}{
		{"png", testsupport.SolidPNG(t, 4, 4, red), "image/png", ".png", true},
		{"jpeg", testsupport.SolidJPEG(t, 4, 4, red), "image/jpeg", ".jpg", true},
		{"gif", testsupport.TransparentGIF(t, 4, 2), "image/gif", ".gif", true},
		{"animated png", testsupport.AnimatedPNG(t, 4, 4, red, color.White), "image/vnd.mozilla.apng", ".apng", true},
		{"text", []byte("definitely not an image"), "", "", false},
		{"pdf", []byte("%PDF-1.7\n"), "", "", false},
		{"empty", nil, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, ext, ok := Sniff(tt.data)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMIME, mime)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestNewAsset(t *testing.T) {
	data := testsupport.SolidPNG(t, 2, 2, color.White)

	a := NewAsset(data)
	assert.True(t, a.Recognized())
	assert.Equal(t, "image/png", a.MIMEType)
	assert.Equal(t, ".png", a.Ext)
	assert.Equal(t, data, a.Bytes)

	assert.False(t, NewAsset([]byte("nope")).Recognized())
}
