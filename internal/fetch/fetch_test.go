package fetch

import (
	"context"
	"encoding/base64"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/avatarkit/internal/dataurl"
	"github.com/maauso/avatarkit/internal/testsupport"
)

func TestFetch_Remote(t *testing.T) {
	pngData := testsupport.SolidPNG(t, 4, 4, color.White)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/avatar.jpg":
			// Extension and header lie; content decides.
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(pngData)
		case "/missing.png":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte("<html>not an image</html>"))
		}
	}))
	defer server.Close()

	f := NewFetcher()
	ctx := context.Background()

	t.Run("sniffs content not URL", func(t *testing.T) {
		a, err := f.Fetch(ctx, server.URL+"/avatar.jpg")
		require.NoError(t, err)
		assert.Equal(t, "image/png", a.MIMEType)
		assert.Equal(t, ".png", a.Ext)
		assert.Equal(t, pngData, a.Bytes)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		_, err := f.Fetch(ctx, server.URL+"/missing.png")
		assert.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("unrecognized content", func(t *testing.T) {
		a, err := f.Fetch(ctx, server.URL+"/page")
		require.NoError(t, err)
		assert.False(t, a.Recognized())
	})

	t.Run("size limit", func(t *testing.T) {
		small := NewFetcher(WithMaxBytes(8))
		_, err := small.Fetch(ctx, server.URL+"/avatar.jpg")
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestFetch_Inline(t *testing.T) {
	gifData := testsupport.TransparentGIF(t, 4, 2)
	ctx := context.Background()
	f := NewFetcher()

	t.Run("bare base64", func(t *testing.T) {
		a, err := f.Fetch(ctx, base64.StdEncoding.EncodeToString(gifData))
		require.NoError(t, err)
		assert.Equal(t, "image/gif", a.MIMEType)
	})

	t.Run("unpadded base64", func(t *testing.T) {
		a, err := f.Fetch(ctx, base64.RawStdEncoding.EncodeToString(gifData))
		require.NoError(t, err)
		assert.Equal(t, "image/gif", a.MIMEType)
	})

	t.Run("data URI ignores declared type", func(t *testing.T) {
		uri, err := dataurl.Encode(gifData, "image/png")
		require.NoError(t, err)

		a, err := f.Fetch(ctx, uri)
		require.NoError(t, err)
		assert.Equal(t, "image/gif", a.MIMEType)
	})

	t.Run("malformed data URI", func(t *testing.T) {
		_, err := f.Fetch(ctx, "data:image/png;base64,@@@")
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := f.Fetch(ctx, "not base64 at all!")
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := f.Fetch(ctx, "   ")
		assert.ErrorIs(t, err, ErrEmptySource)
	})
}
