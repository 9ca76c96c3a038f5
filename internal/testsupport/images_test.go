package testsupport

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteColors_CountsUnionAcrossFrames(t *testing.T) {
	palette := func(g uint8) color.Palette {
		p := make(color.Palette, 0, 256)
		for i := 0; i < 256; i++ {
			p = append(p, color.RGBA{R: uint8(i), G: g, A: 255})
		}
		return p
	}
	rect := image.Rect(0, 0, 1, 1)

	shared := []*image.Paletted{
		image.NewPaletted(rect, palette(0)),
		image.NewPaletted(rect, palette(0)),
	}
	assert.Equal(t, 256, PaletteColors(shared))

	// Each frame fits one palette on its own, the animation does not.
	disjoint := []*image.Paletted{
		image.NewPaletted(rect, palette(0)),
		image.NewPaletted(rect, palette(1)),
	}
	assert.Equal(t, 512, PaletteColors(disjoint))
}

func TestBandedGIF_ExceedsOnePalette(t *testing.T) {
	g := DecodeGIF(t, BandedGIF(t, 32, 3))

	require.Len(t, g.Image, 3)
	assert.Greater(t, PaletteColors(g.Image), 256)

	// Below the band every frame is transparent.
	count, _ := OpaqueBounds(g.Image[0].SubImage(image.Rect(0, 8, 32, 32)))
	assert.Zero(t, count)
}

func TestAnimatedPNG(t *testing.T) {
	data := AnimatedPNG(t, 6, 4, color.White, color.Black)

	assert.Equal(t, pngSignature, data[:8])
	assert.Equal(t, "acTL", string(data[37:41]))

	w, h := DecodeConfig(t, data)
	assert.Equal(t, 6, w)
	assert.Equal(t, 4, h)
}
