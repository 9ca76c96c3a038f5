// Package testsupport builds encoded test images and inspects engine output.
package testsupport

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

// SolidPNG encodes an opaque w×h PNG filled with c.
func SolidPNG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// SolidJPEG encodes a w×h JPEG filled with c.
func SolidJPEG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// TransparentGIF encodes an animated size×size GIF with the given number
// of frames. Each frame is fully transparent except a 2×2 marker in the
// top-left corner whose color changes per frame.
func TransparentGIF(t testing.TB, size, frames int) []byte {
	t.Helper()

	pal := color.Palette{color.Transparent}
	pal = append(pal, palette.Plan9[1:16]...)

	anim := &gif.GIF{}
	for f := 0; f < frames; f++ {
		img := image.NewPaletted(image.Rect(0, 0, size, size), pal)
		idx := uint8(1 + f%(len(pal)-1))
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				img.SetColorIndex(x, y, idx)
			}
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, 4)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// BandedGIF encodes an animated size×size GIF whose frames are
// transparent except an 8 pixel band along the top edge. Each frame paints
// the band with 255 colors of its own, so the frames together carry more
// colors than a single GIF palette can hold.
func BandedGIF(t testing.TB, size, frames int) []byte {
	t.Helper()

	anim := &gif.GIF{}
	for f := 0; f < frames; f++ {
		pal := color.Palette{color.Transparent}
		for i := 1; i < 256; i++ {
			pal = append(pal, color.RGBA{R: uint8(i), G: uint8(f * 85), B: uint8(255 - i), A: 255})
		}

		img := image.NewPaletted(image.Rect(0, 0, size, size), pal)
		for y := 0; y < 8; y++ {
			for x := 0; x < size; x++ {
				img.SetColorIndex(x, y, uint8(1+(y*size+x)%255))
			}
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, 4)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// AnimatedPNG encodes a w×h animated PNG with one solid frame per color.
func AnimatedPNG(t testing.TB, w, h int, frames ...color.Color) []byte {
	t.Helper()
	if len(frames) == 0 {
		t.Fatal("animated png needs at least one frame")
	}

	var out bytes.Buffer
	out.Write(pngSignature)

	var seq uint32
	for i, c := range frames {
		ihdr, idat := pngChunks(t, SolidPNG(t, w, h, c))
		if i == 0 {
			writeChunk(&out, "IHDR", ihdr)
			actl := make([]byte, 8)
			binary.BigEndian.PutUint32(actl[0:], uint32(len(frames)))
			binary.BigEndian.PutUint32(actl[4:], 0)
			writeChunk(&out, "acTL", actl)
		}

		fctl := make([]byte, 26)
		binary.BigEndian.PutUint32(fctl[0:], seq)
		binary.BigEndian.PutUint32(fctl[4:], uint32(w))
		binary.BigEndian.PutUint32(fctl[8:], uint32(h))
		binary.BigEndian.PutUint16(fctl[20:], 1)  // delay numerator
		binary.BigEndian.PutUint16(fctl[22:], 10) // delay denominator
		writeChunk(&out, "fcTL", fctl)
		seq++

		if i == 0 {
			writeChunk(&out, "IDAT", idat)
			continue
		}
		fdat := make([]byte, 4, 4+len(idat))
		binary.BigEndian.PutUint32(fdat, seq)
		writeChunk(&out, "fdAT", append(fdat, idat...))
		seq++
	}

	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngChunks returns the IHDR payload and the concatenated IDAT payloads
// of an encoded PNG.
func pngChunks(t testing.TB, data []byte) (ihdr, idat []byte) {
	t.Helper()

	rest := data[len(pngSignature):]
	for len(rest) >= 12 {
		n := binary.BigEndian.Uint32(rest)
		typ := string(rest[4:8])
		payload := rest[8 : 8+n]
		switch typ {
		case "IHDR":
			ihdr = payload
		case "IDAT":
			idat = append(idat, payload...)
		}
		rest = rest[12+n:]
	}
	if ihdr == nil || idat == nil {
		t.Fatal("png without IHDR or IDAT")
	}
	return ihdr, idat
}

func writeChunk(w *bytes.Buffer, typ string, payload []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(payload)))
	w.Write(n[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(payload)
	w.WriteString(typ)
	w.Write(payload)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	w.Write(sum[:])
}

// PaletteColors returns the number of distinct colors across the
// palettes of all frames.
func PaletteColors(frames []*image.Paletted) int {
	seen := make(map[color.RGBA]struct{})
	for _, frame := range frames {
		for _, c := range frame.Palette {
			r, g, b, a := c.RGBA()
			seen[color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}] = struct{}{}
		}
	}
	return len(seen)
}

// DecodeConfig returns the dimensions of an encoded image.
func DecodeConfig(t testing.TB, data []byte) (w, h int) {
	t.Helper()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode image config: %v", err)
	}
	return cfg.Width, cfg.Height
}

// DecodeGIF decodes every frame of an encoded GIF.
func DecodeGIF(t testing.TB, data []byte) *gif.GIF {
	t.Helper()

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	return g
}

// OpaqueBounds returns the number of pixels with non-zero alpha in img
// and the bounding box enclosing them.
func OpaqueBounds(img image.Image) (count int, box image.Rectangle) {
	b := img.Bounds()
	first := true
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				continue
			}
			count++
			p := image.Rect(x, y, x+1, y+1)
			if first {
				box = p
				first = false
				continue
			}
			box = box.Union(p)
		}
	}
	return count, box
}
