package helpers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestImageProcessor_KeepsSmallImages(t *testing.T) {
	p := NewImageProcessor(1<<20, 100)
	data := pngBytes(t, 40, 20)

	out, err := p.Prepare(data)
	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, ".png", out.Ext)
	assert.Equal(t, 40, out.Width)
}

func TestImageProcessor_DownscalesLargeImages(t *testing.T) {
	p := NewImageProcessor(1<<20, 50)

	out, err := p.Prepare(pngBytes(t, 200, 100))
	require.NoError(t, err)
	assert.Equal(t, 50, out.Width)
	assert.Equal(t, 25, out.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 50, cfg.Width)
}

func TestImageProcessor_Rejects(t *testing.T) {
	p := NewImageProcessor(64, 0)

	_, err := p.Prepare(pngBytes(t, 200, 200))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	p.MaxBytes = 0
	_, err = p.Prepare([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestImageProcessor_RejectsTooManyPixelsBeforeDecoding(t *testing.T) {
	// A mostly blank 2000x2000 PNG compresses to a few kilobytes but decodes to 16 MB.
	data := pngBytes(t, 2000, 2000)
	p := NewImageProcessor(1<<20, 100)
	p.MaxPixels = 1_000_000
	require.Less(t, len(data), 1<<20)

	_, err := p.Prepare(data)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Contains(t, err.Error(), "2000x2000")

	p.MaxPixels = 0
	out, err := p.Prepare(pngBytes(t, 400, 300))
	require.NoError(t, err)
	assert.Equal(t, 100, out.Width, "no cap still downscales")
}

func TestNewImageProcessor_DefaultPixelCap(t *testing.T) {
	assert.Equal(t, int64(DefaultMaxPixels), NewImageProcessor(0, 0).MaxPixels)
}
