package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var (
	ErrImageTooLarge    = errors.New("image exceeds upload limit")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// DefaultMaxPixels bounds the decoded size of an upload, about 160 MB as NRGBA.
const DefaultMaxPixels = 40_000_000

// ImageProcessor validates uploads and scales down anything wider or taller than MaxDimension.
// Images above MaxPixels are refused from their header, before any pixel is decoded.
type ImageProcessor struct {
	MaxBytes     int64
	MaxDimension int
	MaxPixels    int64
}

func NewImageProcessor(maxBytes int64, maxDimension int) *ImageProcessor {
	return &ImageProcessor{MaxBytes: maxBytes, MaxDimension: maxDimension, MaxPixels: DefaultMaxPixels}
}

var imageFormats = map[string]struct {
	format      imaging.Format
	contentType string
	ext         string
}{
	"jpeg": {imaging.JPEG, "image/jpeg", ".jpg"},
	"png":  {imaging.PNG, "image/png", ".png"},
	"gif":  {imaging.GIF, "image/gif", ".gif"},
}

// PreparedImage is an upload ready to be stored.
type PreparedImage struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

func (p *ImageProcessor) Prepare(data []byte) (*PreparedImage, error) {
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrImageTooLarge, len(data), p.MaxBytes)
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	f, ok := imageFormats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); p.MaxPixels > 0 && pixels > p.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels, max %d", ErrImageTooLarge, cfg.Width, cfg.Height, p.MaxPixels)
	}
	out := &PreparedImage{Data: data, ContentType: f.contentType, Ext: f.ext, Width: cfg.Width, Height: cfg.Height}
	if p.MaxDimension <= 0 || (cfg.Width <= p.MaxDimension && cfg.Height <= p.MaxDimension) {
		return out, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	resized := imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, f.format, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	b := resized.Bounds()
	out.Data, out.Width, out.Height = buf.Bytes(), b.Dx(), b.Dy()
	return out, nil
}
