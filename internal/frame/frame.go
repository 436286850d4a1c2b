// Package frame acquires still images and normalises them to JPEG for the
// quiz generator.
package frame

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDeviceUnavailable means the capture device is missing, busy, or
	// the source was closed. Callers fall back to file input.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrUnsupportedImage means the bytes could not be decoded as an image.
	ErrUnsupportedImage = errors.New("unsupported image")
)

// Kind identifies where a frame came from.
type Kind string

const (
	KindCamera Kind = "camera"
	KindFile   Kind = "file"
)

// Frame is one still image, always JPEG after normalisation.
type Frame struct {
	Data       []byte
	MIMEType   string
	Width      int
	Height     int
	Source     Kind
	CapturedAt time.Time
}

// Base64 returns the standard base64 encoding of the image bytes.
func (f *Frame) Base64() string {
	return base64.StdEncoding.EncodeToString(f.Data)
}

// Source produces frames. Implementations own whatever handle they capture
// from and release it on Close.
type Source interface {
	Capture(ctx context.Context) (*Frame, error)
	Close() error
}

// Options bound the normalised output.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality, 1-100
}

// DefaultOptions matches a 1080p camera still at quality 80.
func DefaultOptions() Options {
	return Options{MaxWidth: 1920, MaxHeight: 1080, Quality: 80}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxWidth <= 0 {
		o.MaxWidth = def.MaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = def.MaxHeight
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = def.Quality
	}
	return o
}

// Normalize decodes any supported image, scales it down to fit within the
// option bounds keeping the aspect ratio, and re-encodes it as JPEG.
func Normalize(data []byte, kind Kind, opts Options) (*Frame, error) {
	opts = opts.withDefaults()

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img := fit(src, opts.MaxWidth, opts.MaxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b := img.Bounds()
	return &Frame{
		Data:       buf.Bytes(),
		MIMEType:   "image/jpeg",
		Width:      b.Dx(),
		Height:     b.Dy(),
		Source:     kind,
		CapturedAt: time.Now(),
	}, nil
}

// fit returns src unchanged when it already fits, otherwise a scaled copy
// on a white background (JPEG has no alpha).
func fit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return flatten(src)
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func flatten(src image.Image) image.Image {
	if _, ok := src.(*image.YCbCr); ok {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
