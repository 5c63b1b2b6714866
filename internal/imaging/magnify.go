package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// Default magnifier geometry: a 150px square showing a 30px source area.
const (
	DefaultMagnifierSize = 150
	DefaultMagnifierZoom = 5

	// MaxMagnifierSize bounds the preview edge so one request cannot
	// allocate an arbitrarily large image.
	MaxMagnifierSize = 1024
)

// MagnifierResult is the magnified preview around a picked pixel.
type MagnifierResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// SourceX and SourceY are the top-left of the source square in buffer
	// coordinates. They may be negative near the image edges.
	SourceX    int `json:"source_x"`
	SourceY    int `json:"source_y"`
	SourceSize int `json:"source_size"`
}

// Magnify builds a size x size preview of the area centered on (x, y),
// enlarged zoom times with nearest-neighbor sampling so pixels stay sharp.
//
// The source square is size/zoom pixels wide with its origin at
// (x - src/2, y - src/2). Any part of it outside the image is transparent.
func Magnify(img image.Image, x, y, size, zoom int) (*MagnifierResult, error) {
	if size <= 0 {
		return nil, fmt.Errorf("magnifier size must be positive, got %d", size)
	}
	if size > MaxMagnifierSize {
		return nil, fmt.Errorf("magnifier size %d exceeds maximum %d", size, MaxMagnifierSize)
	}
	if zoom < 1 {
		return nil, fmt.Errorf("magnifier zoom must be at least 1, got %d", zoom)
	}

	src := max(size/zoom, 1)
	srcX := x - src/2
	srcY := y - src/2

	patch, err := magnifierSource(img, srcX, srcY, src)
	if err != nil {
		return nil, err
	}
	zoomed := transform.Resize(patch, size, size, transform.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, zoomed); err != nil {
		return nil, fmt.Errorf("failed to encode magnified image: %w", err)
	}

	return &MagnifierResult{
		Width:       zoomed.Bounds().Dx(),
		Height:      zoomed.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		SourceX:     srcX,
		SourceY:     srcY,
		SourceSize:  src,
	}, nil
}

// magnifierSource copies the src x src square at (srcX, srcY) onto a
// transparent canvas, clipping against the image bounds.
func magnifierSource(img image.Image, srcX, srcY, src int) (*image.NRGBA, error) {
	bounds := img.Bounds()
	want := image.Rect(srcX, srcY, srcX+src, srcY+src).Add(bounds.Min)
	visible := want.Intersect(bounds)

	canvas := image.NewNRGBA(image.Rect(0, 0, src, src))
	if visible.Empty() {
		return canvas, nil
	}

	cropped := imaging.Crop(img, visible)
	return imaging.Paste(canvas, cropped, visible.Min.Sub(want.Min)), nil
}
