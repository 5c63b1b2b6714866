package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

// Default display box, matching the canvas limits of the picker page.
const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
)

// Buffer is the pixel grid the picker samples from.
type Buffer struct {
	// Pixels holds non-premultiplied 8-bit samples with bounds at the origin.
	Pixels *image.NRGBA

	// Original is the size of the decoded image before display scaling.
	Original picker.Size

	// Format is the decoder's format name ("png", "jpeg", ...).
	Format string

	// HasAlpha reports whether any pixel is not fully opaque.
	HasAlpha bool
}

// Size returns the buffer's pixel dimensions.
func (b *Buffer) Size() picker.Size {
	r := b.Pixels.Bounds()
	return picker.Size{Width: r.Dx(), Height: r.Dy()}
}

// Scaled reports whether display scaling changed the image's resolution.
func (b *Buffer) Scaled() bool {
	return b.Size() != b.Original
}

// BufferInfo summarizes a Buffer for tool results.
type BufferInfo struct {
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	DisplayWidth   int    `json:"display_width"`
	DisplayHeight  int    `json:"display_height"`
	Format         string `json:"format"`
	HasAlpha       bool   `json:"has_alpha"`
	Scaled         bool   `json:"scaled"`
}

// Info returns the buffer summary.
func (b *Buffer) Info() BufferInfo {
	size := b.Size()
	return BufferInfo{
		OriginalWidth:  b.Original.Width,
		OriginalHeight: b.Original.Height,
		DisplayWidth:   size.Width,
		DisplayHeight:  size.Height,
		Format:         b.Format,
		HasAlpha:       b.HasAlpha,
		Scaled:         b.Scaled(),
	}
}

// FitDisplay returns the display size for an image of w x h pixels inside
// a maxW x maxH box.
//
// Images that already fit are left alone. Larger ones are scaled by
// min(maxW/w, maxH/h), keeping the aspect ratio, and truncated to whole
// pixels but never below one. A non-positive maximum disables fitting.
func FitDisplay(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 || w <= 0 || h <= 0 {
		return w, h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}

	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := int(float64(w) * ratio)
	fh := int(float64(h) * ratio)
	return max(fw, 1), max(fh, 1)
}

// NewBuffer renders a decoded image into a display buffer no larger than
// maxW x maxH.
func NewBuffer(dec *Decoded, maxW, maxH int) *Buffer {
	src := dec.Image
	bounds := src.Bounds()
	w, h := FitDisplay(bounds.Dx(), bounds.Dy(), maxW, maxH)

	var pixels *image.NRGBA
	if w == bounds.Dx() && h == bounds.Dy() {
		pixels = imaging.Clone(src)
	} else {
		pixels = imaging.Resize(src, w, h, imaging.Linear)
	}

	return &Buffer{
		Pixels:   pixels,
		Original: picker.Size{Width: bounds.Dx(), Height: bounds.Dy()},
		Format:   dec.Format,
		HasAlpha: !pixels.Opaque(),
	}
}
