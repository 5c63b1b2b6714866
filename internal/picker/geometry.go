package picker

import (
	"errors"
	"math"
)

var (
	// ErrGeometryUnavailable is returned when the displayed rectangle or the
	// buffer has no extent. Callers should skip the sample.
	ErrGeometryUnavailable = errors.New("display geometry unavailable")

	// ErrInvalidPointer is returned for pointer coordinates that are NaN.
	ErrInvalidPointer = errors.New("invalid pointer position")
)

// Point is a position in viewport units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the on-screen rectangle an image buffer is rendered into,
// in viewport units.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is the pixel extent of an image buffer.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the size holds no pixels.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// IdentityRect returns a rectangle at the origin with the buffer's own
// extent, i.e. a display with no scaling and no offset.
func IdentityRect(buf Size) Rect {
	return Rect{Width: float64(buf.Width), Height: float64(buf.Height)}
}

// usable reports whether r can be used as a divisor on both axes.
func (r Rect) usable() bool {
	return r.Width > 0 && r.Height > 0 && !math.IsInf(r.Width, 0) && !math.IsInf(r.Height, 0)
}

// MapPointer converts a pointer position into buffer coordinates.
//
// The result always satisfies 0 <= x < buf.Width and 0 <= y < buf.Height.
// Positions outside the rectangle, including ones far away from it after a
// fast drag, clamp to the nearest edge pixel.
//
// Returns ErrGeometryUnavailable when r or buf has no extent, and
// ErrInvalidPointer when p holds a NaN.
func MapPointer(p Point, r Rect, buf Size) (x, y int, err error) {
	if buf.Empty() || !r.usable() {
		return 0, 0, ErrGeometryUnavailable
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return 0, 0, ErrInvalidPointer
	}

	relX := p.X - r.Left
	relY := p.Y - r.Top

	scaleX := float64(buf.Width) / r.Width
	scaleY := float64(buf.Height) / r.Height

	x = clampIndex(math.Floor(relX*scaleX), buf.Width)
	y = clampIndex(math.Floor(relY*scaleY), buf.Height)
	return x, y, nil
}

// clampIndex clamps v into [0, n-1] before converting to int, so huge or
// infinite values never overflow.
func clampIndex(v float64, n int) int {
	if !(v > 0) {
		return 0
	}
	if v >= float64(n-1) {
		return n - 1
	}
	return int(v)
}
