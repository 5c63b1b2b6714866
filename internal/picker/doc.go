// Package picker holds the pure computations behind the color picker.
//
// Nothing in this package touches an image, a display surface, or session
// state. Callers pass plain values in and get plain values back, so every
// function here is safe to call from any goroutine.
//
// # Coordinate Mapping
//
// MapPointer translates a pointer position in viewport units into a pixel
// index in the image buffer. The displayed rectangle may be scaled relative
// to the buffer (responsive layouts, high-DPI screens), so each axis is
// scaled independently, floored, and then clamped into the buffer:
//
//	rel   = pointer - (rect.Left, rect.Top)
//	scale = buffer / (rect.Width, rect.Height)
//	x, y  = clamp(floor(rel * scale), 0, dim-1)
//
// A rectangle with no extent (an image that has not been laid out yet)
// yields ErrGeometryUnavailable instead of a division by zero.
//
// # Color Conversion
//
// Convert turns a Pixel into five strings:
//
//	hex   #rrggbb          lowercase, alpha excluded
//	rgb   rgb(r, g, b)
//	rgba  rgba(r, g, b, a) alpha with two decimals
//	hsl   hsl(h, s%, l%)
//	hsla  hsla(h, s%, l%, a)
//
// Hue is in whole degrees in [0, 360), saturation and lightness are whole
// percentages in [0, 100].
//
// # Input Ranges
//
// Red, green and blue are uint8 and therefore always in range. NewPixel
// clamps integer channels into [0, 255]; alpha is clamped into [0, 1] by
// Convert, and a NaN alpha is treated as fully transparent.
package picker
