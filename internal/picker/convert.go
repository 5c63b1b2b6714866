package picker

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownFormat is returned when a format name is not one of Formats.
var ErrUnknownFormat = errors.New("unknown color format")

// Formats lists the format names a Representation can be queried by,
// in display order.
var Formats = []string{"hex", "rgb", "rgba", "hsl", "hsla"}

// Pixel is one sample of an image buffer.
//
// R, G and B are 8-bit channels. A is the alpha channel normalized to
// [0, 1]; buffers store it at 8-bit precision.
type Pixel struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

// NewPixel builds a Pixel from integer channels, clamping each into
// [0, 255] and alpha into [0, 1].
func NewPixel(r, g, b int, a float64) Pixel {
	return Pixel{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampAlpha(a)}
}

// PixelFromNRGBA converts a non-premultiplied 8-bit color.
func PixelFromNRGBA(c color.NRGBA) Pixel {
	return Pixel{R: c.R, G: c.G, B: c.B, A: float64(c.A) / 255}
}

// HSL is a color in hue/saturation/lightness form.
type HSL struct {
	H int `json:"h"` // Hue: 0-359 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ToPixel converts back to RGB with the given alpha.
func (c HSL) ToPixel(alpha float64) Pixel {
	r, g, b := colorful.Hsl(float64(c.H), float64(c.S)/100, float64(c.L)/100).Clamped().RGB255()
	return Pixel{R: r, G: g, B: b, A: clampAlpha(alpha)}
}

// Representation is one pixel formatted five ways.
type Representation struct {
	Hex  string `json:"hex"`
	RGB  string `json:"rgb"`
	RGBA string `json:"rgba"`
	HSL  string `json:"hsl"`
	HSLA string `json:"hsla"`
}

// Format returns the string for a format name from Formats.
func (r Representation) Format(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hex":
		return r.Hex, nil
	case "rgb":
		return r.RGB, nil
	case "rgba":
		return r.RGBA, nil
	case "hsl":
		return r.HSL, nil
	case "hsla":
		return r.HSLA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Convert formats a pixel in every supported notation.
func Convert(p Pixel) Representation {
	a := clampAlpha(p.A)
	hsl := RGBToHSL(p.R, p.G, p.B)

	return Representation{
		Hex:  RGBToHex(p.R, p.G, p.B),
		RGB:  fmt.Sprintf("rgb(%d, %d, %d)", p.R, p.G, p.B),
		RGBA: fmt.Sprintf("rgba(%d, %d, %d, %s)", p.R, p.G, p.B, formatAlpha(a)),
		HSL:  fmt.Sprintf("hsl(%d, %d%%, %d%%)", hsl.H, hsl.S, hsl.L),
		HSLA: fmt.Sprintf("hsla(%d, %d%%, %d%%, %s)", hsl.H, hsl.S, hsl.L, formatAlpha(a)),
	}
}

// formatAlpha renders alpha with two decimals, rounding halves up.
func formatAlpha(a float64) string {
	return strconv.FormatFloat(math.Floor(a*100+0.5)/100, 'f', 2, 64)
}

// RGBToHex formats channels as lowercase #rrggbb.
func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// RGBToHSL converts 8-bit RGB values to HSL.
//
// When two channels share the maximum, the first of red, green, blue wins
// the hue branch. A hue that rounds up to 360 is reported as 0.
func RGBToHSL(r, g, b uint8) HSL {
	h, s, l := hslFractions(r, g, b)

	hue := round(h * 360)
	if hue >= 360 {
		hue -= 360
	}
	return HSL{H: hue, S: round(s * 100), L: round(l * 100)}
}

// hslFractions returns unrounded hue, saturation and lightness, each in [0, 1].
func hslFractions(r, g, b uint8) (h, s, l float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case rf:
		h = (gf - bf) / d
		if gf < bf {
			h += 6
		}
	case gf:
		h = (bf-rf)/d + 2
	case bf:
		h = (rf-gf)/d + 4
	}
	return h / 6, s, l
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa". The leading '#' is
// optional. Colors without an alpha component are opaque.
func ParseHex(s string) (Pixel, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		fallthrough
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Pixel{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return Pixel{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 1}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Pixel{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return Pixel{
			R: uint8(val >> 24),
			G: uint8(val >> 16),
			B: uint8(val >> 8),
			A: float64(uint8(val)) / 255,
		}, nil
	}
	return Pixel{}, fmt.Errorf("invalid hex color %q: must be 3, 6 or 8 hex digits", s)
}

func round(v float64) int {
	return int(math.Round(v))
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampAlpha(a float64) float64 {
	if !(a > 0) {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
