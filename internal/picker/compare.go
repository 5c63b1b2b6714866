package picker

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorDifference describes how far apart two colors are. Alpha is
// ignored.
type ColorDifference struct {
	// DeltaE76 and DeltaE2000 are CIE color differences on the usual
	// 0-100 scale; values below about 2 are hard to tell apart.
	DeltaE76   float64 `json:"delta_e76"`
	DeltaE2000 float64 `json:"delta_e2000"`

	// ContrastRatio is the WCAG contrast ratio, from 1 to 21.
	ContrastRatio float64 `json:"contrast_ratio"`

	Identical bool `json:"identical"`
}

// Compare measures the difference between a and b.
func Compare(a, b Pixel) ColorDifference {
	ca := a.toColorful()
	cb := b.toColorful()

	la, lb := luminance(ca), luminance(cb)
	if la < lb {
		la, lb = lb, la
	}

	return ColorDifference{
		DeltaE76:      round2(ca.DistanceLab(cb) * 100),
		DeltaE2000:    round2(ca.DistanceCIEDE2000(cb) * 100),
		ContrastRatio: round2((la + 0.05) / (lb + 0.05)),
		Identical:     a.R == b.R && a.G == b.G && a.B == b.B,
	}
}

func (p Pixel) toColorful() colorful.Color {
	return colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
}

// luminance is the WCAG relative luminance.
func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
