package imaging

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

// ColorResult is a sampled pixel with its location and formatted values.
type ColorResult struct {
	X      int                   `json:"x"`
	Y      int                   `json:"y"`
	Pixel  picker.Pixel          `json:"pixel"`
	HSL    picker.HSL            `json:"hsl"`
	Colors picker.Representation `json:"colors"`
}

// SamplePixel reads the non-premultiplied color at (x, y).
//
// Coordinates are relative to the image's bounds origin. Reading outside
// the bounds is an error; coordinates produced by picker.MapPointer are
// always inside.
func SamplePixel(img image.Image, x, y int) (picker.Pixel, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return picker.Pixel{}, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		return picker.PixelFromNRGBA(nrgba.NRGBAAt(px, py)), nil
	}
	c := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
	return picker.PixelFromNRGBA(c), nil
}

// SampleColor samples (x, y) and formats the result.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	p, err := SamplePixel(img, x, y)
	if err != nil {
		return nil, err
	}
	return &ColorResult{
		X:      x,
		Y:      y,
		Pixel:  p,
		HSL:    picker.RGBToHSL(p.R, p.G, p.B),
		Colors: picker.Convert(p),
	}, nil
}

// LabeledPoint is a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int
	Y     int
	Label string
}

// LabeledColorResult combines a color sample with its label.
type LabeledColorResult struct {
	Label string `json:"label,omitempty"`
	ColorResult
}

// MultiColorResult contains color samples in input order.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
}

// SampleColorsMulti samples several coordinates in one call.
//
// On error no partial results are returned.
func SampleColorsMulti(img image.Image, points []LabeledPoint) (*MultiColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))

	for _, p := range points {
		c, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{Label: p.Label, ColorResult: *c})
	}

	return &MultiColorResult{Samples: results}, nil
}

// Region is a rectangular region within an image.
// (X1, Y1) is inclusive, (X2, Y2) is exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// ColorFrequency is a palette entry with its share of the sampled pixels.
type ColorFrequency struct {
	Percentage float64               `json:"percentage"` // 0-100
	Pixel      picker.Pixel          `json:"pixel"`
	Colors     picker.Representation `json:"colors"`
}

// DominantColorsResult contains palette entries, most common first.
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// mergeDistance is the CIE76 distance under which quantized colors are
// folded into an earlier, more common palette entry.
const mergeDistance = 0.03

// DominantColors extracts up to count of the most common colors from an
// image or region.
//
// Pixels are quantized to 16 levels per channel (quantized = v / 16 * 16)
// and fully transparent pixels are skipped. Quantized colors that are still
// perceptually close in Lab space are merged into the more common entry.
func DominantColors(img image.Image, count int, region *Region) (*DominantColorsResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	nrgba, _, err := cropRegion(img, region)
	if err != nil {
		return nil, err
	}

	counts := make(map[color.RGBA]int)
	total := 0
	bounds := nrgba.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := nrgba.NRGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			key := color.RGBA{R: c.R / 16 * 16, G: c.G / 16 * 16, B: c.B / 16 * 16, A: 255}
			counts[key]++
			total++
		}
	}

	type bucket struct {
		key   color.RGBA
		count int
		lab   colorful.Color
	}
	buckets := make([]*bucket, 0, len(counts))
	for k, n := range counts {
		cf, _ := colorful.MakeColor(k)
		buckets = append(buckets, &bucket{key: k, count: n, lab: cf})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return picker.RGBToHex(buckets[i].key.R, buckets[i].key.G, buckets[i].key.B) <
			picker.RGBToHex(buckets[j].key.R, buckets[j].key.G, buckets[j].key.B)
	})

	merged := make([]*bucket, 0, count)
	for _, b := range buckets {
		folded := false
		for _, m := range merged {
			if m.lab.DistanceLab(b.lab) < mergeDistance {
				m.count += b.count
				folded = true
				break
			}
		}
		if !folded {
			merged = append(merged, b)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].count > merged[j].count })

	if len(merged) > count {
		merged = merged[:count]
	}

	colors := make([]ColorFrequency, 0, len(merged))
	for _, b := range merged {
		p := picker.Pixel{R: b.key.R, G: b.key.G, B: b.key.B, A: 1}
		colors = append(colors, ColorFrequency{
			Percentage: float64(b.count) / float64(total) * 100,
			Pixel:      p,
			Colors:     picker.Convert(p),
		})
	}

	return &DominantColorsResult{Colors: colors}, nil
}
