package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

// AverageResult is the mean color of a region.
type AverageResult struct {
	Region Region                `json:"region"`
	Pixels int                   `json:"pixels"`
	Pixel  picker.Pixel          `json:"pixel"`
	HSL    picker.HSL            `json:"hsl"`
	Colors picker.Representation `json:"colors"`
}

// CompareRegionsResult contains the averages of two regions and the
// difference between them.
type CompareRegionsResult struct {
	Region1    AverageResult          `json:"region1"`
	Region2    AverageResult          `json:"region2"`
	Difference picker.ColorDifference `json:"difference"`
}

// cropRegion returns the part of img inside region, or all of img for a nil
// region. The region must be non-empty and inside the image bounds.
func cropRegion(img image.Image, region *Region) (*image.NRGBA, Region, error) {
	b := img.Bounds()
	if region == nil {
		return imaging.Clone(img), Region{X1: 0, Y1: 0, X2: b.Dx(), Y2: b.Dy()}, nil
	}

	rect := image.Rect(region.X1, region.Y1, region.X2, region.Y2).Add(b.Min)
	if rect.Empty() || !rect.In(b) {
		return nil, Region{}, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			region.X1, region.Y1, region.X2, region.Y2, b.Dx(), b.Dy())
	}
	return imaging.Crop(img, rect), *region, nil
}

// AverageColor returns the mean non-premultiplied color of a region, or of
// the whole image when region is nil.
func AverageColor(img image.Image, region *Region) (*AverageResult, error) {
	src, r, err := cropRegion(img, region)
	if err != nil {
		return nil, err
	}

	var sumR, sumG, sumB, sumA float64
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			sumR += float64(c.R)
			sumG += float64(c.G)
			sumB += float64(c.B)
			sumA += float64(c.A)
		}
	}

	n := b.Dx() * b.Dy()
	if n == 0 {
		return nil, fmt.Errorf("region has no pixels")
	}
	fn := float64(n)
	p := picker.NewPixel(
		int(math.Round(sumR/fn)),
		int(math.Round(sumG/fn)),
		int(math.Round(sumB/fn)),
		sumA/fn/255,
	)

	return &AverageResult{
		Region: r,
		Pixels: n,
		Pixel:  p,
		HSL:    picker.RGBToHSL(p.R, p.G, p.B),
		Colors: picker.Convert(p),
	}, nil
}

// CompareRegions compares the average colors of two regions of an image.
func CompareRegions(img image.Image, r1, r2 Region) (*CompareRegionsResult, error) {
	a1, err := AverageColor(img, &r1)
	if err != nil {
		return nil, fmt.Errorf("region1: %w", err)
	}
	a2, err := AverageColor(img, &r2)
	if err != nil {
		return nil, fmt.Errorf("region2: %w", err)
	}

	return &CompareRegionsResult{
		Region1:    *a1,
		Region2:    *a2,
		Difference: picker.Compare(a1.Pixel, a2.Pixel),
	}, nil
}
