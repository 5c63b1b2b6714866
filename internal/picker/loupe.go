package picker

// Viewport is the visible part of a page: its scroll offset and size.
type Viewport struct {
	ScrollX float64 `json:"scroll_x"`
	ScrollY float64 `json:"scroll_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// PlaceLoupe returns the top-left page position for a square magnifier of
// the given size that follows the pointer at page position p.
//
// The loupe sits offset units right of and below the pointer. On an axis
// where that would cross the viewport's far edge, it flips to the other
// side of the pointer instead.
func PlaceLoupe(p Point, view Viewport, size, offset float64) Point {
	left := p.X + offset
	top := p.Y + offset

	if left+size > view.ScrollX+view.Width {
		left = p.X - size - offset
	}
	if top+size > view.ScrollY+view.Height {
		top = p.Y - size - offset
	}
	return Point{X: left, Y: top}
}
