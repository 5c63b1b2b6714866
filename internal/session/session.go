// Package session holds the state of one picking session: the image that is
// currently loaded and the most recent pick.
//
// A Session is owned by a single caller (the MCP server loop or a CLI
// command) and is not safe for concurrent use.
package session

import (
	"errors"
	"fmt"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

// ErrNoImage is returned by operations that need a loaded image.
var ErrNoImage = errors.New("no image loaded")

// Pick is one sampled pixel and everything derived from it.
type Pick struct {
	X        int                   `json:"x"`
	Y        int                   `json:"y"`
	Position string                `json:"position"`
	Pixel    picker.Pixel          `json:"pixel"`
	HSL      picker.HSL            `json:"hsl"`
	Colors   picker.Representation `json:"colors"`
}

// DefaultPick is the value shown before anything has been picked.
func DefaultPick() Pick {
	p := picker.Pixel{A: 1}
	return Pick{
		Position: "Click on the image to pick a color",
		Pixel:    p,
		HSL:      picker.RGBToHSL(p.R, p.G, p.B),
		Colors:   picker.Convert(p),
	}
}

// Session is the explicit replacement for a page's "current image" globals.
type Session struct {
	buf    *imaging.Buffer
	source string
	last   Pick
	picked bool
}

// New returns an empty session.
func New() *Session {
	return &Session{last: DefaultPick()}
}

// Load makes buf the current image, replacing any previous one. The last
// pick is reset.
func (s *Session) Load(buf *imaging.Buffer, source string) {
	s.buf = buf
	s.source = source
	s.last = DefaultPick()
	s.picked = false
}

// Reset drops the current image and the last pick.
func (s *Session) Reset() {
	s.buf = nil
	s.source = ""
	s.last = DefaultPick()
	s.picked = false
}

// Loaded reports whether an image is loaded.
func (s *Session) Loaded() bool {
	return s.buf != nil
}

// Buffer returns the current image buffer or ErrNoImage.
func (s *Session) Buffer() (*imaging.Buffer, error) {
	if s.buf == nil {
		return nil, ErrNoImage
	}
	return s.buf, nil
}

// Source returns the label the current image was loaded from.
func (s *Session) Source() string {
	return s.source
}

// Last returns the most recent pick, or DefaultPick if there is none.
func (s *Session) Last() Pick {
	return s.last
}

// HasPick reports whether anything has been picked since the last load.
func (s *Session) HasPick() bool {
	return s.picked
}

// Locate maps a pointer position to buffer coordinates. A nil rect means
// the buffer is displayed at its own size at the origin.
func (s *Session) Locate(p picker.Point, r *picker.Rect) (int, int, error) {
	buf, err := s.Buffer()
	if err != nil {
		return 0, 0, err
	}

	size := buf.Size()
	rect := picker.IdentityRect(size)
	if r != nil {
		rect = *r
	}
	return picker.MapPointer(p, rect, size)
}

// Pick maps a pointer position, samples the pixel under it and records the
// result as the last pick.
func (s *Session) Pick(p picker.Point, r *picker.Rect) (*Pick, error) {
	x, y, err := s.Locate(p, r)
	if err != nil {
		return nil, err
	}
	return s.PickAt(x, y)
}

// PickAt samples the pixel at buffer coordinates (x, y) and records it.
func (s *Session) PickAt(x, y int) (*Pick, error) {
	buf, err := s.Buffer()
	if err != nil {
		return nil, err
	}

	res, err := imaging.SampleColor(buf.Pixels, x, y)
	if err != nil {
		return nil, err
	}

	pick := Pick{
		X:        res.X,
		Y:        res.Y,
		Position: fmt.Sprintf("Position: (%d, %d)", res.X, res.Y),
		Pixel:    res.Pixel,
		HSL:      res.HSL,
		Colors:   res.Colors,
	}
	s.last = pick
	s.picked = true
	return &pick, nil
}

// Hover returns the magnified preview under the pointer without changing
// the last pick.
func (s *Session) Hover(p picker.Point, r *picker.Rect, size, zoom int) (*imaging.MagnifierResult, error) {
	x, y, err := s.Locate(p, r)
	if err != nil {
		return nil, err
	}
	return imaging.Magnify(s.buf.Pixels, x, y, size, zoom)
}
