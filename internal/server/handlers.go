package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/color-picker-mcp/internal/clipboard"
	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/picker"
	"github.com/ironsheep/color-picker-mcp/internal/session"
)

// loupeOffset is the gap between the pointer and the loupe, in viewport units.
const loupeOffset = 20

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "picker_load", "picker_pick").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Info("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Loading
	case "picker_load":
		return s.handlePickerLoad(args)
	case "picker_load_data":
		return s.handlePickerLoadData(args)
	case "picker_info":
		return s.handlePickerInfo()

	// Picking
	case "picker_map_pointer":
		return s.handlePickerMapPointer(args)
	case "picker_pick":
		return s.handlePickerPick(args)
	case "picker_sample":
		return s.handlePickerSample(args)
	case "picker_sample_multi":
		return s.handlePickerSampleMulti(args)
	case "picker_magnify":
		return s.handlePickerMagnify(args)

	// Colors
	case "picker_convert":
		return s.handlePickerConvert(args)
	case "picker_copy":
		return s.handlePickerCopy(args)
	case "picker_palette":
		return s.handlePickerPalette(args)
	case "picker_average":
		return s.handlePickerAverage(args)
	case "picker_compare":
		return s.handlePickerCompare(args)
	case "picker_compare_regions":
		return s.handlePickerCompareRegions(args)
	case "picker_reset":
		return s.handlePickerReset()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as an
// empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Loading Handlers ===

type loadResult struct {
	Source string `json:"source"`
	imaging.BufferInfo
}

type pickerLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePickerLoad(args json.RawMessage) (interface{}, error) {
	var a pickerLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	dec, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.loadDecoded(dec, a.Path), nil
}

type pickerLoadDataArgs struct {
	DataURL string `json:"data_url"`
}

func (s *Server) handlePickerLoadData(args json.RawMessage) (interface{}, error) {
	var a pickerLoadDataArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	dec, err := imaging.DecodeDataURL(a.DataURL)
	if err != nil {
		return nil, err
	}
	return s.loadDecoded(dec, "data-url"), nil
}

// loadDecoded fits dec into the display box and makes it the session image.
func (s *Server) loadDecoded(dec *imaging.Decoded, source string) *loadResult {
	buf := imaging.NewBuffer(dec, s.cfg.MaxDisplayWidth, s.cfg.MaxDisplayHeight)
	s.session.Load(buf, source)

	info := buf.Info()
	s.log.Info("image loaded",
		"source", source,
		"format", info.Format,
		"original", fmt.Sprintf("%dx%d", info.OriginalWidth, info.OriginalHeight),
		"display", fmt.Sprintf("%dx%d", info.DisplayWidth, info.DisplayHeight))

	return &loadResult{Source: source, BufferInfo: info}
}

type infoResult struct {
	Loaded    bool                `json:"loaded"`
	Source    string              `json:"source,omitempty"`
	Image     *imaging.BufferInfo `json:"image,omitempty"`
	HasPick   bool                `json:"has_pick"`
	LastPick  session.Pick        `json:"last_pick"`
	CacheSize int                 `json:"cache_size"`
}

func (s *Server) handlePickerInfo() (interface{}, error) {
	res := &infoResult{
		Loaded:    s.session.Loaded(),
		Source:    s.session.Source(),
		HasPick:   s.session.HasPick(),
		LastPick:  s.session.Last(),
		CacheSize: s.cache.Len(),
	}
	if buf, err := s.session.Buffer(); err == nil {
		info := buf.Info()
		res.Image = &info
	}
	return res, nil
}

// === Picking Handlers ===

type pointerArgs struct {
	PointerX *float64     `json:"pointer_x"`
	PointerY *float64     `json:"pointer_y"`
	Rect     *picker.Rect `json:"rect"`
}

func (a pointerArgs) point() (picker.Point, error) {
	if a.PointerX == nil || a.PointerY == nil {
		return picker.Point{}, errors.New("pointer_x and pointer_y are required")
	}
	return picker.Point{X: *a.PointerX, Y: *a.PointerY}, nil
}

func (s *Server) handlePickerMapPointer(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := a.point()
	if err != nil {
		return nil, err
	}
	x, y, err := s.session.Locate(p, a.Rect)
	if err != nil {
		return nil, err
	}
	return map[string]int{"x": x, "y": y}, nil
}

func (s *Server) handlePickerPick(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := a.point()
	if err != nil {
		return nil, err
	}
	return s.session.Pick(p, a.Rect)
}

type pickerSampleArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handlePickerSample(args json.RawMessage) (interface{}, error) {
	var a pickerSampleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.session.PickAt(a.X, a.Y)
}

type pickerSampleMultiArgs struct {
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label"`
	} `json:"points"`
}

func (s *Server) handlePickerSampleMulti(args json.RawMessage) (interface{}, error) {
	var a pickerSampleMultiArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, errors.New("points must not be empty")
	}
	buf, err := s.session.Buffer()
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SampleColorsMulti(buf.Pixels, points)
}

type pickerMagnifyArgs struct {
	pointerArgs
	Size     int              `json:"size"`
	Zoom     int              `json:"zoom"`
	Viewport *picker.Viewport `json:"viewport"`
}

type magnifyResult struct {
	*imaging.MagnifierResult

	// Loupe is the page position of the loupe's top-left corner, present
	// when a viewport was given.
	Loupe *picker.Point `json:"loupe,omitempty"`
}

func (s *Server) handlePickerMagnify(args json.RawMessage) (interface{}, error) {
	var a pickerMagnifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := a.point()
	if err != nil {
		return nil, err
	}
	if a.Size == 0 {
		a.Size = s.cfg.MagnifierSize
	}
	if a.Zoom == 0 {
		a.Zoom = s.cfg.MagnifierZoom
	}

	mag, err := s.session.Hover(p, a.Rect, a.Size, a.Zoom)
	if err != nil {
		return nil, err
	}

	res := &magnifyResult{MagnifierResult: mag}
	if a.Viewport != nil {
		page := picker.Point{X: p.X + a.Viewport.ScrollX, Y: p.Y + a.Viewport.ScrollY}
		loupe := picker.PlaceLoupe(page, *a.Viewport, float64(a.Size), loupeOffset)
		res.Loupe = &loupe
	}
	return res, nil
}

// === Color Handlers ===

type pickerConvertArgs struct {
	R   *int     `json:"r"`
	G   *int     `json:"g"`
	B   *int     `json:"b"`
	A   *float64 `json:"a"`
	Hex string   `json:"hex"`
}

type convertResult struct {
	Pixel  picker.Pixel          `json:"pixel"`
	HSL    picker.HSL            `json:"hsl"`
	Colors picker.Representation `json:"colors"`
}

func (s *Server) handlePickerConvert(args json.RawMessage) (interface{}, error) {
	var a pickerConvertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var p picker.Pixel
	switch {
	case a.Hex != "":
		var err error
		if p, err = picker.ParseHex(a.Hex); err != nil {
			return nil, err
		}
	case a.R != nil && a.G != nil && a.B != nil:
		alpha := 1.0
		if a.A != nil {
			alpha = *a.A
		}
		p = picker.NewPixel(*a.R, *a.G, *a.B, alpha)
	default:
		return nil, errors.New("either hex or all of r, g, b are required")
	}

	return &convertResult{
		Pixel:  p,
		HSL:    picker.RGBToHSL(p.R, p.G, p.B),
		Colors: picker.Convert(p),
	}, nil
}

type pickerCopyArgs struct {
	Format string `json:"format"`
}

type copyResult struct {
	Format string `json:"format"`
	Text   string `json:"text"`
}

func (s *Server) handlePickerCopy(args json.RawMessage) (interface{}, error) {
	var a pickerCopyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	text, err := clipboard.Copy(s.sink, s.session.Last().Colors, a.Format)
	if err != nil {
		return nil, err
	}
	s.log.Debug("copied color", "format", a.Format, "text", text)
	return &copyResult{Format: a.Format, Text: text}, nil
}

type pickerPaletteArgs struct {
	Count  int             `json:"count"`
	Region *imaging.Region `json:"region"`
}

func (s *Server) handlePickerPalette(args json.RawMessage) (interface{}, error) {
	var a pickerPaletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = s.cfg.PaletteCount
	}
	buf, err := s.session.Buffer()
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(buf.Pixels, a.Count, a.Region)
}

type pickerAverageArgs struct {
	Region *imaging.Region `json:"region"`
}

func (s *Server) handlePickerAverage(args json.RawMessage) (interface{}, error) {
	var a pickerAverageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.session.Buffer()
	if err != nil {
		return nil, err
	}
	return imaging.AverageColor(buf.Pixels, a.Region)
}

type pickerCompareArgs struct {
	A string `json:"a"`
	B string `json:"b"`
}

type compareResult struct {
	A          picker.Representation  `json:"a"`
	B          picker.Representation  `json:"b"`
	Difference picker.ColorDifference `json:"difference"`
}

func (s *Server) handlePickerCompare(args json.RawMessage) (interface{}, error) {
	var a pickerCompareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	pa, err := picker.ParseHex(a.A)
	if err != nil {
		return nil, fmt.Errorf("a: %w", err)
	}

	// Without b, compare against the last pick.
	pb := s.session.Last().Pixel
	if a.B != "" {
		if pb, err = picker.ParseHex(a.B); err != nil {
			return nil, fmt.Errorf("b: %w", err)
		}
	}

	return &compareResult{
		A:          picker.Convert(pa),
		B:          picker.Convert(pb),
		Difference: picker.Compare(pa, pb),
	}, nil
}

type pickerCompareRegionsArgs struct {
	Region1 *imaging.Region `json:"region1"`
	Region2 *imaging.Region `json:"region2"`
}

func (s *Server) handlePickerCompareRegions(args json.RawMessage) (interface{}, error) {
	var a pickerCompareRegionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Region1 == nil || a.Region2 == nil {
		return nil, errors.New("region1 and region2 are required")
	}
	buf, err := s.session.Buffer()
	if err != nil {
		return nil, err
	}
	return imaging.CompareRegions(buf.Pixels, *a.Region1, *a.Region2)
}

func (s *Server) handlePickerReset() (interface{}, error) {
	s.session.Reset()
	return map[string]interface{}{
		"reset":     true,
		"last_pick": s.session.Last(),
	}, nil
}
