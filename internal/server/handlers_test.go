package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/color-picker-mcp/internal/clipboard"
	"github.com/ironsheep/color-picker-mcp/internal/config"
	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/session"
)

// createPatternImage returns an image with red, green, blue and white
// quadrants (top-left, top-right, bottom-left, bottom-right).
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.NRGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.NRGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.NRGBA{0, 0, 255, 255}
			default:
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createTestImageFile writes img as a PNG in a temp dir and returns its path.
func createTestImageFile(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request through the router.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// callToolResult runs a tool that must succeed and decodes its text payload
// into v.
func callToolResult(t *testing.T, s *Server, name string, args interface{}, v interface{}) {
	t.Helper()

	resp := callTool(t, s, name, args)
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %+v", name, resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	text := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("%s: failed to decode result %q: %v", name, text, err)
	}
}

// expectToolError runs a tool that must fail and returns the error data.
func expectToolError(t *testing.T, s *Server, name string, args interface{}) string {
	t.Helper()

	resp := callTool(t, s, name, args)
	if resp.Error == nil {
		t.Fatalf("%s: expected an error", name)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("%s: error code got %d, want -32000", name, resp.Error.Code)
	}
	data, _ := resp.Error.Data.(string)
	return data
}

func loadPattern(t *testing.T, s *Server) string {
	t.Helper()

	path := createTestImageFile(t, createPatternImage(100, 100))
	var res loadResult
	callToolResult(t, s, "picker_load", map[string]interface{}{"path": path}, &res)
	return path
}

func TestHandleToolsCall_Load(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, createPatternImage(100, 80))

	var res loadResult
	callToolResult(t, s, "picker_load", map[string]interface{}{"path": path}, &res)

	if res.Source != path {
		t.Errorf("Source: got %s, want %s", res.Source, path)
	}
	if res.DisplayWidth != 100 || res.DisplayHeight != 80 || res.Scaled {
		t.Errorf("display: got %dx%d scaled=%v", res.DisplayWidth, res.DisplayHeight, res.Scaled)
	}
	if res.Format != "png" {
		t.Errorf("Format: got %s, want png", res.Format)
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache size: got %d, want 1", s.cache.Len())
	}
}

func TestHandleToolsCall_LoadScalesToDisplayBox(t *testing.T) {
	s := newTestServer()
	img := image.NewNRGBA(image.Rect(0, 0, 1600, 1200))
	path := createTestImageFile(t, img)

	var res loadResult
	callToolResult(t, s, "picker_load", map[string]interface{}{"path": path}, &res)

	if res.OriginalWidth != 1600 || res.OriginalHeight != 1200 {
		t.Errorf("original: got %dx%d", res.OriginalWidth, res.OriginalHeight)
	}
	if res.DisplayWidth != 800 || res.DisplayHeight != 600 || !res.Scaled {
		t.Errorf("display: got %dx%d scaled=%v", res.DisplayWidth, res.DisplayHeight, res.Scaled)
	}
}

func TestHandleToolsCall_LoadErrors(t *testing.T) {
	s := newTestServer()

	expectToolError(t, s, "picker_load", map[string]interface{}{})
	expectToolError(t, s, "picker_load", map[string]interface{}{"path": "/nonexistent/image.png"})

	notImage := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notImage, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	expectToolError(t, s, "picker_load", map[string]interface{}{"path": notImage})

	if s.session.Loaded() {
		t.Error("failed loads must not change the session")
	}
}

func TestHandleToolsCall_LoadData(t *testing.T) {
	s := newTestServer()

	var buf bytes.Buffer
	if err := png.Encode(&buf, createPatternImage(4, 4)); err != nil {
		t.Fatal(err)
	}
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	var res loadResult
	callToolResult(t, s, "picker_load_data", map[string]interface{}{"data_url": url}, &res)
	if res.Source != "data-url" || res.DisplayWidth != 4 {
		t.Errorf("got %+v", res)
	}

	expectToolError(t, s, "picker_load_data", map[string]interface{}{"data_url": "data:text/plain;base64,aGk="})
}

func TestHandleToolsCall_Info(t *testing.T) {
	s := newTestServer()

	var before infoResult
	callToolResult(t, s, "picker_info", nil, &before)
	if before.Loaded || before.Image != nil || before.HasPick {
		t.Errorf("empty session: got %+v", before)
	}
	if before.LastPick.Colors.Hex != "#000000" {
		t.Errorf("default pick: got %s", before.LastPick.Colors.Hex)
	}

	loadPattern(t, s)

	var after infoResult
	callToolResult(t, s, "picker_info", map[string]interface{}{}, &after)
	if !after.Loaded || after.Image == nil || after.Image.DisplayWidth != 100 {
		t.Errorf("loaded session: got %+v", after)
	}
}

func TestHandleToolsCall_Pick(t *testing.T) {
	s := newTestServer()
	loadPattern(t, s)

	// Displayed at 2x, offset by (10, 10).
	rect := map[string]interface{}{"left": 10, "top": 10, "width": 200, "height": 200}

	var pick session.Pick
	callToolResult(t, s, "picker_pick", map[string]interface{}{
		"pointer_x": 160,
		"pointer_y": 30,
		"rect":      rect,
	}, &pick)

	if pick.X != 75 || pick.Y != 10 {
		t.Errorf("coordinates: got (%d,%d), want (75,10)", pick.X, pick.Y)
	}
	if pick.Colors.Hex != "#00ff00" || pick.Colors.HSL != "hsl(120, 100%, 50%)" {
		t.Errorf("colors: got %+v", pick.Colors)
	}

	// Outside the rectangle clamps to the bottom-right pixel.
	callToolResult(t, s, "picker_pick", map[string]interface{}{
		"pointer_x": 5000,
		"pointer_y": 5000,
		"rect":      rect,
	}, &pick)
	if pick.X != 99 || pick.Y != 99 || pick.Colors.Hex != "#ffffff" {
		t.Errorf("clamped pick: got (%d,%d) %s", pick.X, pick.Y, pick.Colors.Hex)
	}
}

func TestHandleToolsCall_PickErrors(t *testing.T) {
	s := newTestServer()

	data := expectToolError(t, s, "picker_pick", map[string]interface{}{"pointer_x": 1, "pointer_y": 1})
	if !strings.Contains(data, "no image loaded") {
		t.Errorf("no image: got %q", data)
	}

	loadPattern(t, s)

	data = expectToolError(t, s, "picker_pick", map[string]interface{}{"pointer_x": 1})
	if !strings.Contains(data, "pointer_y") {
		t.Errorf("missing pointer: got %q", data)
	}

	data = expectToolError(t, s, "picker_pick", map[string]interface{}{
		"pointer_x": 1,
		"pointer_y": 1,
		"rect":      map[string]interface{}{"left": 0, "top": 0, "width": 0, "height": 100},
	})
	if !strings.Contains(data, "display geometry unavailable") {
		t.Errorf("degenerate rect: got %q", data)
	}
	if s.session.HasPick() {
		t.Error("failed picks must not be recorded")
	}
}

func TestHandleToolsCall_MapPointer(t *testing.T) {
	s := newTestServer()
	loadPattern(t, s)

	var res map[string]int
	callToolResult(t, s, "picker_map_pointer", map[string]interface{}{
		"pointer_x": 24.9,
		"pointer_y": 74.2,
		"rect":      map[string]interface{}{"left": 0, "top": 0, "width": 50, "height": 100},
	}, &res)

	if res["x"] != 49 || res["y"] != 74 {
		t.Errorf("got %v, want x=49 y=74", res)
	}
	if s.session.HasPick() {
		t.Error("mapping must not record a pick")
	}
}

func TestHandleToolsCall_SampleAndCopy(t *testing.T) {
	mem := &clipboard.Memory{}
	s := New(config.Default(), nil, mem)
	loadPattern(t, s)

	var pick session.Pick
	callToolResult(t, s, "picker_sample", map[string]interface{}{"x": 10, "y": 90}, &pick)
	if pick.Colors.Hex != "#0000ff" || pick.Position != "Position: (10, 90)" {
		t.Errorf("sample: got %+v", pick)
	}

	var res copyResult
	callToolResult(t, s, "picker_copy", map[string]interface{}{"format": "hsl"}, &res)
	if res.Text != "hsl(240, 100%, 50%)" {
		t.Errorf("copied: got %q", res.Text)
	}
	if mem.Text() != res.Text {
		t.Errorf("clipboard: got %q, want %q", mem.Text(), res.Text)
	}

	expectToolError(t, s, "picker_copy", map[string]interface{}{"format": "cmyk"})
	expectToolError(t, s, "picker_sample", map[string]interface{}{"x": 100, "y": 0})
}

func TestHandleToolsCall_CopyDefaultPick(t *testing.T) {
	mem := &clipboard.Memory{}
	s := New(config.Default(), nil, mem)

	var res copyResult
	callToolResult(t, s, "picker_copy", map[string]interface{}{"format": "rgba"}, &res)
	if res.Text != "rgba(0, 0, 0, 1.00)" {
		t.Errorf("got %q", res.Text)
	}
}

func TestHandleToolsCall_SampleMulti(t *testing.T) {
	s := newTestServer()
	loadPattern(t, s)

	var res imaging.MultiColorResult
	callToolResult(t, s, "picker_sample_multi", map[string]interface{}{
		"points": []map[string]interface{}{
			{"x": 0, "y": 0, "label": "top-left"},
			{"x": 99, "y": 99},
		},
	}, &res)

	if len(res.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(res.Samples))
	}
	if res.Samples[0].Label != "top-left" || res.Samples[0].Colors.Hex != "#ff0000" {
		t.Errorf("first sample: got %+v", res.Samples[0])
	}
	if res.Samples[1].Colors.Hex != "#ffffff" {
		t.Errorf("second sample: got %+v", res.Samples[1])
	}
	if s.session.HasPick() {
		t.Error("multi-sampling must not record a pick")
	}

	expectToolError(t, s, "picker_sample_multi", map[string]interface{}{"points": []interface{}{}})
}

func TestHandleToolsCall_Magnify(t *testing.T) {
	s := newTestServer()
	loadPattern(t, s)

	var res struct {
		imaging.MagnifierResult
		Loupe *struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"loupe"`
	}
	callToolResult(t, s, "picker_magnify", map[string]interface{}{
		"pointer_x": 50,
		"pointer_y": 50,
		"viewport":  map[string]interface{}{"width": 1000, "height": 800},
	}, &res)

	if res.Width != 150 || res.Height != 150 {
		t.Errorf("size: got %dx%d, want 150x150", res.Width, res.Height)
	}
	if res.SourceX != 35 || res.SourceY != 35 || res.SourceSize != 30 {
		t.Errorf("source: got (%d,%d) size %d", res.SourceX, res.SourceY, res.SourceSize)
	}
	if res.ImageBase64 == "" || res.MimeType != "image/png" {
		t.Error("magnifier should return a base64 PNG")
	}
	if res.Loupe == nil || res.Loupe.X != 70 || res.Loupe.Y != 70 {
		t.Errorf("loupe: got %+v, want (70,70)", res.Loupe)
	}

	// Explicit size and zoom override the config.
	callToolResult(t, s, "picker_magnify", map[string]interface{}{
		"pointer_x": 0,
		"pointer_y": 0,
		"size":      40,
		"zoom":      4,
	}, &res)
	if res.Width != 40 || res.SourceSize != 10 || res.SourceX != -5 {
		t.Errorf("custom magnifier: got width %d source %d at %d", res.Width, res.SourceSize, res.SourceX)
	}

	data := expectToolError(t, s, "picker_magnify", map[string]interface{}{
		"pointer_x": 1,
		"pointer_y": 1,
		"size":      20000,
		"zoom":      20000,
	})
	if !strings.Contains(data, "exceeds maximum") {
		t.Errorf("oversized magnifier error: got %q", data)
	}
}

func TestHandleToolsCall_Convert(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name     string
		args     map[string]interface{}
		wantRGBA string
		wantHSL  string
	}{
		{
			"channels with alpha",
			map[string]interface{}{"r": 128, "g": 0, "b": 128, "a": 0.5},
			"rgba(128, 0, 128, 0.50)",
			"hsl(300, 100%, 25%)",
		},
		{
			"default alpha",
			map[string]interface{}{"r": 255, "g": 200, "b": 200},
			"rgba(255, 200, 200, 1.00)",
			"hsl(0, 100%, 89%)",
		},
		{
			"out of range channels clamp",
			map[string]interface{}{"r": 300, "g": -5, "b": 0, "a": 2},
			"rgba(255, 0, 0, 1.00)",
			"hsl(0, 100%, 50%)",
		},
		{
			"hex",
			map[string]interface{}{"hex": "#556b2f"},
			"rgba(85, 107, 47, 1.00)",
			"hsl(82, 39%, 30%)",
		},
		{
			"hex wins over channels",
			map[string]interface{}{"hex": "fff", "r": 0, "g": 0, "b": 0},
			"rgba(255, 255, 255, 1.00)",
			"hsl(0, 0%, 100%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res convertResult
			callToolResult(t, s, "picker_convert", tt.args, &res)
			if res.Colors.RGBA != tt.wantRGBA {
				t.Errorf("RGBA: got %s, want %s", res.Colors.RGBA, tt.wantRGBA)
			}
			if res.Colors.HSL != tt.wantHSL {
				t.Errorf("HSL: got %s, want %s", res.Colors.HSL, tt.wantHSL)
			}
		})
	}

	expectToolError(t, s, "picker_convert", map[string]interface{}{"r": 1, "g": 2})
	expectToolError(t, s, "picker_convert", map[string]interface{}{"hex": "#12345"})
}

func TestHandleToolsCall_Palette(t *testing.T) {
	s := newTestServer()
	expectToolError(t, s, "picker_palette", nil)

	loadPattern(t, s)

	var res imaging.DominantColorsResult
	callToolResult(t, s, "picker_palette", nil, &res)
	if len(res.Colors) != 4 {
		t.Fatalf("got %d colors, want 4", len(res.Colors))
	}
	for _, c := range res.Colors {
		if c.Percentage != 25 {
			t.Errorf("%s: got %.2f%%, want 25%%", c.Colors.Hex, c.Percentage)
		}
	}

	callToolResult(t, s, "picker_palette", map[string]interface{}{
		"count":  3,
		"region": map[string]interface{}{"x1": 0, "y1": 0, "x2": 50, "y2": 50},
	}, &res)
	if len(res.Colors) != 1 || res.Colors[0].Colors.Hex != "#f00000" {
		t.Errorf("region palette: got %+v", res.Colors)
	}
}

func TestHandleToolsCall_Reset(t *testing.T) {
	s := newTestServer()
	loadPattern(t, s)
	callToolResult(t, s, "picker_sample", map[string]interface{}{"x": 0, "y": 0}, &session.Pick{})

	var res struct {
		Reset    bool         `json:"reset"`
		LastPick session.Pick `json:"last_pick"`
	}
	callToolResult(t, s, "picker_reset", nil, &res)

	if !res.Reset || res.LastPick.Colors.Hex != "#000000" {
		t.Errorf("got %+v", res)
	}
	if s.session.Loaded() {
		t.Error("reset should unload the image")
	}
	expectToolError(t, s, "picker_sample", map[string]interface{}{"x": 0, "y": 0})
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer()
	data := expectToolError(t, s, "image_crop", map[string]interface{}{})
	if !strings.Contains(data, "unknown tool") {
		t.Errorf("got %q", data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}

func TestHandleToolsCall_BadArguments(t *testing.T) {
	s := newTestServer()
	data := expectToolError(t, s, "picker_sample", map[string]interface{}{"x": "left"})
	if !strings.Contains(data, "invalid arguments") {
		t.Errorf("got %q", data)
	}
}

func TestHandleToolsCall_Average(t *testing.T) {
	s := newTestServer()
	expectToolError(t, s, "picker_average", nil)

	loadPattern(t, s)

	var res imaging.AverageResult
	callToolResult(t, s, "picker_average", map[string]interface{}{
		"region": map[string]interface{}{"x1": 50, "y1": 0, "x2": 100, "y2": 50},
	}, &res)
	if res.Colors.Hex != "#00ff00" || res.Pixels != 2500 {
		t.Errorf("got %s over %d pixels", res.Colors.Hex, res.Pixels)
	}

	callToolResult(t, s, "picker_average", nil, &res)
	if res.Colors.Hex != "#808080" {
		t.Errorf("whole image: got %s, want #808080", res.Colors.Hex)
	}
}

func TestHandleToolsCall_Compare(t *testing.T) {
	s := newTestServer()

	var res compareResult
	callToolResult(t, s, "picker_compare", map[string]interface{}{"a": "#ffffff", "b": "#000"}, &res)
	if res.Difference.ContrastRatio != 21 {
		t.Errorf("contrast: got %v, want 21", res.Difference.ContrastRatio)
	}

	// b defaults to the last pick, black before anything is picked.
	callToolResult(t, s, "picker_compare", map[string]interface{}{"a": "#ff0000"}, &res)
	if res.B.Hex != "#000000" {
		t.Errorf("default b: got %s", res.B.Hex)
	}

	loadPattern(t, s)
	callToolResult(t, s, "picker_sample", map[string]interface{}{"x": 0, "y": 0}, &session.Pick{})
	callToolResult(t, s, "picker_compare", map[string]interface{}{"a": "#ff0000"}, &res)
	if !res.Difference.Identical {
		t.Errorf("compared with red pick: got %+v", res.Difference)
	}

	expectToolError(t, s, "picker_compare", map[string]interface{}{"a": "red"})
	expectToolError(t, s, "picker_compare", map[string]interface{}{"a": "#fff", "b": "#12"})
}

func TestHandleToolsCall_CompareRegions(t *testing.T) {
	s := newTestServer()
	loadPattern(t, s)

	var res imaging.CompareRegionsResult
	callToolResult(t, s, "picker_compare_regions", map[string]interface{}{
		"region1": map[string]interface{}{"x1": 0, "y1": 0, "x2": 50, "y2": 50},
		"region2": map[string]interface{}{"x1": 50, "y1": 50, "x2": 100, "y2": 100},
	}, &res)
	if res.Region1.Colors.Hex != "#ff0000" || res.Region2.Colors.Hex != "#ffffff" {
		t.Errorf("averages: got %s and %s", res.Region1.Colors.Hex, res.Region2.Colors.Hex)
	}
	if res.Difference.ContrastRatio != 4 {
		t.Errorf("contrast: got %v, want 4", res.Difference.ContrastRatio)
	}

	expectToolError(t, s, "picker_compare_regions", map[string]interface{}{
		"region1": map[string]interface{}{"x1": 0, "y1": 0, "x2": 50, "y2": 50},
	})
}
