package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// rectSchema describes the on-screen rectangle the image is displayed in.
var rectSchema = map[string]interface{}{
	"type":        "object",
	"description": "Displayed image rectangle in viewport units. Omit when the pointer is already in display buffer pixels.",
	"properties": map[string]interface{}{
		"left":   map[string]interface{}{"type": "number"},
		"top":    map[string]interface{}{"type": "number"},
		"width":  map[string]interface{}{"type": "number"},
		"height": map[string]interface{}{"type": "number"},
	},
	"required": []string{"left", "top", "width", "height"},
}

// pointerProperties returns the pointer_x/pointer_y/rect schema shared by
// the pointer-driven tools, plus any extra properties.
func pointerProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"pointer_x": map[string]interface{}{
			"type":        "number",
			"description": "Pointer X in viewport units",
		},
		"pointer_y": map[string]interface{}{
			"type":        "number",
			"description": "Pointer Y in viewport units",
		},
		"rect": rectSchema,
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// regionSchema describes a rectangle in display buffer pixels.
func regionSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

var emptySchema = map[string]interface{}{
	"type":       "object",
	"properties": map[string]interface{}{},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Loading
		{
			Name:        "picker_load",
			Description: "Load an image file into the picker. Large images are scaled to fit the display box; picks sample the scaled buffer.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "picker_load_data",
			Description: "Load an image from a base64 data URL, as produced by pasting or dropping an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data_url": map[string]interface{}{
						"type":        "string",
						"description": "data:image/<type>;base64,<payload>",
					},
				},
				"required": []string{"data_url"},
			},
		},
		{
			Name:        "picker_info",
			Description: "Describe the current session: loaded image, display size and last pick.",
			InputSchema: emptySchema,
		},

		// Picking
		{
			Name:        "picker_map_pointer",
			Description: "Map a pointer position over the displayed image to display buffer pixel coordinates without sampling.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pointerProperties(nil),
				"required":   []string{"pointer_x", "pointer_y"},
			},
		},
		{
			Name:        "picker_pick",
			Description: "Pick the color under the pointer and return it as HEX, RGB, RGBA, HSL and HSLA. Pointers outside the image clamp to the nearest edge pixel.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pointerProperties(nil),
				"required":   []string{"pointer_x", "pointer_y"},
			},
		},
		{
			Name:        "picker_sample",
			Description: "Pick the color at display buffer pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "picker_sample_multi",
			Description: "Sample several display buffer coordinates at once. Does not change the last pick.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "picker_magnify",
			Description: "Return a zoomed PNG preview of the pixels under the pointer. With a viewport, also return where the loupe should be drawn.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": pointerProperties(map[string]interface{}{
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Preview width and height in pixels. Default from server config (150)",
					},
					"zoom": map[string]interface{}{
						"type":        "integer",
						"description": "Magnification factor. Default from server config (5)",
					},
					"viewport": map[string]interface{}{
						"type":        "object",
						"description": "Visible page area, used to keep the loupe on screen",
						"properties": map[string]interface{}{
							"scroll_x": map[string]interface{}{"type": "number"},
							"scroll_y": map[string]interface{}{"type": "number"},
							"width":    map[string]interface{}{"type": "number"},
							"height":   map[string]interface{}{"type": "number"},
						},
						"required": []string{"width", "height"},
					},
				}),
				"required": []string{"pointer_x", "pointer_y"},
			},
		},

		// Colors
		{
			Name:        "picker_convert",
			Description: "Convert a color given as r/g/b[/a] or hex into all output formats. Does not need an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"r": map[string]interface{}{"type": "integer", "description": "Red 0-255"},
					"g": map[string]interface{}{"type": "integer", "description": "Green 0-255"},
					"b": map[string]interface{}{"type": "integer", "description": "Blue 0-255"},
					"a": map[string]interface{}{"type": "number", "description": "Alpha 0-1. Default 1"},
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "#rgb, #rrggbb or #rrggbbaa. Takes precedence over r/g/b",
					},
				},
			},
		},
		{
			Name:        "picker_copy",
			Description: "Copy one format of the last picked color to the clipboard and return the copied text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": map[string]interface{}{
						"type": "string",
						"enum": []string{"hex", "rgb", "rgba", "hsl", "hsla"},
					},
				},
				"required": []string{"format"},
			},
		},
		{
			Name:        "picker_palette",
			Description: "Extract the dominant colors of the loaded image or a region of it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors. Default from server config (5)",
					},
					"region": regionSchema("Optional region in display buffer pixels; (x2, y2) is exclusive"),
				},
			},
		},
		{
			Name:        "picker_average",
			Description: "Average color of the loaded image or a region of it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region": regionSchema("Optional region in display buffer pixels; (x2, y2) is exclusive"),
				},
			},
		},
		{
			Name:        "picker_compare",
			Description: "Compare two colors: CIE76 and CIEDE2000 difference plus WCAG contrast ratio. Without b, compares against the last pick.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": map[string]interface{}{"type": "string", "description": "First color as hex"},
					"b": map[string]interface{}{"type": "string", "description": "Second color as hex. Default: last pick"},
				},
				"required": []string{"a"},
			},
		},
		{
			Name:        "picker_compare_regions",
			Description: "Compare the average colors of two regions of the loaded image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region1": regionSchema("First region in display buffer pixels"),
					"region2": regionSchema("Second region in display buffer pixels"),
				},
				"required": []string{"region1", "region2"},
			},
		},
		{
			Name:        "picker_reset",
			Description: "Unload the image and reset the picked color to black.",
			InputSchema: emptySchema,
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
