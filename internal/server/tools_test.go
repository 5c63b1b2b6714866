package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"picker_load",
		"picker_load_data",
		"picker_info",
		"picker_map_pointer",
		"picker_pick",
		"picker_sample",
		"picker_sample_multi",
		"picker_magnify",
		"picker_convert",
		"picker_copy",
		"picker_palette",
		"picker_average",
		"picker_compare",
		"picker_compare_regions",
		"picker_reset",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be declared.
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_PointerTools(t *testing.T) {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range []string{"picker_map_pointer", "picker_pick", "picker_magnify"} {
		t.Run(name, func(t *testing.T) {
			props := toolMap[name].InputSchema["properties"].(map[string]interface{})
			for _, p := range []string{"pointer_x", "pointer_y", "rect"} {
				if _, ok := props[p]; !ok {
					t.Errorf("missing property %s", p)
				}
			}

			required := toolMap[name].InputSchema["required"].([]string)
			for _, r := range required {
				if r == "rect" {
					t.Error("rect should be optional")
				}
			}
		})
	}
}

func TestToolDefinitions_CopyFormats(t *testing.T) {
	var tool Tool
	for _, tt := range GetToolDefinitions() {
		if tt.Name == "picker_copy" {
			tool = tt
		}
	}

	props := tool.InputSchema["properties"].(map[string]interface{})
	enum, ok := props["format"].(map[string]interface{})["enum"].([]string)
	if !ok {
		t.Fatal("format should have enum")
	}

	want := map[string]bool{"hex": true, "rgb": true, "rgba": true, "hsl": true, "hsla": true}
	if len(enum) != len(want) {
		t.Errorf("enum: got %v", enum)
	}
	for _, e := range enum {
		if !want[e] {
			t.Errorf("unexpected format %q", e)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
