// Package server implements the MCP (Model Context Protocol) server for the
// color picker.
//
// The server speaks JSON-RPC 2.0 over line-delimited streams, normally
// stdin and stdout:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Tools
//
// Loading:
//   - picker_load: Load an image file
//   - picker_load_data: Load an image from a data URL (paste or drop)
//   - picker_info: Current image and last pick
//
// Picking:
//   - picker_map_pointer: Pointer position to buffer coordinates
//   - picker_pick: Pick the color under the pointer
//   - picker_sample: Pick the color at buffer coordinates
//   - picker_sample_multi: Sample several coordinates
//   - picker_magnify: Zoomed preview and loupe placement
//
// Colors:
//   - picker_convert: Format a color given as channels or hex
//   - picker_copy: Copy one format of the last pick to the clipboard
//   - picker_palette: Dominant colors of the loaded image
//   - picker_average: Average color of the image or a region
//   - picker_compare: Color difference and contrast ratio
//   - picker_compare_regions: Compare the average colors of two regions
//   - picker_reset: Unload the image and reset the pick to black
//
// # State
//
// A Server owns one picking session. Loading an image replaces the current
// one and resets the last pick. Decoded files are cached by path for the
// lifetime of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger, sink)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
