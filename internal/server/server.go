package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ironsheep/color-picker-mcp/internal/clipboard"
	"github.com/ironsheep/color-picker-mcp/internal/config"
	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/session"
)

// Name and Version identify the server in the initialize handshake.
var (
	Name    = "color-picker-mcp"
	Version = "dev"
)

// Server handles MCP protocol communication for one picking session.
type Server struct {
	cfg     config.Config
	log     *slog.Logger
	cache   *imaging.ImageCache
	session *session.Session
	sink    clipboard.Sink
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server. A nil logger discards log output and a nil sink
// falls back to an in-memory clipboard.
func New(cfg config.Config, logger *slog.Logger, sink clipboard.Sink) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sink == nil {
		sink = &clipboard.Memory{}
	}
	return &Server{
		cfg:     cfg,
		log:     logger,
		cache:   imaging.NewImageCache(),
		session: session.New(),
		sink:    sink,
	}
}

// Run reads line-delimited requests from in and writes responses to out
// until in reaches EOF or ctx is cancelled.
//
// On cancellation Run closes in when it is an io.Closer so the reader
// goroutine leaves Scan. A plain io.Reader keeps that goroutine blocked
// until the next line or EOF.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Data URLs can be large.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 32*1024*1024)

	lines := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()

	encoder := json.NewEncoder(out)

	for {
		select {
		case <-ctx.Done():
			if c, ok := in.(io.Closer); ok {
				c.Close()
			}
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("scanner error: %w", err)
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}

			var req MCPRequest
			if err := json.Unmarshal(line, &req); err != nil {
				s.log.Warn("failed to parse request", "err", err)
				continue
			}

			resp := s.handleRequest(&req)
			if resp == nil {
				continue
			}
			if err := encoder.Encode(resp); err != nil {
				s.log.Error("failed to encode response", "method", req.Method, "err", err)
			}
		}
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    Name,
				"version": Version,
			},
		},
	}
}
