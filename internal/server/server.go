package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/avatar-tools-mcp/internal/imaging"
	"github.com/ironsheep/avatar-tools-mcp/internal/profile"
)

// maxRequestBytes bounds a single JSON-RPC line. data: URL sources travel
// inline, so this is sized for whole images rather than small commands.
const maxRequestBytes = 96 << 20

// Server handles MCP protocol communication
type Server struct {
	loader   *imaging.Loader
	cropper  *imaging.Cropper
	profiles *profile.Service
	logger   *zap.Logger
	version  string
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

// Option configures a Server.
type Option func(*Server)

// WithImaging sets the loader and cropper. The cropper should decode through
// the same loader so sources are cached once.
func WithImaging(loader *imaging.Loader, cropper *imaging.Cropper) Option {
	return func(s *Server) {
		s.loader = loader
		s.cropper = cropper
	}
}

// WithProfiles enables the profile_* tools.
func WithProfiles(svc *profile.Service) Option {
	return func(s *Server) { s.profiles = svc }
}

// WithLogger sets the logger for request and tool failures. It is also
// handed to the default cropper New builds.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a new MCP server instance. Without options it uses an
// in-memory blob registry, a default loader and cropper, and no profile
// service.
func New(opts ...Option) *Server {
	s := &Server{
		logger:  zap.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cropper == nil {
		blobs := imaging.NewBlobRegistry()
		s.loader = imaging.NewLoader(blobs)
		s.cropper = imaging.NewCropper(blobs, imaging.WithDecoder(s.loader), imaging.WithLogger(s.logger))
	}
	if s.loader == nil {
		s.loader = imaging.NewLoader(s.cropper.Blobs())
	}
	return s
}

// Run serves requests from stdin to stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxRequestBytes)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method), nil)
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
				"name":    "avatar-tools-mcp",
				"version": s.version,
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	tools := GetToolDefinitions()
	if s.profiles == nil {
		tools = withoutProfileTools(tools)
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": tools,
		},
	}
}
