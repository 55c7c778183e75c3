package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
	"github.com/ironsheep/image-edges-mcp/internal/imaging"
)

const (
	serverName      = "image-edges-mcp"
	protocolVersion = "2024-11-05"

	// maxRequestBytes bounds a single request line.
	maxRequestBytes = 1024 * 1024
)

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.ImageCache
	detector *edges.Detector
	runner   *edges.Runner
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

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the server logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version reported in the initialize handshake.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New creates a server that detects edges with detector.
func New(detector *edges.Detector, opts ...Option) *Server {
	s := &Server{
		cache:    imaging.NewImageCache(),
		detector: detector,
		logger:   zap.NewNop(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = edges.NewRunner(detector, s.logger.Named("runner"))
	return s
}

// Run serves MCP on stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads line-delimited JSON-RPC requests from r and writes responses
// to w. Requests are handled concurrently, so responses may arrive out of
// order; clients correlate them by ID. Serve returns after the input ends and
// every in-flight request has been answered.
//
// Cancelling ctx aborts the active detection. Serve does not return while a
// detection goroutine is still running.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxRequestBytes)

	stop := context.AfterFunc(ctx, func() {
		s.logger.Info("context done, cancelling active detection", zap.Uint64("generation", s.runner.Current()))
		s.runner.Cancel()
	})
	defer stop()

	out := &responseWriter{enc: json.NewEncoder(w)}
	var wg sync.WaitGroup
	defer s.runner.Wait()
	defer wg.Wait()

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.handleRequest(ctx, &req)
			if resp == nil {
				return
			}
			if err := out.write(resp); err != nil {
				s.logger.Error("failed to encode response", zap.Any("id", req.ID), zap.Error(err))
			}
		}()
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scanner error")
	}
	return ctx.Err()
}

// responseWriter serialises concurrent responses onto one stream.
type responseWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (rw *responseWriter) write(resp *MCPResponse) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.enc.Encode(resp)
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", zap.String("method", req.Method), zap.Any("id", req.ID))

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
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
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    codeMethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": s.version,
			},
		},
	}
}
