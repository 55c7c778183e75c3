package server

import (
	"context"
	"encoding/json"
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
	"github.com/ironsheep/image-edges-mcp/internal/imaging"
)

// JSON-RPC error codes.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailure    = -32000
	codeCancelled      = -32800
)

var (
	// errInvalidParams marks malformed or unknown tool arguments.
	errInvalidParams = errors.New("invalid params")

	// errSuperseded is returned by image_edge_detect when a newer detection
	// replaced it before it finished.
	errSuperseded = errors.New("superseded by a newer edge detection")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_edge_detect").
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
// Errors map onto JSON-RPC codes: -32602 for bad arguments or invalid input,
// -32800 for a superseded detection, -32000 for anything else.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		code, message := classifyError(err)
		s.logger.Warn("tool failed",
			zap.String("tool", params.Name),
			zap.Int("code", code),
			zap.Error(err),
		)
		return s.errorResponse(req.ID, code, message, err.Error())
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

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, errSuperseded):
		return codeCancelled, "Request cancelled"
	case errors.Is(err, errInvalidParams), errors.Is(err, edges.ErrInvalidInput):
		return codeInvalidParams, "Invalid params"
	default:
		return codeToolFailure, "Tool execution failed"
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_unload":
		return s.handleImageUnload(args)

	// Region Operations
	case "image_crop":
		return s.handleImageCrop(args)

	// Edge Detection
	case "image_edge_detect":
		return s.handleImageEdgeDetect(ctx, args)
	case "image_edge_overlay":
		return s.handleImageEdgeOverlay(ctx, args)
	case "image_edge_crop":
		return s.handleImageEdgeCrop(ctx, args)

	default:
		return nil, errors.Wrapf(errInvalidParams, "unknown tool: %s", name)
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

// decodeArgs unmarshals tool arguments, tagging failures as invalid params.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Wrapf(errInvalidParams, "arguments: %v", err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a imageLoadArgs) validate() error {
	if a.Path == "" {
		return errors.Wrap(errInvalidParams, "path is required")
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageUnloadArgs struct {
	Path string `json:"path"`
	All  bool   `json:"all"`
}

// ImageUnloadResult reports what image_unload removed from the cache.
type ImageUnloadResult struct {
	Evicted bool `json:"evicted"`
	Cached  int  `json:"cached"`
}

func (s *Server) handleImageUnload(args json.RawMessage) (interface{}, error) {
	var a imageUnloadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var evicted bool
	switch {
	case a.All:
		evicted = s.cache.Len() > 0
		s.cache.Clear()
	case a.Path != "":
		evicted = s.cache.Evict(a.Path)
	default:
		return nil, errors.Wrap(errInvalidParams, "path is required unless all is true")
	}
	return &ImageUnloadResult{Evicted: evicted, Cached: s.cache.Len()}, nil
}

// === Region Operation Handlers ===

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

// === Edge Detection Handlers ===

// thresholdArgs are per-call overrides of the server's detector
// configuration. Omitted fields keep the server setting; an explicit 0 is an
// override like any other value.
type thresholdArgs struct {
	Path            string   `json:"path"`
	ThresholdPolicy string   `json:"threshold_policy"`
	High            *float64 `json:"high"`
	Low             *float64 `json:"low"`
	HighRatio       *float64 `json:"high_ratio"`
	LowRatio        *float64 `json:"low_ratio"`
}

func (a thresholdArgs) overrides() bool {
	return a.ThresholdPolicy != "" || a.High != nil || a.Low != nil || a.HighRatio != nil || a.LowRatio != nil
}

// detectorFor returns the server detector, or a new one when a overrides any
// threshold.
func (s *Server) detectorFor(a thresholdArgs) (*edges.Detector, error) {
	if !a.overrides() {
		return s.detector, nil
	}

	cfg := s.detector.Config()
	if a.ThresholdPolicy != "" {
		policy, err := edges.ParseThresholdPolicy(a.ThresholdPolicy)
		if err != nil {
			return nil, err
		}
		cfg.Policy = policy
	}
	if a.High != nil {
		cfg.High = *a.High
	}
	if a.Low != nil {
		cfg.Low = *a.Low
	}
	if a.HighRatio != nil {
		cfg.HighRatio = *a.HighRatio
	}
	if a.LowRatio != nil {
		cfg.LowRatio = *a.LowRatio
	}
	return edges.NewDetector(cfg, edges.WithLogger(s.logger.Named("detector")))
}

// load reads the source image and its raster form.
func (s *Server) load(a thresholdArgs) (image.Image, edges.RasterImage, error) {
	if a.Path == "" {
		return nil, edges.RasterImage{}, errors.Wrap(errInvalidParams, "path is required")
	}
	return imaging.LoadRaster(s.cache, a.Path)
}

type imageEdgeDetectArgs struct {
	thresholdArgs
	IncludeMask bool `json:"include_mask"`
}

// handleImageEdgeDetect runs detection through the runner. A call that is
// overtaken by a newer image_edge_detect returns errSuperseded.
func (s *Server) handleImageEdgeDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	d, err := s.detectorFor(a.thresholdArgs)
	if err != nil {
		return nil, err
	}
	_, raster, err := s.load(a.thresholdArgs)
	if err != nil {
		return nil, err
	}

	gen, ch := s.runner.SubmitWith(ctx, d, raster)
	outcome, ok := <-ch
	if !ok {
		return nil, errors.Wrapf(errSuperseded, "detection %d on %s", gen, a.Path)
	}
	if outcome.Err != nil {
		return nil, outcome.Err
	}

	out, err := imaging.Describe(outcome.Result, a.IncludeMask)
	if err != nil {
		return nil, err
	}
	out.Generation = outcome.Generation
	return out, nil
}

// detect runs a one-off detection outside the runner.
func (s *Server) detect(ctx context.Context, a thresholdArgs) (image.Image, *edges.Result, error) {
	d, err := s.detectorFor(a)
	if err != nil {
		return nil, nil, err
	}
	img, raster, err := s.load(a)
	if err != nil {
		return nil, nil, err
	}
	res, err := d.Detect(ctx, raster)
	if err != nil {
		return nil, nil, err
	}
	return img, res, nil
}

func (s *Server) handleImageEdgeOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a thresholdArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, res, err := s.detect(ctx, a)
	if err != nil {
		return nil, err
	}
	return imaging.Overlay(img, res)
}

type imageEdgeCropArgs struct {
	thresholdArgs
	Margin int     `json:"margin"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleImageEdgeCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageEdgeCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, res, err := s.detect(ctx, a.thresholdArgs)
	if err != nil {
		return nil, err
	}
	return imaging.CropToBox(img, res.BoundingBox, a.Margin, a.Scale)
}
