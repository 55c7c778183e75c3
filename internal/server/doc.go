// Package server implements the MCP (Model Context Protocol) server for edge
// detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the edge pipeline
// and its renderings through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Requests are handled concurrently and answered as they complete, so
// responses can arrive out of request order.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_unload: Drop cached images
//
// Region Operations:
//   - image_crop: Extract rectangular region
//
// Edge Detection:
//   - image_edge_detect: Bounding box, anchors and statistics, optionally the mask
//   - image_edge_overlay: Source image with edges and anchors drawn over it
//   - image_edge_crop: Source image cropped to the detected edges
//
// # Active Detection
//
// image_edge_detect calls share one generation counter. Starting a detection
// cancels the one in flight, and a detection that finishes after a newer one
// started is discarded: its call fails with code -32800. Overlay and crop
// calls run independently.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed arguments or invalid input, -32800 for a
//     superseded detection, -32000 for any other failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	d, err := edges.NewDetector(edges.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	srv := server.New(d, server.WithLogger(logger))
//	return srv.Run(ctx)
package server
