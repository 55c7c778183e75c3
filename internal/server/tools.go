package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// thresholdProperties describes the optional per-call overrides shared by the
// edge tools, merged with extra tool-specific properties.
func thresholdProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty(),
		"threshold_policy": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"fixed", "relative"},
			"description": "fixed: absolute gradient thresholds (deterministic per pixel values). relative: thresholds scaled to the image's strongest gradient. Defaults to the server setting.",
		},
		"high": map[string]interface{}{
			"type":        "number",
			"description": "Fixed policy: gradient magnitude at or above which a pixel seeds an edge. Default 40",
		},
		"low": map[string]interface{}{
			"type":        "number",
			"description": "Fixed policy: gradient magnitude at or above which a pixel may join an edge. Must be below high. Default 15",
		},
		"high_ratio": map[string]interface{}{
			"type":        "number",
			"description": "Relative policy: high threshold as a fraction of the maximum gradient, in (0, 1]. Default 0.15",
		},
		"low_ratio": map[string]interface{}{
			"type":        "number",
			"description": "Relative policy: low threshold as a fraction of the high threshold, in (0, 1). Default 0.4",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		{
			Name:        "image_unload",
			Description: "Drop a cached image so the next call decodes the file again. Files changed on disk are reloaded automatically.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"all": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop every cached image instead of one path. Default false",
						"default":     false,
					},
				},
				"required": []string{},
			},
		},

		// Region Operations
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Edge Detection
		{
			Name: "image_edge_detect",
			Description: "Detect edges with a deterministic Canny-style pipeline and return the bounding box of all edge pixels " +
				"plus labelled anchor points inside it. A newer image_edge_detect call cancels one still in progress, " +
				"which then fails with code -32800.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": thresholdProperties(map[string]interface{}{
					"include_mask": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the binary edge mask as base64 PNG (white = edge). Default false",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_overlay",
			Description: "Detect edges and return the source image with edges highlighted in teal and anchor points marked by group colour, as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": thresholdProperties(nil),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_edge_crop",
			Description: "Detect edges and crop the source image to their bounding box. Fails if no edges are found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": thresholdProperties(map[string]interface{}{
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels to add around the bounding box, clipped to the image. Default 0",
						"default":     0,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the crop. Default 1.0",
						"default":     1.0,
					},
				}),
				"required": []string{"path"},
			},
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
