package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// streamProperty is the optional stream selector shared by most tools.
var streamProperty = map[string]interface{}{
	"type":        "string",
	"description": "Stream id from vp_stream_open. Defaults to the \"default\" stream",
}

// configProperty describes partial pipeline configuration overrides.
var configProperty = map[string]interface{}{
	"type":        "object",
	"description": "Configuration overrides; omitted fields keep their defaults (see vp_config)",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frames
		{
			Name:        "image_load",
			Description: "Load a camera frame and return its dimensions, format and file size. The decoded frame is cached for later calls.",
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
			Name:        "vp_detect_lines",
			Description: "Extract straight lines from a frame with Canny edge detection and a Hough transform. Lines are returned in polar form (rho in pixels, theta in radians [0, pi)) at the stream's working resolution, strongest first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"stream": streamProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vp_edge_detect",
			Description: "Run Canny edge detection on a frame and return the edge map as base64-encoded PNG. Thresholds default to the stream's configuration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"stream": streamProperty,
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Low hysteresis threshold (0-255)",
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "High hysteresis threshold (0-255)",
					},
					"blur_radius": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur radius applied first; 0 disables",
					},
				},
				"required": []string{"path"},
			},
		},

		// Estimation
		{
			Name:        "vp_estimate",
			Description: "Process one frame of a stream: extract lines, estimate the vanishing point by RANSAC, update the temporal filters and return raw and filtered points, the middle point and the normalised steering error. Frames without an estimate are reported as degraded and hold the previous output.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"stream": streamProperty,
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the frame with lines, points and error drawn on it as base64-encoded PNG",
						"default":     false,
					},
					"desaturate": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw the overlay on a grayscale copy of the frame",
						"default":     false,
					},
					"palette": map[string]interface{}{
						"type":        "object",
						"description": "Overlay colors as hex strings: crosshair, lines, best_pair, raw, filtered, middle",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vp_estimate_lines",
			Description: "Process one frame of a stream from externally detected lines instead of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lines": map[string]interface{}{
						"type":        "array",
						"description": "Lines in polar form",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"rho":   map[string]interface{}{"type": "number"},
								"theta": map[string]interface{}{"type": "number"},
							},
							"required": []string{"rho", "theta"},
						},
					},
					"degrees": map[string]interface{}{
						"type":        "boolean",
						"description": "Theta values are in degrees instead of radians",
						"default":     false,
					},
					"stream": streamProperty,
				},
				"required": []string{"lines"},
			},
		},
		{
			Name:        "vp_process_sequence",
			Description: "Process an ordered sequence of frames and return every frame result plus a summary. Without a stream a fresh pipeline is used, so open streams are unaffected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Absolute paths of the frames, in order",
						"items":       map[string]interface{}{"type": "string"},
					},
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Directory or glob pattern; matching frames are processed in name order after paths",
					},
					"stream": streamProperty,
					"config": configProperty,
				},
			},
		},

		// Streams
		{
			Name:        "vp_stream_open",
			Description: "Open a new stream with its own filter history and configuration. Returns the stream id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config": configProperty,
				},
			},
		},
		{
			Name:        "vp_stream_reset",
			Description: "Clear a stream's filter history, e.g. after a scene cut.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream": streamProperty,
				},
			},
		},
		{
			Name:        "vp_stream_close",
			Description: "Close a stream opened with vp_stream_open. The default stream cannot be closed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream": map[string]interface{}{
						"type":        "string",
						"description": "Stream id from vp_stream_open",
					},
				},
				"required": []string{"stream"},
			},
		},
		{
			Name:        "vp_config",
			Description: "Return a stream's configuration, its processed frame count and the ids of all open streams.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream": streamProperty,
				},
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
