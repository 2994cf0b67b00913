package server

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/detection"
	"github.com/ironsheep/vanishing-point-mcp/internal/imaging"
	"github.com/ironsheep/vanishing-point-mcp/internal/pipeline"
	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "vp_estimate").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warnw("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Frames
	case "image_load":
		return s.handleImageLoad(args)
	case "vp_detect_lines":
		return s.handleDetectLines(args)
	case "vp_edge_detect":
		return s.handleEdgeDetect(args)

	// Estimation
	case "vp_estimate":
		return s.handleEstimate(args)
	case "vp_estimate_lines":
		return s.handleEstimateLines(args)
	case "vp_process_sequence":
		return s.handleProcessSequence(args)

	// Streams
	case "vp_stream_open":
		return s.handleStreamOpen(args)
	case "vp_stream_reset":
		return s.handleStreamReset(args)
	case "vp_stream_close":
		return s.handleStreamClose(args)
	case "vp_config":
		return s.handleConfig(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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

// loadFrame decodes a frame and resizes it to the working resolution of cfg.
func (s *Server) loadFrame(path string, cfg config.Config) (*image.NRGBA, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.Normalize(img, cfg.ImageWidth, cfg.ImageHeight), nil
}

// streamConfig returns the configuration of the named stream.
func (s *Server) streamConfig(id string) (config.Config, error) {
	st, _, err := s.streams.get(id)
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	st.process(func(p *pipeline.Pipeline) { cfg = p.Config() })
	return cfg, nil
}

// === Frame Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.cache.Load(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(a.Path)
}

type detectLinesArgs struct {
	Path   string `json:"path"`
	Stream string `json:"stream"`
}

type detectLinesResult struct {
	*detection.LinesResult

	// Usable is the number of lines left after the vertical-line filter.
	Usable int `json:"usable"`
}

func (s *Server) handleDetectLines(args json.RawMessage) (interface{}, error) {
	var a detectLinesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := s.streamConfig(a.Stream)
	if err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path, cfg)
	if err != nil {
		return nil, err
	}

	lines, err := detection.ExtractLines(frame, detection.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return &detectLinesResult{
		LinesResult: lines,
		Usable:      len(vanishing.FilterVertical(lines.Polar(), cfg.VerticalExclusionAngleDeg)),
	}, nil
}

type edgeDetectArgs struct {
	Path          string   `json:"path"`
	Stream        string   `json:"stream"`
	ThresholdLow  *int     `json:"threshold_low"`
	ThresholdHigh *int     `json:"threshold_high"`
	BlurRadius    *float64 `json:"blur_radius"`
}

func (s *Server) handleEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := s.streamConfig(a.Stream)
	if err != nil {
		return nil, err
	}

	low, high, radius := cfg.CannyLowThreshold, cfg.CannyHighThreshold(), cfg.BlurRadius
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}
	if a.BlurRadius != nil {
		radius = *a.BlurRadius
	}

	frame, err := s.loadFrame(a.Path, cfg)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(frame, low, high, radius)
}

// === Estimation Handlers ===

type estimateArgs struct {
	Path       string           `json:"path"`
	Stream     string           `json:"stream"`
	Overlay    bool             `json:"overlay"`
	Desaturate bool             `json:"desaturate"`
	Palette    *imaging.Palette `json:"palette"`
}

type estimateResult struct {
	Stream string `json:"stream"`
	pipeline.FrameResult

	Overlay *imaging.OverlayResult `json:"overlay,omitempty"`
}

func (s *Server) handleEstimate(args json.RawMessage) (interface{}, error) {
	var a estimateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st, id, err := s.streams.get(a.Stream)
	if err != nil {
		return nil, err
	}

	var (
		res     pipeline.FrameResult
		usable  []vanishing.Line
		frame   *image.NRGBA
		callErr error
	)
	st.process(func(p *pipeline.Pipeline) {
		cfg := p.Config()
		frame, callErr = s.loadFrame(a.Path, cfg)
		if callErr != nil {
			return
		}
		var lines *detection.LinesResult
		lines, callErr = detection.ExtractLines(frame, detection.OptionsFromConfig(cfg))
		if callErr != nil {
			return
		}
		polar := lines.Polar()
		usable = vanishing.FilterVertical(polar, cfg.VerticalExclusionAngleDeg)
		res = p.Process(polar)
	})
	if callErr != nil {
		return nil, callErr
	}

	out := &estimateResult{Stream: id, FrameResult: res}
	if a.Overlay {
		ov := overlayFor(res, usable)
		ov.Desaturate = a.Desaturate
		if a.Palette != nil {
			ov.Palette = *a.Palette
		}
		out.Overlay, err = imaging.RenderPNG(frame, ov)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// overlayFor builds the diagnostic overlay of a frame result.
func overlayFor(res pipeline.FrameResult, lines []vanishing.Line) imaging.Overlay {
	ov := imaging.Overlay{
		Lines:     lines,
		Filtered:  &res.Filtered,
		Error:     res.Error,
		ShowError: true,
	}
	if res.Estimated {
		ov.BestPair = res.BestPair[:]
		ov.Raw = &res.Raw
		ov.Middle = &res.MiddleFiltered
	}
	return ov
}

type polarLine struct {
	Rho   float64 `json:"rho"`
	Theta float64 `json:"theta"`
}

type estimateLinesArgs struct {
	Stream string      `json:"stream"`
	Lines  []polarLine `json:"lines"`

	// Degrees marks theta values as degrees instead of radians.
	Degrees bool `json:"degrees"`
}

func (s *Server) handleEstimateLines(args json.RawMessage) (interface{}, error) {
	var a estimateLinesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st, id, err := s.streams.get(a.Stream)
	if err != nil {
		return nil, err
	}

	lines, err := toLines(a.Lines, a.Degrees)
	if err != nil {
		return nil, err
	}

	var res pipeline.FrameResult
	st.process(func(p *pipeline.Pipeline) { res = p.Process(lines) })
	return &estimateResult{Stream: id, FrameResult: res}, nil
}

// toLines converts request lines to estimator lines, normalising θ into [0, π).
func toLines(in []polarLine, degrees bool) ([]vanishing.Line, error) {
	lines := make([]vanishing.Line, 0, len(in))
	for i, l := range in {
		theta := l.Theta
		if degrees {
			theta = theta * math.Pi / 180
		}
		if math.IsNaN(theta) || math.IsInf(theta, 0) || math.IsNaN(l.Rho) || math.IsInf(l.Rho, 0) {
			return nil, fmt.Errorf("line %d is not finite", i)
		}
		rho := l.Rho
		// (ρ, θ+π) is the same line as (-ρ, θ).
		theta = math.Mod(theta, 2*math.Pi)
		if theta < 0 {
			theta += 2 * math.Pi
		}
		if theta >= math.Pi {
			theta -= math.Pi
			rho = -rho
		}
		lines = append(lines, vanishing.Line{Rho: rho, Theta: theta})
	}
	return lines, nil
}

type processSequenceArgs struct {
	Paths   []string        `json:"paths"`
	Pattern string          `json:"pattern"`
	Stream  string          `json:"stream"`
	Config  json.RawMessage `json:"config"`
}

type sequenceResult struct {
	Stream  string                 `json:"stream,omitempty"`
	Frames  []pipeline.FrameResult `json:"frames"`
	Summary pipeline.Summary       `json:"summary"`
}

// handleProcessSequence runs an ordered list of frames through one pipeline.
// Without a stream a fresh pipeline is used, built from the base configuration
// with the optional overrides, so open streams are not disturbed.
func (s *Server) handleProcessSequence(args json.RawMessage) (interface{}, error) {
	var a processSequenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	paths := a.Paths
	if a.Pattern != "" {
		listed, err := imaging.ListFrames(a.Pattern)
		if err != nil {
			return nil, err
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("paths or pattern is required")
	}

	out := &sequenceResult{}
	run := func(p *pipeline.Pipeline) error {
		cfg := p.Config()
		opts := detection.OptionsFromConfig(cfg)
		for _, path := range paths {
			// Frames cached before this call, e.g. by image_load, stay cached.
			cached := s.cache.Contains(path)
			frame, err := s.loadFrame(path, cfg)
			if err != nil {
				return fmt.Errorf("frame %s: %w", path, err)
			}
			lines, err := detection.ExtractLines(frame, opts)
			if err != nil {
				return fmt.Errorf("frame %s: %w", path, err)
			}
			out.Frames = append(out.Frames, p.Process(lines.Polar()))
			if !cached {
				s.cache.Evict(path)
			}
		}
		return nil
	}

	var err error
	if a.Stream != "" {
		if len(a.Config) > 0 {
			return nil, fmt.Errorf("config overrides cannot be combined with a stream")
		}
		st, id, getErr := s.streams.get(a.Stream)
		if getErr != nil {
			return nil, getErr
		}
		out.Stream = id
		st.process(func(p *pipeline.Pipeline) { err = run(p) })
	} else {
		cfg, mergeErr := s.cfg.Merge(a.Config)
		if mergeErr != nil {
			return nil, mergeErr
		}
		p, newErr := pipeline.New(cfg, vanishing.NewRandSampler(), s.logger.With("sequence", len(paths)))
		if newErr != nil {
			return nil, newErr
		}
		err = run(p)
	}
	if err != nil {
		return nil, err
	}

	out.Summary = pipeline.Summarize(out.Frames)
	return out, nil
}

// === Stream Handlers ===

type streamOpenArgs struct {
	Config json.RawMessage `json:"config"`
}

type streamInfo struct {
	Stream string         `json:"stream"`
	Frames int            `json:"frames"`
	Config *config.Config `json:"config,omitempty"`
	Closed bool           `json:"closed,omitempty"`
}

func (s *Server) handleStreamOpen(args json.RawMessage) (interface{}, error) {
	var a streamOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	id, cfg, err := s.streams.open(a.Config)
	if err != nil {
		return nil, err
	}
	return &streamInfo{Stream: id, Config: &cfg}, nil
}

type streamArgs struct {
	Stream string `json:"stream"`
}

func (s *Server) handleStreamReset(args json.RawMessage) (interface{}, error) {
	var a streamArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st, id, err := s.streams.get(a.Stream)
	if err != nil {
		return nil, err
	}
	st.process(func(p *pipeline.Pipeline) { p.Reset() })
	return &streamInfo{Stream: id}, nil
}

func (s *Server) handleStreamClose(args json.RawMessage) (interface{}, error) {
	var a streamArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.streams.close(a.Stream); err != nil {
		return nil, err
	}
	return &streamInfo{Stream: a.Stream, Closed: true}, nil
}

type configResult struct {
	streamInfo
	Streams []string `json:"streams"`
}

func (s *Server) handleConfig(args json.RawMessage) (interface{}, error) {
	var a streamArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st, id, err := s.streams.get(a.Stream)
	if err != nil {
		return nil, err
	}

	out := &configResult{Streams: s.streams.ids()}
	out.Stream = id
	st.process(func(p *pipeline.Pipeline) {
		cfg := p.Config()
		out.Config = &cfg
		out.Frames = p.Frames()
	})
	return out, nil
}
