// Package pipeline turns the lines of successive frames into a steering error.
//
// A Pipeline belongs to one camera stream. Each call to Process runs the
// vertical-line filter, the consensus estimator, the middle point estimator,
// the temporal filters and the error computation for one frame. The temporal
// filter history is the only state carried between frames.
//
// Frames without an estimate (too few lines, or no intersecting pair) never
// fail: the result is marked Degraded and repeats the last filtered output,
// or the neutral centre before any estimate exists.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/filter"
	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// Reasons reported for degraded frames.
const (
	ReasonDegenerateInput = "degenerate_input"
	ReasonNoConvergence   = "no_convergence"
)

// FrameResult is the outcome of one frame.
type FrameResult struct {
	// Frame counts processed frames from 1, including degraded ones.
	Frame int `json:"frame"`

	// Lines is the number of lines left after the vertical filter.
	Lines int `json:"lines"`

	// Estimated is true when a vanishing point was found for this frame.
	Estimated bool `json:"estimated"`

	// Degraded is true when the output repeats earlier state.
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`

	Raw            vanishing.Point `json:"raw"`
	Filtered       vanishing.Point `json:"filtered"`
	Middle         vanishing.Point `json:"middle"`
	MiddleFiltered vanishing.Point `json:"middle_filtered"`

	Inliers int `json:"inliers"`

	// BestPair holds the winning line pair, in the filtered line set.
	BestPair [2]vanishing.Line `json:"best_pair"`

	// Error is the normalised steering error in [-0.5, 0.5].
	Error float64 `json:"error"`
}

// Pipeline processes the frames of one stream.
type Pipeline struct {
	cfg       config.Config
	estimator *vanishing.Estimator
	vpFilter  filter.Filter
	midFilter filter.Filter
	logger    *zap.SugaredLogger

	frames int
	last   *FrameResult
}

// New creates a Pipeline. A nil sampler uses a randomly seeded source and a
// nil logger discards output.
func New(cfg config.Config, sampler vanishing.Sampler, logger *zap.SugaredLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	vpFilter, err := filter.New(cfg.FilterSettings())
	if err != nil {
		return nil, err
	}
	midFilter, err := filter.New(cfg.FilterSettings())
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		estimator: vanishing.NewEstimator(cfg.RansacIterations, cfg.InlierThresholdPx, cfg.ImageWidth, cfg.ImageHeight, sampler),
		vpFilter:  vpFilter,
		midFilter: midFilter,
		logger:    logger,
	}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Frames returns the number of frames processed since creation or Reset.
func (p *Pipeline) Frames() int {
	return p.frames
}

// Reset clears the filter history and frame count.
func (p *Pipeline) Reset() {
	p.vpFilter.Reset()
	p.midFilter.Reset()
	p.frames = 0
	p.last = nil
}

// Process runs one frame's lines through the pipeline.
func (p *Pipeline) Process(lines []vanishing.Line) FrameResult {
	p.frames++
	usable := vanishing.FilterVertical(lines, p.cfg.VerticalExclusionAngleDeg)

	h, err := p.estimator.Estimate(usable)
	if err != nil {
		return p.degrade(len(usable), err)
	}

	width, height := p.cfg.ImageWidth, p.cfg.ImageHeight
	middle := vanishing.Point{
		X: vanishing.MiddleX(usable, h.A, h.B, width, height),
		Y: height / 2,
	}

	res := FrameResult{
		Frame:          p.frames,
		Lines:          len(usable),
		Estimated:      true,
		Raw:            h.Point,
		Filtered:       p.vpFilter.Update(h.Point).Clamp(width, height),
		Middle:         middle,
		MiddleFiltered: p.midFilter.Update(middle).Clamp(width, height),
		Inliers:        h.Inliers,
		BestPair:       [2]vanishing.Line{usable[h.A], usable[h.B]},
	}
	res.Error = vanishing.ComputeError(p.errorPoint(res), width)

	p.logger.Debugw("frame processed",
		"frame", res.Frame,
		"lines", res.Lines,
		"raw", res.Raw,
		"filtered", res.Filtered,
		"middle", res.Middle.X,
		"inliers", res.Inliers,
		"error", res.Error,
	)

	p.last = &res
	return res
}

func (p *Pipeline) errorPoint(res FrameResult) vanishing.Point {
	if p.cfg.ErrorSource == config.SourceMiddlePoint {
		return res.MiddleFiltered
	}
	return res.Filtered
}

// degrade builds the result for a frame without an estimate. Filters are left
// untouched; the last filtered output is held, or the image centre with a
// neutral error before any estimate exists.
func (p *Pipeline) degrade(lines int, cause error) FrameResult {
	reason := ReasonNoConvergence
	if errors.Is(cause, vanishing.ErrDegenerateInput) {
		reason = ReasonDegenerateInput
	}

	res := FrameResult{
		Frame:    p.frames,
		Lines:    lines,
		Degraded: true,
		Reason:   reason,
	}

	if p.last != nil {
		res.Raw = p.last.Raw
		res.Filtered = p.last.Filtered
		res.Middle = p.last.Middle
		res.MiddleFiltered = p.last.MiddleFiltered
		res.Error = p.last.Error
	} else {
		centre := vanishing.Point{X: p.cfg.ImageWidth / 2, Y: p.cfg.ImageHeight / 2}
		res.Raw, res.Filtered = centre, centre
		res.Middle, res.MiddleFiltered = centre, centre
	}

	p.logger.Warnw("frame degraded",
		"frame", res.Frame,
		"lines", lines,
		"reason", reason,
		"error", res.Error,
		"cause", cause,
	)
	return res
}
