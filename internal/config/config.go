// Package config holds the tuning parameters of the vanishing point pipeline.
//
// A Config is always derived from Default(); JSON files and per-stream
// overrides only replace the fields they name, so partial documents are valid.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/ironsheep/vanishing-point-mcp/internal/filter"
)

// ErrorSource selects which filtered point drives the error signal.
type ErrorSource string

const (
	// SourceVanishingPoint uses the filtered vanishing point.
	SourceVanishingPoint ErrorSource = "vanishing_point"

	// SourceMiddlePoint uses the filtered middle point on the horizontal mid-line.
	SourceMiddlePoint ErrorSource = "middle_point"
)

// maxFileSize bounds configuration files read by Load.
const maxFileSize = 1 * 1024 * 1024

// Config is the full set of pipeline options.
type Config struct {
	// Consensus search
	RansacIterations  int     `json:"ransac_iterations"`
	InlierThresholdPx float64 `json:"inlier_threshold_px"`

	// Frame geometry; frames are resized to this before extraction.
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`

	// Temporal filtering
	FilterStrategy        filter.Strategy `json:"filter_strategy"`
	MovingAverageWindow   int             `json:"moving_average_window"`
	LowPassSamplingFreqHz float64         `json:"lowpass_sampling_freq_hz"`
	LowPassCutoffFreqHz   float64         `json:"lowpass_cutoff_freq_hz"`

	// Preprocessing
	VerticalExclusionAngleDeg float64 `json:"vertical_exclusion_angle_deg"`

	// Output
	ErrorSource ErrorSource `json:"error_source"`

	// Line extraction
	CannyLowThreshold int     `json:"canny_low_threshold"`
	CannyRatio        int     `json:"canny_ratio"`
	HoughThreshold    int     `json:"hough_threshold"`
	BlurRadius        float64 `json:"blur_radius"`
	MaxLines          int     `json:"max_lines"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		RansacIterations:          100,
		InlierThresholdPx:         10,
		ImageWidth:                640,
		ImageHeight:               480,
		FilterStrategy:            filter.StrategyLowPass,
		MovingAverageWindow:       10,
		LowPassSamplingFreqHz:     25,
		LowPassCutoffFreqHz:       40,
		VerticalExclusionAngleDeg: 5,
		ErrorSource:               SourceVanishingPoint,
		CannyLowThreshold:         60,
		CannyRatio:                3,
		HoughThreshold:            100,
		BlurRadius:                1,
		MaxLines:                  200,
	}
}

// CannyHighThreshold returns the upper hysteresis threshold.
func (c Config) CannyHighThreshold() int {
	return c.CannyLowThreshold * c.CannyRatio
}

// FilterSettings returns the temporal filter parameters.
func (c Config) FilterSettings() filter.Settings {
	return filter.Settings{
		Strategy:   c.FilterStrategy,
		Window:     c.MovingAverageWindow,
		SamplingHz: c.LowPassSamplingFreqHz,
		CutoffHz:   c.LowPassCutoffFreqHz,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if c.RansacIterations < 1 {
		err = multierr.Append(err, fmt.Errorf("ransac_iterations must be positive, got %d", c.RansacIterations))
	}
	if c.InlierThresholdPx <= 0 {
		err = multierr.Append(err, fmt.Errorf("inlier_threshold_px must be positive, got %v", c.InlierThresholdPx))
	}
	if c.ImageWidth < 1 || c.ImageHeight < 1 {
		err = multierr.Append(err, fmt.Errorf("image size must be positive, got %dx%d", c.ImageWidth, c.ImageHeight))
	}
	if c.FilterStrategy != filter.StrategyLowPass && c.FilterStrategy != filter.StrategyMovingAverage {
		err = multierr.Append(err, fmt.Errorf("unknown filter_strategy %v", c.FilterStrategy))
	}
	if c.MovingAverageWindow < 1 {
		err = multierr.Append(err, fmt.Errorf("moving_average_window must be at least 1, got %d", c.MovingAverageWindow))
	}
	if c.LowPassSamplingFreqHz <= 0 || c.LowPassCutoffFreqHz <= 0 {
		err = multierr.Append(err, fmt.Errorf("low-pass frequencies must be positive, got fs=%v fc=%v",
			c.LowPassSamplingFreqHz, c.LowPassCutoffFreqHz))
	}
	if c.VerticalExclusionAngleDeg < 0 || c.VerticalExclusionAngleDeg >= 90 {
		err = multierr.Append(err, fmt.Errorf("vertical_exclusion_angle_deg must be in [0, 90), got %v", c.VerticalExclusionAngleDeg))
	}
	if c.ErrorSource != SourceVanishingPoint && c.ErrorSource != SourceMiddlePoint {
		err = multierr.Append(err, fmt.Errorf("unknown error_source %q", c.ErrorSource))
	}
	if c.CannyLowThreshold < 0 || c.CannyLowThreshold > 255 {
		err = multierr.Append(err, fmt.Errorf("canny_low_threshold must be in [0, 255], got %d", c.CannyLowThreshold))
	}
	if c.CannyRatio < 1 {
		err = multierr.Append(err, fmt.Errorf("canny_ratio must be at least 1, got %d", c.CannyRatio))
	}
	if c.HoughThreshold < 1 {
		err = multierr.Append(err, fmt.Errorf("hough_threshold must be positive, got %d", c.HoughThreshold))
	}
	if c.BlurRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("blur_radius must not be negative, got %v", c.BlurRadius))
	}
	if c.MaxLines < 1 {
		err = multierr.Append(err, fmt.Errorf("max_lines must be positive, got %d", c.MaxLines))
	}
	return err
}

// Merge returns c with the fields present in the JSON object raw applied on
// top, then validates the result.
func (c Config) Merge(raw []byte) (Config, error) {
	if len(raw) == 0 {
		return c, nil
	}
	merged := c
	if err := json.Unmarshal(raw, &merged); err != nil {
		return c, fmt.Errorf("failed to parse config overrides: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}
	return merged, nil
}

// Load reads a JSON configuration file over Default().
//
// The file must have a .json extension and be at most 1 MiB.
func Load(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return Default().Merge(data)
}
