// Package filter smooths the per-frame vanishing point estimate across frames.
//
// Two strategies share the Filter interface: a moving average over a fixed
// window and a first-order low-pass filter discretised with the Tustin
// (bilinear) transform. Both filter x and y independently and keep their
// history in the filter value itself, so each camera stream owns one instance.
//
// Filters are not safe for concurrent use.
package filter

import (
	"fmt"
	"strings"

	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// Filter is a stateful per-axis smoother.
type Filter interface {
	// Update feeds the next raw point and returns the filtered point.
	Update(raw vanishing.Point) vanishing.Point

	// Reset clears all history. The next Update bootstraps from its input.
	Reset()
}

// Strategy selects a Filter implementation.
type Strategy int

const (
	// StrategyLowPass selects the Tustin-discretised first-order low-pass filter.
	StrategyLowPass Strategy = iota

	// StrategyMovingAverage selects the fixed-window moving average.
	StrategyMovingAverage
)

func (s Strategy) String() string {
	switch s {
	case StrategyLowPass:
		return "low_pass"
	case StrategyMovingAverage:
		return "moving_average"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name to a Strategy. Hyphens, underscores
// and case are ignored, so "low-pass", "LowPass" and "low_pass" are equal.
func ParseStrategy(name string) (Strategy, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	switch norm {
	case "lowpass", "lpf":
		return StrategyLowPass, nil
	case "movingaverage", "movingavg":
		return StrategyMovingAverage, nil
	default:
		return 0, fmt.Errorf("unknown filter strategy: %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if s != StrategyLowPass && s != StrategyMovingAverage {
		return nil, fmt.Errorf("unknown filter strategy: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Settings are the construction parameters for New.
type Settings struct {
	Strategy Strategy

	// Window is the moving-average window length in frames.
	Window int

	// SamplingHz and CutoffHz parameterise the low-pass filter.
	SamplingHz float64
	CutoffHz   float64
}

// New builds the Filter selected by s.Strategy.
func New(s Settings) (Filter, error) {
	switch s.Strategy {
	case StrategyMovingAverage:
		m, err := NewMovingAverage(s.Window)
		if err != nil {
			return nil, err
		}
		return m, nil
	case StrategyLowPass:
		f, err := NewLowPass(s.SamplingHz, s.CutoffHz)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown filter strategy: %v", s.Strategy)
	}
}
