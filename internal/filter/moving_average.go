package filter

import (
	"fmt"

	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// MovingAverage reports the mean of the last Window raw points.
//
// The window is a fixed-capacity ring with a running per-axis sum. The first
// Update after construction or Reset fills every slot with its input, so the
// output starts at the first raw point instead of ramping up from zero.
type MovingAverage struct {
	window      []vanishing.Point
	sumX, sumY  int
	cursor      int
	initialized bool
}

// NewMovingAverage creates a MovingAverage over size frames.
func NewMovingAverage(size int) (*MovingAverage, error) {
	if size < 1 {
		return nil, fmt.Errorf("moving average window must be at least 1, got %d", size)
	}
	return &MovingAverage{window: make([]vanishing.Point, size)}, nil
}

// Size returns the window length.
func (m *MovingAverage) Size() int {
	return len(m.window)
}

// Update implements Filter.
func (m *MovingAverage) Update(raw vanishing.Point) vanishing.Point {
	if !m.initialized {
		for i := range m.window {
			m.window[i] = raw
		}
		m.sumX = raw.X * len(m.window)
		m.sumY = raw.Y * len(m.window)
		m.cursor = 0
		m.initialized = true
		return raw
	}

	old := m.window[m.cursor]
	m.sumX -= old.X
	m.sumY -= old.Y

	m.window[m.cursor] = raw
	m.sumX += raw.X
	m.sumY += raw.Y

	m.cursor = (m.cursor + 1) % len(m.window)

	return vanishing.Point{X: m.sumX / len(m.window), Y: m.sumY / len(m.window)}
}

// Reset implements Filter.
func (m *MovingAverage) Reset() {
	for i := range m.window {
		m.window[i] = vanishing.Point{}
	}
	m.sumX, m.sumY = 0, 0
	m.cursor = 0
	m.initialized = false
}
