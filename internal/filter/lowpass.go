package filter

import (
	"fmt"
	"math"

	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// LowPass is a first-order low-pass filter discretised with the Tustin
// transform:
//
//	Tw = 2π·fc / fs
//	y[k] = (Tw·(x[k] + x[k-1]) − (Tw − 2)·y[k-1]) / (Tw + 2)
//
// The previous output is kept in floating point and only the reported point
// is truncated, so a constant input converges instead of stalling one pixel
// short.
type LowPass struct {
	tw float64

	prevRawX, prevRawY           float64
	prevFilteredX, prevFilteredY float64
	initialized                  bool
}

// NewLowPass creates a LowPass for the given sampling and cutoff frequencies
// in hertz.
func NewLowPass(samplingHz, cutoffHz float64) (*LowPass, error) {
	if samplingHz <= 0 || cutoffHz <= 0 {
		return nil, fmt.Errorf("low-pass frequencies must be positive, got fs=%v fc=%v", samplingHz, cutoffHz)
	}
	return &LowPass{tw: 2 * math.Pi * cutoffHz / samplingHz}, nil
}

// Tw returns the normalised angular cutoff 2π·fc/fs.
func (f *LowPass) Tw() float64 {
	return f.tw
}

// Update implements Filter.
func (f *LowPass) Update(raw vanishing.Point) vanishing.Point {
	x, y := float64(raw.X), float64(raw.Y)

	if !f.initialized {
		f.prevRawX, f.prevRawY = x, y
		f.prevFilteredX, f.prevFilteredY = x, y
		f.initialized = true
		return raw
	}

	fx := f.step(x, f.prevRawX, f.prevFilteredX)
	fy := f.step(y, f.prevRawY, f.prevFilteredY)

	f.prevRawX, f.prevRawY = x, y
	f.prevFilteredX, f.prevFilteredY = fx, fy

	return vanishing.Point{X: truncatePixel(fx), Y: truncatePixel(fy)}
}

// step evaluates the difference equation in incremental form,
// y[k-1] + Tw·(x[k] + x[k-1] − 2·y[k-1]) / (Tw + 2), which is algebraically
// identical and exact for a settled input.
func (f *LowPass) step(raw, prevRaw, prevFiltered float64) float64 {
	return prevFiltered + f.tw*(raw+prevRaw-2*prevFiltered)/(f.tw+2)
}

// Reset implements Filter.
func (f *LowPass) Reset() {
	f.prevRawX, f.prevRawY = 0, 0
	f.prevFilteredX, f.prevFilteredY = 0, 0
	f.initialized = false
}

// truncatePixel truncates v toward zero after discarding sub-micropixel
// floating point noise, so 299.99999999999994 reports as 300.
func truncatePixel(v float64) int {
	return int(math.Round(v*1e6) / 1e6)
}
