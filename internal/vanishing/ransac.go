package vanishing

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrDegenerateInput is returned when fewer than two lines are available.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrNoConvergence is returned when no sampled pair produced an
	// intersection.
	ErrNoConvergence = errors.New("no convergence")
)

// Sampler produces pseudo-random indices in [0, n).
//
// *rand.Rand from math/rand/v2 satisfies Sampler. Tests inject a scripted
// implementation to fix the sequence of drawn lines.
type Sampler interface {
	IntN(n int) int
}

// NewRandSampler returns a Sampler seeded from the runtime's random source.
func NewRandSampler() Sampler {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Hypothesis is a candidate vanishing point and its consensus.
type Hypothesis struct {
	// Point is the intersection of the sampled pair, clamped to the image
	// once the run is complete.
	Point Point `json:"point"`

	// Inliers is the number of lines within the inlier threshold of Point.
	Inliers int `json:"inliers"`

	// A and B index the sampled pair in the line set passed to Estimate.
	A int `json:"a"`
	B int `json:"b"`
}

// Estimator runs the consensus search for the vanishing point.
//
// An Estimator holds no per-frame state; one instance can serve consecutive
// frames of a stream. It is not safe for concurrent use because the Sampler
// usually is not.
type Estimator struct {
	// Iterations is the fixed number of trials per frame.
	Iterations int

	// Threshold is the inlier distance in pixels (strict less-than).
	Threshold float64

	// Width and Height bound the returned point.
	Width  int
	Height int

	sampler Sampler
}

// NewEstimator creates an Estimator. A nil sampler selects NewRandSampler.
func NewEstimator(iterations int, threshold float64, width, height int, sampler Sampler) *Estimator {
	if sampler == nil {
		sampler = NewRandSampler()
	}
	return &Estimator{
		Iterations: iterations,
		Threshold:  threshold,
		Width:      width,
		Height:     height,
		sampler:    sampler,
	}
}

// Estimate returns the hypothesis with the most inliers over e.Iterations
// trials.
//
// Each trial draws one line from each orientation bucket, or two lines
// uniformly (with replacement) from the whole set when a bucket is empty. A
// pair without an intersection consumes the trial. A hypothesis replaces the
// current best only with strictly more inliers, so the earliest maximum wins
// ties.
//
// # Errors
//
//   - ErrDegenerateInput if len(lines) < 2
//   - ErrNoConvergence if no trial produced an intersection
func (e *Estimator) Estimate(lines []Line) (Hypothesis, error) {
	if len(lines) < 2 {
		return Hypothesis{}, fmt.Errorf("%w: %d usable lines", ErrDegenerateInput, len(lines))
	}

	buckets := Bucket(lines)
	var best Hypothesis
	found := false

	for i := 0; i < e.Iterations; i++ {
		a, b := e.samplePair(buckets, len(lines))

		p, ok := Intersect(lines[a], lines[b])
		if !ok {
			continue
		}

		inliers := CountInliers(lines, p, e.Threshold)
		if !found || inliers > best.Inliers {
			best = Hypothesis{Point: p, Inliers: inliers, A: a, B: b}
			found = true
		}
	}

	if !found {
		return Hypothesis{}, fmt.Errorf("%w after %d trials over %d lines", ErrNoConvergence, e.Iterations, len(lines))
	}

	best.Point = best.Point.Clamp(e.Width, e.Height)
	return best, nil
}

func (e *Estimator) samplePair(buckets Buckets, n int) (a, b int) {
	if buckets.Balanced() {
		a = buckets.Low[e.sampler.IntN(len(buckets.Low))]
		b = buckets.High[e.sampler.IntN(len(buckets.High))]
		return a, b
	}
	return e.sampler.IntN(n), e.sampler.IntN(n)
}
