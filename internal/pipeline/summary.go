package pipeline

import (
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the results of a frame sequence.
type Summary struct {
	Frames    int `json:"frames"`
	Estimated int `json:"estimated"`
	Degraded  int `json:"degraded"`

	// MeanError and StdDevError cover every frame, degraded ones included,
	// because those are the values a controller would have received.
	MeanError   float64 `json:"mean_error"`
	StdDevError float64 `json:"stddev_error"`

	// MeanInliers covers estimated frames only.
	MeanInliers float64 `json:"mean_inliers"`
}

// Summarize computes a Summary over results.
func Summarize(results []FrameResult) Summary {
	s := Summary{Frames: len(results)}
	if len(results) == 0 {
		return s
	}

	errs := make([]float64, 0, len(results))
	inliers := make([]float64, 0, len(results))
	for _, r := range results {
		errs = append(errs, r.Error)
		if r.Estimated {
			s.Estimated++
			inliers = append(inliers, float64(r.Inliers))
		} else {
			s.Degraded++
		}
	}

	if len(errs) > 1 {
		s.MeanError, s.StdDevError = stat.MeanStdDev(errs, nil)
	} else {
		s.MeanError = errs[0]
	}
	if len(inliers) > 0 {
		s.MeanInliers = stat.Mean(inliers, nil)
	}
	return s
}
