package vanishing

import "math"

// Buckets holds line indices split by orientation.
type Buckets struct {
	// Low holds indices of lines with θ < π/2 (normal pointing down-right,
	// the line itself rising to the right).
	Low []int

	// High holds indices of lines with θ >= π/2.
	High []int
}

// Balanced reports whether both buckets are non-empty, i.e. whether paired
// sampling across orientations is possible.
func (b Buckets) Balanced() bool {
	return len(b.Low) > 0 && len(b.High) > 0
}

// Bucket partitions the indices of lines into Low and High by comparing θ
// against π/2 in radians.
func Bucket(lines []Line) Buckets {
	var b Buckets
	for i, l := range lines {
		if l.Theta < math.Pi/2 {
			b.Low = append(b.Low, i)
		} else {
			b.High = append(b.High, i)
		}
	}
	return b
}
