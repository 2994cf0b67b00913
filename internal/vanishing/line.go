package vanishing

import "math"

// Line is a straight line in Hough normal form: x·cos(Theta) + y·sin(Theta) = Rho.
type Line struct {
	// Rho is the signed perpendicular distance from the origin in pixels.
	Rho float64 `json:"rho"`

	// Theta is the angle of the normal in radians, in [0, π).
	Theta float64 `json:"theta"`
}

// Degrees returns Theta converted to degrees.
func (l Line) Degrees() float64 {
	return l.Theta * 180 / math.Pi
}

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Clamp constrains p to [0, width] × [0, height].
func (p Point) Clamp(width, height int) Point {
	return Point{X: clamp(p.X, 0, width), Y: clamp(p.Y, 0, height)}
}

// FilterVertical returns the lines whose angle lies more than toleranceDeg
// away from both 0° and 180°.
//
// A line with θ near 0 or π has a horizontal normal, so the line itself runs
// parallel to the image's vertical axis and carries no information about the
// horizontal position of the vanishing point. The input slice is not modified.
func FilterVertical(lines []Line, toleranceDeg float64) []Line {
	kept := make([]Line, 0, len(lines))
	for _, l := range lines {
		deg := l.Degrees()
		if deg < toleranceDeg || deg > 180-toleranceDeg {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// truncate converts f to an int, truncating toward zero. Values beyond the
// int32 range saturate so that near-parallel intersections far off-screen
// still compare and clamp sensibly.
func truncate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
