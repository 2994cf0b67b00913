package vanishing

import "math"

// Distance returns the perpendicular distance from p to l.
//
// Polar lines are already normalised (cos²θ + sin²θ = 1), so no division is
// needed.
func Distance(l Line, p Point) float64 {
	sin, cos := math.Sincos(l.Theta)
	return math.Abs(cos*float64(p.X) + sin*float64(p.Y) - l.Rho)
}

// CountInliers returns how many lines pass strictly closer than threshold
// pixels to p.
func CountInliers(lines []Line, p Point, threshold float64) int {
	n := 0
	for _, l := range lines {
		if Distance(l, p) < threshold {
			n++
		}
	}
	return n
}
