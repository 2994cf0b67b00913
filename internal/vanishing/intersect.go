package vanishing

import "math"

// parallelEpsilon is the determinant magnitude below which two lines are
// treated as parallel. cos(π/2) evaluates to ~6e-17 in float64, so an exact
// zero test would accept a horizontal line as intersecting another horizontal
// line at x ≈ 1e19.
const parallelEpsilon = 1e-9

// Intersect returns the intersection of two polar lines.
//
// The 2×2 system
//
//	cos(θ1)·x + sin(θ1)·y = ρ1
//	cos(θ2)·x + sin(θ2)·y = ρ2
//
// is solved with Cramer's rule. found is false when the determinant
// cos(θ1)·sin(θ2) − cos(θ2)·sin(θ1) is zero (parallel or identical lines); the
// returned point is then the zero value and must not be used.
//
// Coordinates are truncated toward zero. No clamping to image bounds is done.
func Intersect(a, b Line) (p Point, found bool) {
	sin1, cos1 := math.Sincos(a.Theta)
	sin2, cos2 := math.Sincos(b.Theta)

	det := cos1*sin2 - cos2*sin1
	if math.Abs(det) < parallelEpsilon {
		return Point{}, false
	}

	x := (sin2*a.Rho - sin1*b.Rho) / det
	y := (cos1*b.Rho - cos2*a.Rho) / det
	return Point{X: truncate(x), Y: truncate(y)}, true
}
