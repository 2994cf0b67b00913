package vanishing

import "math"

// MiddleX returns the x coordinate midway between the points where lines[a]
// and lines[b] cross the horizontal mid-line y = height/2.
//
// Each crossing is clamped to [0, width]. A line parallel to the mid-line
// falls back to the left border when θ < π/2 and the right border otherwise.
// The mean of the two x values is clamped again.
//
// If a or b is not a valid index into lines, for example because no
// hypothesis was accepted for the frame, MiddleX returns width/2.
func MiddleX(lines []Line, a, b, width, height int) int {
	if a < 0 || a >= len(lines) || b < 0 || b >= len(lines) {
		return width / 2
	}

	mid := Line{Rho: float64(height) / 2, Theta: math.Pi / 2}
	x1 := borderCrossing(lines[a], mid, width)
	x2 := borderCrossing(lines[b], mid, width)

	return clamp((x1+x2)/2, 0, width)
}

func borderCrossing(l, mid Line, width int) int {
	p, ok := Intersect(l, mid)
	if ok {
		return clamp(p.X, 0, width)
	}
	if l.Theta < math.Pi/2 {
		return 0
	}
	return width
}
