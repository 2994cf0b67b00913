package vanishing

// ComputeError returns the signed horizontal offset of p from the image
// centre as a fraction of the width: -0.5 at the left border, 0 at the centre,
// 0.5 at the right border.
func ComputeError(p Point, width int) float64 {
	if width <= 0 {
		return 0
	}
	w := float64(width)
	return (float64(p.X) - w/2) / w
}
