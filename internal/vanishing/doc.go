// Package vanishing estimates the image-plane vanishing point of a set of
// polar lines and turns its horizontal offset into a steering error.
//
// # Line Representation
//
// Lines use the Hough (ρ, θ) parameterization:
//
//	x·cos(θ) + y·sin(θ) = ρ
//
// θ is in radians in [0, π) and ρ is in pixels, possibly negative. Every angle
// comparison in this package is made in radians; the 90° bucket boundary is
// math.Pi/2.
//
// # Algorithm Overview
//
//  1. Preprocessing: FilterVertical drops lines within a tolerance of 0°/180°
//     (parallel to the image's vertical axis).
//  2. Bucketing: Bucket splits the remaining lines by θ < π/2 and θ >= π/2 so
//     each trial samples one line from each side.
//  3. Consensus: Estimator runs a fixed number of trials, intersecting a
//     sampled pair and counting inliers against the whole set. The first
//     hypothesis with the highest count wins.
//  4. Middle point: MiddleX intersects the winning pair with the horizontal
//     mid-line and averages the two x values.
//  5. Error signal: ComputeError normalises x against the image centre.
//
// # Coordinate System
//
// Points are integer pixels with the origin at the top-left corner. Results of
// the estimator are clamped to [0, width] × [0, height]; raw intersections from
// Intersect are not.
//
// # Failure Modes
//
// Estimate returns ErrDegenerateInput when fewer than two lines are available
// and ErrNoConvergence when every sampled pair was parallel. Neither is fatal;
// callers decide how to degrade.
package vanishing
