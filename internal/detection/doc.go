// Package detection extracts straight lines from camera frames.
//
// ExtractLines is the front end of the vanishing point pipeline. It prepares
// a frame with the imaging package (resize, 3x3 box blur, grayscale, Canny)
// and runs a standard Hough transform over the edge map.
//
// # Line Representation
//
// Lines are returned in Hough normal form, x·cos(θ) + y·sin(θ) = ρ, with
// the origin at the top-left pixel and Y growing downward:
//   - θ is in radians in [0, π), quantised to 1°
//   - ρ is in pixels, quantised to 1 px, and may be negative
//
// A line with θ near 0 or π runs close to vertical in the image.
//
// # Performance Considerations
//
// The transform costs 180 accumulator updates per edge pixel, so frames are
// resized to the configured working resolution first. Raising the Canny
// thresholds reduces the number of voting pixels.
package detection
