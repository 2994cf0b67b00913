// Package imaging loads camera frames and prepares them for line extraction.
//
// It covers the pixel-level stages that surround the vanishing point
// estimator: decoding and caching frames, resizing them to the working
// resolution, box blur, grayscale conversion, Canny edge detection, and
// drawing diagnostic overlays of an estimate back onto a frame.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Luminance and edge maps
// are indexed [y][x].
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. The other functions are stateless
// and return new images rather than modifying their input.
package imaging
