package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect renders the Canny edge map of an image, for inspecting what the
// line extractor sees.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - thresholdLow: Low hysteresis threshold (0-255).
//   - thresholdHigh: High hysteresis threshold (0-255).
//   - blurRadius: Gaussian blur radius applied before the gradient. Zero disables it.
//
// Returns:
//   - *EdgeDetectResult: Grayscale edge image as base64 PNG.
//   - error: Non-nil if PNG encoding fails.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int, blurRadius float64) (*EdgeDetectResult, error) {
	src := img
	if blurRadius > 0 {
		src = blur.Gaussian(img, blurRadius)
	}

	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	edges := CannyEdges(Grayscale(src), width, height, thresholdLow, thresholdHigh)

	out := image.NewGray(image.Rect(0, 0, width, height))
	count := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] {
				out.SetGray(x, y, color.Gray{Y: 255})
				count++
			}
		}
	}

	encoded, err := encodePNG(out)
	if err != nil {
		return nil, err
	}

	return &EdgeDetectResult{
		Width:       width,
		Height:      height,
		EdgePixels:  count,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// CannyEdges computes a binary edge map from luminance values in [0, 1].
//
// Thresholds are on the 0-255 scale. The stages are:
//
//  1. Gradient: Sobel operators for X and Y, magnitude = sqrt(Gx² + Gy²)
//  2. Non-maximum suppression: keep only local maxima along the gradient
//     direction, thinning edges to one pixel
//  3. Hysteresis: pixels at or above thresholdHigh seed edges, which then
//     grow through 8-connected pixels at or above thresholdLow
//
// The returned slice is indexed [y][x]. No smoothing is applied; callers blur
// first when the input is noisy.
func CannyEdges(gray [][]float64, width, height, thresholdLow, thresholdHigh int) [][]bool {
	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := gray[clamp(y+ky, 0, height-1)][clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			n1, n2 := gradientNeighbours(magnitude, x, y, direction[y][x])
			if mag := magnitude[y][x]; mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	low := float64(thresholdLow) / 255.0
	high := float64(thresholdHigh) / 255.0

	edges := make([][]bool, height)
	for y := range edges {
		edges[y] = make([]bool, width)
	}

	var stack []image.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] > 0 && suppressed[y][x] >= high && !edges[y][x] {
				edges[y][x] = true
				stack = append(stack, image.Pt(x, y))
			}
		}
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height || edges[ny][nx] {
					continue
				}
				if v := suppressed[ny][nx]; v > 0 && v >= low {
					edges[ny][nx] = true
					stack = append(stack, image.Pt(nx, ny))
				}
			}
		}
	}

	return edges
}

// gradientNeighbours returns the two magnitudes adjacent to (x, y) along the
// gradient direction, quantised to 45°. Y grows downwards, so a positive angle
// points down and to the right.
func gradientNeighbours(mag [][]float64, x, y int, angle float64) (float64, float64) {
	switch {
	case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
		return mag[y][x-1], mag[y][x+1]
	case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
		return mag[y-1][x-1], mag[y+1][x+1]
	case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
		return mag[y-1][x], mag[y+1][x]
	default:
		return mag[y-1][x+1], mag[y+1][x-1]
	}
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
