package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Normalize resizes a frame to the working resolution of the pipeline.
//
// Frames already at width x height are copied unchanged so that callers may
// draw on the result without touching the cached original.
//
// Parameters:
//   - img: Source frame in any color model.
//   - width, height: Target size in pixels. Both must be positive.
//
// Returns:
//   - *image.NRGBA: The frame at the requested size, with bounds starting at (0,0).
func Normalize(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Linear)
}

// Smooth applies a box blur of the given radius. A radius of 1 is the 3x3
// box filter run before edge detection; zero or negative radii return a copy.
func Smooth(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return imaging.Clone(img)
	}
	return blur.Box(img, radius)
}

// Grayscale converts an image to luminance values in [0, 1], indexed [y][x].
// bild writes the luminance into every colour channel of an RGBA image, so
// only the red byte of each 4-byte pixel is read.
func Grayscale(img image.Image) [][]float64 {
	g := effect.Grayscale(img)
	b := g.Bounds()

	out := make([][]float64, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := make([]float64, b.Dx())
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := range row {
			row[x] = float64(g.Pix[off+4*x]) / 255.0
		}
		out[y] = row
	}
	return out
}
