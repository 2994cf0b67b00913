package detection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createBandImage draws a white band of pixels with |x*a + y*b - c| <= half
// on black.
func createBandImage(width, height int, a, b, c, half float64) *image.RGBA {
	img := createTestImage(width, height, color.Black)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if math.Abs(float64(x)*a+float64(y)*b-c) <= half {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func newEdgeMap(width, height int) [][]bool {
	edges := make([][]bool, height)
	for y := range edges {
		edges[y] = make([]bool, width)
	}
	return edges
}

func testOptions(width, height int) Options {
	return Options{
		Width:          width,
		Height:         height,
		BlurRadius:     1,
		CannyLow:       60,
		CannyHigh:      180,
		HoughThreshold: 50,
		MaxLines:       20,
	}
}

// hasLine reports whether any line lies within the given tolerances.
func hasLine(lines []Line, thetaDeg, rho, thetaTol, rhoTol float64) bool {
	for _, l := range lines {
		if math.Abs(l.ThetaDegrees-thetaDeg) <= thetaTol && math.Abs(l.Rho-rho) <= rhoTol {
			return true
		}
	}
	return false
}

func TestHoughLines_Horizontal(t *testing.T) {
	edges := newEdgeMap(100, 80)
	for x := 0; x < 100; x++ {
		edges[30][x] = true
	}

	lines, voters := HoughLines(edges, 50, 0)
	assert.Equal(t, 100, voters)
	require.NotEmpty(t, lines)

	top := lines[0]
	assert.Equal(t, 90.0, top.ThetaDegrees)
	assert.Equal(t, 30.0, top.Rho)
	assert.Equal(t, 100, top.Votes)
	for i := 1; i < len(lines); i++ {
		require.LessOrEqual(t, lines[i].Votes, lines[i-1].Votes, "lines not sorted by votes at %d", i)
	}
}

func TestHoughLines_Vertical(t *testing.T) {
	edges := newEdgeMap(100, 80)
	for y := 0; y < 80; y++ {
		edges[y][20] = true
	}

	lines, _ := HoughLines(edges, 50, 1)
	require.Len(t, lines, 1)
	assert.Equal(t, 0.0, lines[0].Theta)
	assert.Equal(t, 20.0, lines[0].Rho)
}

func TestHoughLines_NegativeRho(t *testing.T) {
	// y = x - 20 has its normal at 135°, on the negative side of the origin.
	edges := newEdgeMap(100, 100)
	for x := 20; x < 100; x++ {
		edges[x-20][x] = true
	}

	lines, _ := HoughLines(edges, 50, 1)
	require.Len(t, lines, 1)
	assert.Equal(t, 135.0, lines[0].ThetaDegrees)
	assert.Equal(t, -14.0, lines[0].Rho)
	assert.GreaterOrEqual(t, lines[0].Theta, 0.0)
	assert.Less(t, lines[0].Theta, math.Pi)
}

func TestHoughLines_Threshold(t *testing.T) {
	edges := newEdgeMap(100, 80)
	for x := 0; x < 40; x++ {
		edges[10][x] = true
	}

	// Votes must exceed the threshold.
	lines, _ := HoughLines(edges, 40, 0)
	assert.Empty(t, lines, "40 votes should not pass threshold 40")

	lines, _ = HoughLines(edges, 39, 0)
	assert.NotEmpty(t, lines, "40 votes should pass threshold 39")
}

func TestHoughLines_Empty(t *testing.T) {
	lines, voters := HoughLines(nil, 10, 0)
	assert.Nil(t, lines)
	assert.Zero(t, voters)

	lines, _ = HoughLines(newEdgeMap(50, 50), 10, 0)
	assert.Empty(t, lines)
}

func TestExtractLines_Diagonal(t *testing.T) {
	// Band along x + y = 119: normal at 45°, ρ = 119/√2 ≈ 84.
	img := createBandImage(160, 120, 1, 1, 119, 1)

	result, err := ExtractLines(img, testOptions(160, 120))
	require.NoError(t, err)
	require.NotZero(t, result.Count)
	assert.Len(t, result.Lines, result.Count)
	assert.Positive(t, result.EdgePixels)

	top := result.Lines[:min(5, len(result.Lines))]
	assert.True(t, hasLine(top, 45, 84, 2, 4), "diagonal band not among the strongest lines: %+v", result.Lines)
}

func TestExtractLines_VerticalBandIsFiltered(t *testing.T) {
	img := createBandImage(160, 120, 1, 0, 50, 1)

	result, err := ExtractLines(img, testOptions(160, 120))
	require.NoError(t, err)
	require.NotZero(t, result.Count, "vertical band should produce lines before filtering")

	assert.Empty(t, vanishing.FilterVertical(result.Polar(), 5), "near-vertical lines should be filtered")
}

func TestExtractLines_ResizesFrame(t *testing.T) {
	// The same band at twice the resolution lands on the same line once resized.
	img := createBandImage(320, 240, 1, 1, 238, 2)

	result, err := ExtractLines(img, testOptions(160, 120))
	require.NoError(t, err)
	assert.True(t, hasLine(result.Lines, 45, 84, 2, 5), "resized diagonal band not found: %+v", result.Lines)
}

func TestExtractLines_UniformFrame(t *testing.T) {
	img := createTestImage(160, 120, color.RGBA{100, 100, 100, 255})

	result, err := ExtractLines(img, testOptions(160, 120))
	require.NoError(t, err)
	assert.Zero(t, result.EdgePixels, "uniform frame has no edges")
	assert.Zero(t, result.Count, "uniform frame has no lines")
}

func TestExtractLines_MaxLines(t *testing.T) {
	img := createBandImage(160, 120, 1, 1, 119, 1)
	opts := testOptions(160, 120)
	opts.MaxLines = 2

	result, err := ExtractLines(img, opts)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Count, 2)
}

func TestExtractLines_InvalidOptions(t *testing.T) {
	img := createTestImage(10, 10, color.Black)

	tests := []struct {
		name string
		opts Options
	}{
		{"zero width", Options{Width: 0, Height: 10, HoughThreshold: 10}},
		{"zero height", Options{Width: 10, Height: 0, HoughThreshold: 10}},
		{"zero threshold", Options{Width: 10, Height: 10, HoughThreshold: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractLines(img, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.Default())

	assert.Equal(t, Options{
		Width:          640,
		Height:         480,
		BlurRadius:     1,
		CannyLow:       60,
		CannyHigh:      180,
		HoughThreshold: 100,
		MaxLines:       200,
	}, opts)
}
