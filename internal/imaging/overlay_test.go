package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

func isColor(img image.Image, x, y int, want color.RGBA) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(b>>8) == want.B
}

func TestRender_Markers(t *testing.T) {
	img := createInMemoryImage(100, 80, color.Black)
	raw := vanishing.Point{X: 20, Y: 30}
	filtered := vanishing.Point{X: 70, Y: 40}
	middle := vanishing.Point{X: 80, Y: 40}

	out := Render(img, Overlay{Raw: &raw, Filtered: &filtered, Middle: &middle})
	def := DefaultPalette()

	assert.True(t, isColor(out, 20, 30, parseColor(def.Raw, "")), "raw marker not drawn")
	assert.True(t, isColor(out, 73, 40, parseColor(def.Filtered, "")), "filtered marker arm not drawn")
	assert.True(t, isColor(out, 80, 43, parseColor(def.Middle, "")), "middle marker not drawn")
	assert.True(t, isColor(out, 50, 0, parseColor(def.Crosshair, "")), "centre crosshair not drawn")
	assert.True(t, isColor(out, 5, 70, color.RGBA{0, 0, 0, 255}), "background should be untouched")
	assert.True(t, isColor(img, 20, 30, color.RGBA{0, 0, 0, 255}), "Render must not modify its input")
}

func TestRender_Lines(t *testing.T) {
	img := createInMemoryImage(100, 100, color.Black)
	// y = 60 and x = 25
	horizontal := vanishing.Line{Rho: 60, Theta: math.Pi / 2}
	vertical := vanishing.Line{Rho: 25, Theta: 0}

	out := Render(img, Overlay{
		Lines:    []vanishing.Line{horizontal},
		BestPair: []vanishing.Line{vertical},
		Palette:  Palette{Lines: "#00ff00", BestPair: "#0000ff"},
	})

	for _, x := range []int{0, 30, 99} {
		assert.True(t, isColor(out, x, 60, color.RGBA{0, 255, 0, 255}), "line pixel (%d,60) not drawn", x)
	}
	for _, y := range []int{0, 59, 99} {
		assert.True(t, isColor(out, 25, y, color.RGBA{0, 0, 255, 255}), "best pair pixel (25,%d) not drawn", y)
	}
}

func TestRender_Desaturate(t *testing.T) {
	img := createInMemoryImage(20, 20, color.RGBA{255, 0, 0, 255})
	out := Render(img, Overlay{Desaturate: true})

	r, g, b, _ := out.At(3, 3).RGBA()
	assert.Equal(t, r, g, "desaturated pixel should be gray")
	assert.Equal(t, g, b, "desaturated pixel should be gray")
}

func TestRenderPNG(t *testing.T) {
	img := createInMemoryImage(64, 48, color.RGBA{128, 128, 128, 255})
	p := vanishing.Point{X: 32, Y: 10}

	result, err := RenderPNG(img, Overlay{Filtered: &p, Error: -0.125, ShowError: true})
	require.NoError(t, err)
	assert.Equal(t, 64, result.Width)
	assert.Equal(t, 48, result.Height)
	assert.Equal(t, "image/png", result.MimeType)

	decoded := decodeBase64PNG(t, result.ImageBase64)
	assert.Equal(t, 64, decoded.Bounds().Dx())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name     string
		hex      string
		fallback string
		want     color.RGBA
	}{
		{"lowercase", "#ff8000", "#000000", color.RGBA{255, 128, 0, 255}},
		{"uppercase", "#00FF00", "#000000", color.RGBA{0, 255, 0, 255}},
		{"empty uses fallback", "", "#0000ff", color.RGBA{0, 0, 255, 255}},
		{"malformed uses fallback", "red", "#ffffff", color.RGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseColor(tt.hex, tt.fallback))
		})
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}
	drawLabel(img, 10, 10, "-0.125", fg, bg)

	hasWhite, hasBackground := false, false
	for y := 9; y < 17; y++ {
		for x := 9; x < 34; x++ {
			c := img.RGBAAt(x, y)
			if c == fg {
				hasWhite = true
			}
			if c == bg {
				hasBackground = true
			}
		}
	}
	assert.True(t, hasWhite, "label should have white pixels (text)")
	assert.True(t, hasBackground, "label should have background pixels")

	// Minus sign: middle row of the first glyph.
	assert.Equal(t, fg, img.RGBAAt(11, 12), "minus sign glyph not drawn")
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	assert.NotPanics(t, func() {
		drawLabel(img, 15, 15, "0.500", fg, bg)
		drawLabel(img, 0, 0, "", fg, bg)
		drawLabel(img, -5, -5, "abc", fg, bg)
	})
}
