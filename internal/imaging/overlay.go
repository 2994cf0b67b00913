package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// Palette holds the overlay colors as "#RRGGBB" strings. Entries that fail to
// parse fall back to the corresponding DefaultPalette color.
type Palette struct {
	Crosshair string `json:"crosshair,omitempty"`
	Lines     string `json:"lines,omitempty"`
	BestPair  string `json:"best_pair,omitempty"`
	Raw       string `json:"raw,omitempty"`
	Filtered  string `json:"filtered,omitempty"`
	Middle    string `json:"middle,omitempty"`
}

// DefaultPalette returns the colors used when none are given.
func DefaultPalette() Palette {
	return Palette{
		Crosshair: "#ffffff",
		Lines:     "#4080ff",
		BestPair:  "#ffd000",
		Raw:       "#ff3030",
		Filtered:  "#30ff30",
		Middle:    "#ff30ff",
	}
}

// Overlay describes what to draw over a frame.
type Overlay struct {
	// Lines are all lines considered for the frame, drawn thin.
	Lines []vanishing.Line

	// BestPair is the winning line pair, drawn on top of Lines.
	BestPair []vanishing.Line

	Raw      *vanishing.Point
	Filtered *vanishing.Point
	Middle   *vanishing.Point

	// Error is printed in the top-left corner when ShowError is set.
	Error     float64
	ShowError bool

	// Desaturate renders the frame in grayscale under the markings.
	Desaturate bool

	Palette Palette
}

// OverlayResult contains the annotated frame encoded as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Render draws the overlay onto a copy of img and returns it.
//
// The frame centre is marked by a vertical crosshair line, the reference the
// error signal is measured against. Points outside the frame are skipped.
func Render(img image.Image, ov Overlay) *image.NRGBA {
	var canvas *image.NRGBA
	if ov.Desaturate {
		canvas = imaging.Grayscale(img)
	} else {
		canvas = imaging.Clone(img)
	}

	def := DefaultPalette()
	crosshair := parseColor(ov.Palette.Crosshair, def.Crosshair)
	lineColor := parseColor(ov.Palette.Lines, def.Lines)
	pairColor := parseColor(ov.Palette.BestPair, def.BestPair)

	b := canvas.Bounds()
	cx := b.Dx() / 2
	for y := 0; y < b.Dy(); y += 2 {
		canvas.Set(cx, y, crosshair)
	}

	for _, l := range ov.Lines {
		drawPolarLine(canvas, l, lineColor)
	}
	for _, l := range ov.BestPair {
		drawPolarLine(canvas, l, pairColor)
	}

	if ov.Middle != nil {
		drawMarker(canvas, *ov.Middle, parseColor(ov.Palette.Middle, def.Middle))
	}
	if ov.Raw != nil {
		drawMarker(canvas, *ov.Raw, parseColor(ov.Palette.Raw, def.Raw))
	}
	if ov.Filtered != nil {
		drawMarker(canvas, *ov.Filtered, parseColor(ov.Palette.Filtered, def.Filtered))
	}

	if ov.ShowError {
		drawLabel(canvas, 2, 2, fmt.Sprintf("%.3f", ov.Error),
			color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
	}

	return canvas
}

// RenderPNG draws the overlay and encodes the result as base64 PNG.
func RenderPNG(img image.Image, ov Overlay) (*OverlayResult, error) {
	canvas := Render(img, ov)
	encoded, err := encodePNG(canvas)
	if err != nil {
		return nil, err
	}
	b := canvas.Bounds()
	return &OverlayResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// parseColor parses a hex color, returning the fallback color when hex is
// empty or malformed.
func parseColor(hex, fallback string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(fallback)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawPolarLine draws x*cos(θ) + y*sin(θ) = ρ across the whole image,
// stepping along whichever axis the line is closer to.
func drawPolarLine(img draw.Image, l vanishing.Line, c color.Color) {
	b := img.Bounds()
	sin, cos := math.Sincos(l.Theta)

	if math.Abs(sin) >= math.Abs(cos) {
		for x := 0; x < b.Dx(); x++ {
			y := int(math.Round((l.Rho - float64(x)*cos) / sin))
			if y >= 0 && y < b.Dy() {
				img.Set(b.Min.X+x, b.Min.Y+y, c)
			}
		}
		return
	}
	for y := 0; y < b.Dy(); y++ {
		x := int(math.Round((l.Rho - float64(y)*sin) / cos))
		if x >= 0 && x < b.Dx() {
			img.Set(b.Min.X+x, b.Min.Y+y, c)
		}
	}
}

// drawMarker draws a 7x7 cross centred on p.
func drawMarker(img draw.Image, p vanishing.Point, c color.Color) {
	b := img.Bounds()
	for d := -3; d <= 3; d++ {
		for _, q := range [2]image.Point{image.Pt(p.X+d, p.Y), image.Pt(p.X, p.Y+d)} {
			if q.X >= 0 && q.X < b.Dx() && q.Y >= 0 && q.Y < b.Dy() {
				img.Set(b.Min.X+q.X, b.Min.Y+q.Y, c)
			}
		}
	}
}

// drawLabel draws text with a 3x5 pixel font at the given position.
// Only digits, sign and decimal point have glyphs; other runes leave a gap.
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'-': {"000", "000", "111", "000", "000"},
		'.': {"000", "000", "000", "000", "010"},
	}

	bounds := img.Bounds()
	inside := func(px, py int) bool {
		return px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y
	}

	const charWidth, labelHeight = 4, 7
	labelWidth := len(text) * charWidth

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if inside(x+dx, y+dy) {
				img.Set(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' && inside(cx+col, y+row) {
					img.Set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
