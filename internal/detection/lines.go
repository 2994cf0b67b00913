package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/imaging"
	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

// houghAngles is the number of θ bins over [0, π), one per degree.
const houghAngles = 180

// Options controls line extraction.
type Options struct {
	// Width and Height are the working resolution frames are resized to.
	Width  int
	Height int

	// BlurRadius is the box blur radius applied before edge detection.
	BlurRadius float64

	// CannyLow and CannyHigh are the hysteresis thresholds (0-255).
	CannyLow  int
	CannyHigh int

	// HoughThreshold is the minimum number of votes a line needs.
	HoughThreshold int

	// MaxLines caps the number of returned lines, strongest first.
	MaxLines int
}

// OptionsFromConfig returns the extraction options of a pipeline configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Width:          cfg.ImageWidth,
		Height:         cfg.ImageHeight,
		BlurRadius:     cfg.BlurRadius,
		CannyLow:       cfg.CannyLowThreshold,
		CannyHigh:      cfg.CannyHighThreshold(),
		HoughThreshold: cfg.HoughThreshold,
		MaxLines:       cfg.MaxLines,
	}
}

// Line is a line found by the Hough transform.
type Line struct {
	Rho          float64 `json:"rho"`
	Theta        float64 `json:"theta"`
	ThetaDegrees float64 `json:"theta_degrees"`

	// Votes is the number of edge pixels on the line.
	Votes int `json:"votes"`
}

// Polar returns the line in the form the estimator consumes.
func (l Line) Polar() vanishing.Line {
	return vanishing.Line{Rho: l.Rho, Theta: l.Theta}
}

// LinesResult contains the lines extracted from one frame.
type LinesResult struct {
	Lines []Line `json:"lines"`
	Count int    `json:"count"`

	// EdgePixels is the number of Canny edge pixels that voted.
	EdgePixels int `json:"edge_pixels"`
}

// Polar returns every extracted line in estimator form, strongest first.
func (r *LinesResult) Polar() []vanishing.Line {
	out := make([]vanishing.Line, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Polar()
	}
	return out
}

// ExtractLines finds the straight lines in a camera frame.
//
// The frame is resized to opts.Width x opts.Height, box blurred, converted to
// grayscale and run through Canny edge detection. A standard Hough transform
// with 1 px and 1° resolution then votes over the edge map. Lines are
// returned with θ in [0, π) and ρ in pixels, which may be negative.
//
// No lines are filtered by angle here; the pipeline drops near-vertical ones.
func ExtractLines(img image.Image, opts Options) (*LinesResult, error) {
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("invalid working size %dx%d", opts.Width, opts.Height)
	}
	if opts.HoughThreshold < 1 {
		return nil, fmt.Errorf("hough threshold must be positive, got %d", opts.HoughThreshold)
	}

	frame := imaging.Normalize(img, opts.Width, opts.Height)
	gray := imaging.Grayscale(imaging.Smooth(frame, opts.BlurRadius))
	edges := imaging.CannyEdges(gray, opts.Width, opts.Height, opts.CannyLow, opts.CannyHigh)

	lines, voters := HoughLines(edges, opts.HoughThreshold, opts.MaxLines)
	return &LinesResult{
		Lines:      lines,
		Count:      len(lines),
		EdgePixels: voters,
	}, nil
}

// HoughLines runs the standard Hough transform over an edge map indexed
// [y][x] and returns the peaks with more than threshold votes, strongest
// first and at most maxLines of them (no limit when maxLines <= 0). The
// second return value is the number of edge pixels that voted.
//
// A peak must beat its neighbours on the lower side and at least tie those on
// the upper side, in both ρ and θ, so a plateau yields a single line.
func HoughLines(edges [][]bool, threshold, maxLines int) ([]Line, int) {
	height := len(edges)
	if height == 0 {
		return nil, 0
	}
	width := len(edges[0])

	maxDist := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	numRho := 2*maxDist + 1

	var sinT, cosT [houghAngles]float64
	for t := 0; t < houghAngles; t++ {
		sinT[t], cosT[t] = math.Sincos(float64(t) * math.Pi / houghAngles)
	}

	// Padded by one cell on every side so neighbour lookups need no bounds checks.
	stride := numRho + 2
	acc := make([]int, (houghAngles+2)*stride)
	cell := func(t, r int) int { return (t+1)*stride + r + 1 }

	voters := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges[y][x] {
				continue
			}
			voters++
			for t := 0; t < houghAngles; t++ {
				r := int(math.Round(float64(x)*cosT[t]+float64(y)*sinT[t])) + maxDist
				acc[cell(t, r)]++
			}
		}
	}

	type peak struct {
		t, r, votes int
	}
	var peaks []peak
	for t := 0; t < houghAngles; t++ {
		for r := 0; r < numRho; r++ {
			i := cell(t, r)
			v := acc[i]
			if v > threshold &&
				v > acc[i-1] && v >= acc[i+1] &&
				v > acc[i-stride] && v >= acc[i+stride] {
				peaks = append(peaks, peak{t: t, r: r, votes: v})
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})
	if maxLines > 0 && len(peaks) > maxLines {
		peaks = peaks[:maxLines]
	}

	lines := make([]Line, len(peaks))
	for i, p := range peaks {
		theta := float64(p.t) * math.Pi / houghAngles
		lines[i] = Line{
			Rho:          float64(p.r - maxDist),
			Theta:        theta,
			ThetaDegrees: float64(p.t),
			Votes:        p.votes,
		}
	}
	return lines, voters
}
