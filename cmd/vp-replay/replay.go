package main

import (
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	imgtools "github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/detection"
	"github.com/ironsheep/vanishing-point-mcp/internal/imaging"
	"github.com/ironsheep/vanishing-point-mcp/internal/pipeline"
	"github.com/ironsheep/vanishing-point-mcp/internal/vanishing"
)

type replayOptions struct {
	Config     config.Config
	Frames     string
	OverlayDir string
	Desaturate bool

	// Seed fixes the sampler when non-zero.
	Seed uint64
}

// replay processes every frame matched by opts.Frames in name order, writes
// one table row per frame and a summary to out, and returns the first frame
// that could not be read. Frames without an estimate are reported, not fatal.
func replay(opts replayOptions, out io.Writer, logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	paths, err := imaging.ListFrames(opts.Frames)
	if err != nil {
		return err
	}

	var sampler vanishing.Sampler
	if opts.Seed != 0 {
		sampler = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	}
	p, err := pipeline.New(opts.Config, sampler, logger)
	if err != nil {
		return err
	}

	if opts.OverlayDir != "" {
		if err := os.MkdirAll(opts.OverlayDir, 0o755); err != nil {
			return fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	logger.Infow("replaying frames", "frames", len(paths), "source", opts.Frames)

	// Each frame is read once, so the cache only has to hold the current one.
	cache := imaging.NewFrameCache(1)
	extract := detection.OptionsFromConfig(opts.Config)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "frame\tfile\traw\tfiltered\tmiddle\tinliers\terror\tstatus")

	results := make([]pipeline.FrameResult, 0, len(paths))
	for _, path := range paths {
		img, err := cache.Load(path)
		if err != nil {
			return fmt.Errorf("frame %s: %w", path, err)
		}
		frame := imaging.Normalize(img, opts.Config.ImageWidth, opts.Config.ImageHeight)

		lines, err := detection.ExtractLines(frame, extract)
		if err != nil {
			return fmt.Errorf("frame %s: %w", path, err)
		}
		polar := lines.Polar()
		res := p.Process(polar)
		results = append(results, res)

		status := "ok"
		if res.Degraded {
			status = res.Reason
		}
		fmt.Fprintf(tw, "%d\t%s\t(%d,%d)\t(%d,%d)\t%d\t%d\t%+.4f\t%s\n",
			res.Frame, filepath.Base(path),
			res.Raw.X, res.Raw.Y,
			res.Filtered.X, res.Filtered.Y,
			res.MiddleFiltered.X,
			res.Inliers, res.Error, status)

		if opts.OverlayDir != "" {
			usable := vanishing.FilterVertical(polar, opts.Config.VerticalExclusionAngleDeg)
			if err := writeOverlay(opts.OverlayDir, path, frame, res, usable, opts.Desaturate); err != nil {
				return err
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := pipeline.Summarize(results)
	fmt.Fprintf(out, "\nframes: %d  estimated: %d  degraded: %d\n", s.Frames, s.Estimated, s.Degraded)
	fmt.Fprintf(out, "error: mean %+.4f  stddev %.4f  mean inliers: %.1f\n", s.MeanError, s.StdDevError, s.MeanInliers)
	return nil
}

// writeOverlay saves the annotated frame as <dir>/<frame name>.overlay.png.
func writeOverlay(dir, path string, frame *image.NRGBA, res pipeline.FrameResult, lines []vanishing.Line, desaturate bool) error {
	ov := imaging.Overlay{
		Lines:      lines,
		Filtered:   &res.Filtered,
		Error:      res.Error,
		ShowError:  true,
		Desaturate: desaturate,
	}
	if res.Estimated {
		ov.BestPair = res.BestPair[:]
		ov.Raw = &res.Raw
		ov.Middle = &res.MiddleFiltered
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".overlay.png"
	if err := imgtools.Save(imaging.Render(frame, ov), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to write overlay for %s: %w", path, err)
	}
	return nil
}
