// Package main is the offline replay tool: it runs a recorded frame sequence
// through the vanishing point pipeline and prints the per-frame error.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/logging"
)

const (
	// Flags.
	flagConfig     = "config"
	flagFrames     = "frames"
	flagOverlayDir = "overlay-dir"
	flagLogLevel   = "log-level"
	flagSeed       = "seed"
	flagDesaturate = "desaturate"
)

func main() {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:      "vp-replay",
		Usage:     "replay recorded frames through the vanishing point pipeline",
		UsageText: "vp-replay --frames DIR|GLOB [--config FILE] [--overlay-dir DIR]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagFrames,
				Aliases:  []string{"f"},
				Usage:    "frame directory or glob `PATTERN`, processed in name order",
				Required: true,
			},
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load pipeline configuration from `FILE` (JSON)",
			},
			&cli.StringFlag{
				Name:  flagOverlayDir,
				Usage: "write an annotated PNG per frame into `DIR`",
			},
			&cli.BoolFlag{
				Name:  flagDesaturate,
				Usage: "draw overlays on a grayscale copy of the frame",
			},
			&cli.Uint64Flag{
				Name:  flagSeed,
				Usage: "seed the RANSAC sampler for reproducible runs (0 picks a random seed)",
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Value:   logging.DefaultLevel,
				Usage:   "log level: debug, info, warn, error",
				EnvVars: []string{"VP_MCP_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = logging.New(c.String(flagLogLevel))
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			cfg := config.Default()
			if path := c.String(flagConfig); path != "" {
				var err error
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}

			return replay(replayOptions{
				Config:     cfg,
				Frames:     c.String(flagFrames),
				OverlayDir: c.String(flagOverlayDir),
				Desaturate: c.Bool(flagDesaturate),
				Seed:       c.Uint64(flagSeed),
			}, c.App.Writer, logger)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "vp-replay: %v\n", err)
		os.Exit(1)
	}
}
