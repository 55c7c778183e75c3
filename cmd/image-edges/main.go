package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
	"github.com/ironsheep/image-edges-mcp/internal/imaging"
	"github.com/ironsheep/image-edges-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "image-edges: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "image-edges %s\n", Version)
		fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
	}

	return &cli.App{
		Name:    "image-edges",
		Usage:   "deterministic edge detection with bounding box and anchors, served over MCP",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error; logs go to stderr",
				Value:   "info",
				EnvVars: []string{"IMAGE_EDGES_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "threshold-policy",
				Usage:   "fixed (absolute thresholds) or relative (scaled to the strongest gradient)",
				Value:   edges.ThresholdFixed.String(),
				EnvVars: []string{"IMAGE_EDGES_THRESHOLD_POLICY"},
			},
			&cli.Float64Flag{
				Name:  "high",
				Usage: "fixed policy high threshold",
				Value: edges.DefaultHigh,
			},
			&cli.Float64Flag{
				Name:  "low",
				Usage: "fixed policy low threshold",
				Value: edges.DefaultLow,
			},
			&cli.Float64Flag{
				Name:  "high-ratio",
				Usage: "relative policy high threshold as a fraction of the maximum gradient",
				Value: edges.DefaultHighRatio,
			},
			&cli.Float64Flag{
				Name:  "low-ratio",
				Usage: "relative policy low threshold as a fraction of the high threshold",
				Value: edges.DefaultLowRatio,
			},
			&cli.BoolFlag{
				Name:    "parallel",
				Usage:   "split pipeline stages across goroutines by rows",
				EnvVars: []string{"IMAGE_EDGES_PARALLEL"},
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the MCP server on stdin/stdout (default)",
				Action: serveAction,
			},
			{
				Name:      "detect",
				Usage:     "detect edges in one image and print the result as JSON",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mask",
						Usage: "also write the edge mask as PNG to `FILE`",
					},
					&cli.StringFlag{
						Name:  "overlay",
						Usage: "also write the edge overlay as PNG to `FILE`",
					},
				},
				Action: detectAction,
			},
		},
	}
}

// newLogger builds a JSON logger on stderr; stdout carries the MCP stream.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// configFromFlags maps the global flags onto a detector configuration.
func configFromFlags(c *cli.Context) (edges.Config, error) {
	policy, err := edges.ParseThresholdPolicy(c.String("threshold-policy"))
	if err != nil {
		return edges.Config{}, err
	}

	cfg := edges.DefaultConfig().WithParallel(c.Bool("parallel"))
	switch policy {
	case edges.ThresholdRelative:
		cfg = cfg.WithRelativeThresholds(c.Float64("high-ratio"), c.Float64("low-ratio"))
	default:
		cfg = cfg.WithFixedThresholds(c.Float64("high"), c.Float64("low"))
	}
	return cfg, cfg.Validate()
}

// setup builds the logger and detector shared by every command.
func setup(c *cli.Context) (*zap.Logger, *edges.Detector, error) {
	logger, err := newLogger(c.String("log-level"))
	if err != nil {
		return nil, nil, err
	}
	cfg, err := configFromFlags(c)
	if err != nil {
		return nil, nil, err
	}
	d, err := edges.NewDetector(cfg, edges.WithLogger(logger.Named("detector")))
	if err != nil {
		return nil, nil, err
	}
	return logger, d, nil
}

func serveAction(c *cli.Context) error {
	logger, d, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Stringer("policy", d.Config().Policy),
		zap.Bool("parallel", d.Config().Parallel),
	)

	srv := server.New(d, server.WithLogger(logger), server.WithVersion(Version))
	err = srv.Run(c.Context)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

func detectAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("detect: IMAGE argument required")
	}

	logger, d, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	img, raster, err := imaging.LoadRaster(imaging.NewImageCache(), path)
	if err != nil {
		return err
	}
	res, err := d.Detect(c.Context, raster)
	if err != nil {
		return errors.Wrapf(err, "detect %s", path)
	}

	if maskPath := c.String("mask"); maskPath != "" {
		if err := imgio.Save(maskPath, imaging.MaskImage(res), imgio.PNGEncoder()); err != nil {
			return errors.Wrap(err, "write mask")
		}
		logger.Debug("wrote mask", zap.String("path", maskPath))
	}
	if overlayPath := c.String("overlay"); overlayPath != "" {
		overlay, err := imaging.RenderOverlay(img, res)
		if err != nil {
			return err
		}
		if err := imgio.Save(overlayPath, overlay, imgio.PNGEncoder()); err != nil {
			return errors.Wrap(err, "write overlay")
		}
		logger.Debug("wrote overlay", zap.String("path", overlayPath))
	}

	out, err := imaging.Describe(res, false)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
