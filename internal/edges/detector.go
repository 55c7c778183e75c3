package edges

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Stats summarises one pipeline run.
type Stats struct {
	// MaxGradient is the largest gradient magnitude before suppression.
	MaxGradient float64 `json:"max_gradient"`

	// HighThreshold and LowThreshold are the values actually applied.
	HighThreshold float64 `json:"high_threshold"`
	LowThreshold  float64 `json:"low_threshold"`

	StrongSeeds  int `json:"strong_seeds"`
	PromotedWeak int `json:"promoted_weak"`
	DroppedWeak  int `json:"dropped_weak"`
	EdgePixels   int `json:"edge_pixels"`
}

// Result is the output of a successful run.
//
// BoundingBox is nil exactly when the mask holds no Edge pixel, and Anchors is
// empty exactly then.
type Result struct {
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Mask        Mask          `json:"-"`
	BoundingBox *BoundingBox  `json:"bounding_box"`
	Anchors     []AnchorPoint `json:"anchors"`
	Stats       Stats         `json:"stats"`
}

// Option customises a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for debug output. Defaults to a no-op.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithAnchorStrategy replaces the default FractionalAnchors strategy.
func WithAnchorStrategy(s AnchorStrategy) Option {
	return func(d *Detector) {
		if s != nil {
			d.anchors = s
		}
	}
}

// Detector runs the pipeline with a fixed configuration. It keeps no state
// between calls and is safe for concurrent use.
type Detector struct {
	cfg     Config
	anchors AnchorStrategy
	logger  *zap.Logger
}

// NewDetector validates cfg and returns a Detector.
func NewDetector(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Detector{
		cfg:     cfg,
		anchors: FractionalAnchors{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect runs every stage over img and returns the mask, bounding box and
// anchors.
//
// The input is validated before any buffer is allocated. ctx is checked
// between stages; a cancelled run returns the context error and no result.
func (d *Detector) Detect(ctx context.Context, img RasterImage) (*Result, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	rows := rowRunner(serialRows)
	if d.cfg.Parallel {
		rows = parallelRows
	}
	start := time.Now()
	w, h := img.Width, img.Height

	intensity := luma(img)
	smoothed := smooth(intensity, rows)
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "edge detection cancelled after smoothing")
	}

	magnitude, direction, err := gradient(smoothed, rows)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "edge detection cancelled after gradient")
	}

	suppressed := suppress(magnitude, direction, rows)
	maxGradient := floats.Max(magnitude.Data)
	t := d.cfg.thresholds(maxGradient)
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "edge detection cancelled after suppression")
	}

	classes, seeds := classify(suppressed, t)
	mask, ls := link(classes, seeds, w, h)

	box, anchors, err := summarize(mask, w, d.anchors)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Width:       w,
		Height:      h,
		Mask:        mask,
		BoundingBox: box,
		Anchors:     anchors,
		Stats: Stats{
			MaxGradient:   maxGradient,
			HighThreshold: t.high,
			LowThreshold:  t.low,
			StrongSeeds:   len(seeds),
			PromotedWeak:  ls.promoted,
			DroppedWeak:   ls.dropped,
			EdgePixels:    len(seeds) + ls.promoted,
		},
	}

	d.logger.Debug("edge detection complete",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Stringer("policy", d.cfg.Policy),
		zap.Float64("max_gradient", maxGradient),
		zap.Int("edge_pixels", res.Stats.EdgePixels),
		zap.Int("anchors", len(anchors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Detect runs the pipeline with DefaultConfig and FractionalAnchors.
func Detect(ctx context.Context, img RasterImage) (*Result, error) {
	d, err := NewDetector(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return d.Detect(ctx, img)
}
