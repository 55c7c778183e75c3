package edges

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Outcome is delivered once per non-superseded Runner submission.
type Outcome struct {
	Generation uint64
	Result     *Result
	Err        error
}

// Runner runs detections off the caller's goroutine and tags each one with a
// monotonically increasing generation. Submitting a new image cancels the
// previous in-flight run, and a run that finishes after a newer submission
// is discarded: its channel is closed without a value.
type Runner struct {
	detect func(ctx context.Context, img RasterImage) (*Result, error)
	logger *zap.Logger

	generation atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner returns a Runner backed by d. A nil logger disables logging.
func NewRunner(d *Detector, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		detect: d.Detect,
		logger: logger,
	}
}

// Submit starts a detection of img and returns its generation and a channel
// that yields at most one Outcome.
func (r *Runner) Submit(ctx context.Context, img RasterImage) (uint64, <-chan Outcome) {
	return r.submit(ctx, r.detect, img)
}

// SubmitWith is Submit using d instead of the Runner's own detector. The run
// shares the Runner's generation sequence, so it supersedes and is superseded
// by any other submission.
func (r *Runner) SubmitWith(ctx context.Context, d *Detector, img RasterImage) (uint64, <-chan Outcome) {
	return r.submit(ctx, d.Detect, img)
}

func (r *Runner) submit(
	ctx context.Context,
	detect func(context.Context, RasterImage) (*Result, error),
	img RasterImage,
) (uint64, <-chan Outcome) {
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	gen := r.generation.Inc()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	r.mu.Unlock()

	out := make(chan Outcome, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(out)
		defer cancel()

		res, err := detect(runCtx, img)

		r.mu.Lock()
		current := r.generation.Load() == gen
		if current {
			r.cancel = nil
		}
		r.mu.Unlock()

		if !current {
			r.logger.Info("discarding superseded edge detection", zap.Uint64("generation", gen))
			return
		}
		out <- Outcome{Generation: gen, Result: res, Err: err}
	}()

	return gen, out
}

// Current returns the most recently submitted generation, 0 before the first
// submission.
func (r *Runner) Current() uint64 {
	return r.generation.Load()
}

// Cancel aborts the in-flight run, if any. Its outcome still arrives, carrying
// the context error.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Wait blocks until every submitted run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
