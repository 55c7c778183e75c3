package edges

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports a malformed raster or configuration. It is
	// detected before any stage runs.
	ErrInvalidInput = errors.New("edges: invalid input")

	// ErrPixelAccess reports that pixel data could not be read from the image
	// source. It is raised by loaders before the pipeline is called.
	ErrPixelAccess = errors.New("edges: pixel data not readable")

	// ErrComputation reports an unexpected numerical failure inside the
	// pipeline. The run is aborted without a mask.
	ErrComputation = errors.New("edges: computation failed")
)
