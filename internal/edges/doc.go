// Package edges implements a deterministic Canny-style edge detection pipeline
// that turns an RGBA raster into a binary edge mask, the bounding box of the
// detected edges and a fixed set of labelled anchor points.
//
// # Pipeline
//
// The stages run strictly in order, each one allocating its own output buffer:
//
//  1. Luma reduction: 0.299*R + 0.587*G + 0.114*B, alpha ignored.
//  2. Smoothing: separable binomial kernel [1 4 6 4 1]/16 applied
//     horizontally then vertically.
//  3. Gradient: Sobel operators, magnitude and direction in degrees.
//  4. Non-maximum suppression along the quantized gradient direction.
//  5. Hysteresis: strong/weak/none classification followed by 8-connected
//     propagation from strong pixels using an explicit worklist.
//  6. Region summary: inclusive bounding box plus anchors produced by an
//     AnchorStrategy.
//
// # Border Inset
//
// Smoothing leaves a 2-pixel border at zero and the gradient stage skips one
// more ring, so no pixel within 3 cells of the image border can ever be an
// edge. This inset is part of the output contract.
//
// # Coordinate System
//
// Coordinates are 0-based with the origin at the top-left corner. X grows to
// the right and Y grows downward. Bounding boxes are inclusive on all sides.
//
// # Concurrency
//
// A Detector holds only immutable configuration and may be shared between
// goroutines. Every Detect call allocates fresh buffers. Runner adds the
// generation-token handoff used by interactive callers that replace the
// source image while a previous run is still in flight.
//
// # Errors
//
// Failures wrap one of ErrInvalidInput, ErrPixelAccess or ErrComputation and
// can be matched with errors.Is. A failed run never returns a mask.
package edges
