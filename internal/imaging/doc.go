// Package imaging bridges decoded image files and the edge detection pipeline.
//
// It loads and caches source images, converts them into the raster form the
// pipeline consumes, and renders detection results back into images: the
// binary mask, an overlay of edges and anchors on the source, and crops of the
// detected bounding box. Everything that leaves the package as image data is
// base64-encoded PNG.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward. Bounding boxes from the pipeline are
// inclusive on all four sides; crop regions passed to Crop are half-open,
// (x1,y1) inclusive and (x2,y2) exclusive.
//
// # Colours
//
// Anchors are drawn and reported in a fixed palette keyed by their tag:
// primary is green, secondary blue, tertiary purple. Edge pixels in overlays
// are teal (#00FFC8) and are screen-blended so the source stays visible.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and never modify their inputs.
//
// # Error Handling
//
// Loading failures are classified with the pipeline's sentinels from package
// edges: unreadable or empty images yield edges.ErrPixelAccess, undecodable
// files and invalid regions yield edges.ErrInvalidInput. Match them with
// errors.Is.
package imaging
