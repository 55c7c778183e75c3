package imaging

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
)

// CropResult contains the cropped image data
type CropResult struct {
	// X and Y locate the crop's top-left corner in the source image.
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts the region [x1,x2) x [y1,y2) from an image, optionally scaling
// it. A scale <= 0 or equal to 1 leaves the size unchanged.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, errors.Wrapf(edges.ErrInvalidInput, "crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, errors.Wrap(edges.ErrInvalidInput, "invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, image.Rect(x1, y1, x2, y2))

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	data, err := encodePNG(cropped)
	if err != nil {
		return nil, errors.Wrap(err, "cropped image")
	}

	return &CropResult{
		X:           x1,
		Y:           y1,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: data,
		MimeType:    pngMime,
	}, nil
}

// CropToBox crops img to a detected bounding box grown by margin pixels on
// every side and clipped to the image. Box coordinates are relative to the
// image origin.
func CropToBox(img image.Image, box *edges.BoundingBox, margin int, scale float64) (*CropResult, error) {
	if box == nil {
		return nil, errors.Wrap(edges.ErrInvalidInput, "no edges detected, nothing to crop")
	}
	if margin < 0 {
		return nil, errors.Wrapf(edges.ErrInvalidInput, "margin must be >= 0, got %d", margin)
	}

	b := img.Bounds()
	x1 := max(b.Min.X, b.Min.X+box.MinX-margin)
	y1 := max(b.Min.Y, b.Min.Y+box.MinY-margin)
	x2 := min(b.Max.X, b.Min.X+box.MaxX+1+margin)
	y2 := min(b.Max.Y, b.Min.Y+box.MaxY+1+margin)

	return Crop(img, x1, y1, x2, y2, scale)
}
