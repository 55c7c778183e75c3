package edges

import "github.com/pkg/errors"

// RasterImage is a row-major RGBA buffer with 8 bits per channel.
//
// The caller owns the buffer; the pipeline only reads it.
type RasterImage struct {
	Width  int
	Height int

	// Pix holds R, G, B, A for each pixel, so len(Pix) == 4*Width*Height.
	Pix []byte
}

// Validate reports ErrInvalidInput when the dimensions are not positive or
// the buffer length does not match them.
func (r RasterImage) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return errors.Wrapf(ErrInvalidInput, "dimensions %dx%d must be positive", r.Width, r.Height)
	}
	if want := 4 * r.Width * r.Height; len(r.Pix) != want {
		return errors.Wrapf(ErrInvalidInput, "pixel buffer holds %d bytes, want %d for %dx%d",
			len(r.Pix), want, r.Width, r.Height)
	}
	return nil
}

// Field is a dense row-major buffer of one float64 per pixel.
type Field struct {
	Width  int
	Height int
	Data   []float64
}

func newField(width, height int) *Field {
	return &Field{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// At returns the value at (x, y).
func (f *Field) At(x, y int) float64 {
	return f.Data[y*f.Width+x]
}

// luma reduces the raster to a single intensity channel using ITU-R BT.601
// weights.
func luma(img RasterImage) *Field {
	out := newField(img.Width, img.Height)
	for i := range out.Data {
		p := img.Pix[4*i : 4*i+3 : 4*i+3]
		out.Data[i] = 0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])
	}
	return out
}
