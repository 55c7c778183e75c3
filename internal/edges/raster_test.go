package edges

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterImage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		img     RasterImage
		wantErr bool
	}{
		{"valid 2x3", RasterImage{Width: 2, Height: 3, Pix: make([]byte, 24)}, false},
		{"valid 1x1", RasterImage{Width: 1, Height: 1, Pix: make([]byte, 4)}, false},
		{"zero width", RasterImage{Width: 0, Height: 3, Pix: nil}, true},
		{"negative height", RasterImage{Width: 2, Height: -1, Pix: nil}, true},
		{"short buffer", RasterImage{Width: 2, Height: 2, Pix: make([]byte, 15)}, true},
		{"long buffer", RasterImage{Width: 2, Height: 2, Pix: make([]byte, 17)}, true},
		{"rgb instead of rgba", RasterImage{Width: 2, Height: 2, Pix: make([]byte, 12)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestLuma(t *testing.T) {
	img := RasterImage{
		Width:  4,
		Height: 1,
		Pix: []byte{
			255, 0, 0, 255, // red
			0, 255, 0, 0, // green, fully transparent
			0, 0, 255, 128, // blue
			200, 200, 200, 255, // gray
		},
	}

	got := luma(img)
	require.Equal(t, 4, got.Width)
	require.Equal(t, 1, got.Height)

	assert.InDelta(t, 0.299*255, got.At(0, 0), 1e-9)
	assert.InDelta(t, 0.587*255, got.At(1, 0), 1e-9, "alpha must be ignored")
	assert.InDelta(t, 0.114*255, got.At(2, 0), 1e-9)
	assert.InDelta(t, 200.0, got.At(3, 0), 1e-9)
}

func TestLuma_DoesNotModifyInput(t *testing.T) {
	img := noiseRaster(8, 8, 1)
	before := append([]byte(nil), img.Pix...)

	luma(img)

	assert.Equal(t, before, img.Pix)
}
