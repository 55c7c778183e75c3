package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
)

// decodeBase64PNG decodes a base64 PNG payload.
func decodeBase64PNG(t *testing.T, data string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	result, err := Crop(img, 0, 0, 50, 50, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	decodeBase64PNG(t, result.ImageBase64)
}

func TestCrop_WithScale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name         string
		scale        float64
		wantW, wantH int
		x2, y2       int
	}{
		{"scale up", 2.0, 100, 100, 50, 50},
		{"scale down", 0.5, 50, 50, 100, 100},
		{"zero ignored", 0, 100, 100, 100, 100},
		{"tiny clamps to 1px", 0.001, 1, 1, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, 0, 0, tt.x2, tt.y2, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"negative x1", -1, 0, 50, 50},
		{"x2 past edge", 0, 0, 101, 50},
		{"y2 past edge", 0, 0, 50, 101},
		{"empty width", 10, 10, 10, 50},
		{"inverted height", 10, 50, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2, 1.0)
			if !errors.Is(err, edges.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createInMemoryImage(20, 20, color.RGBA{0, 0, 0, 255})
	img.Set(15, 12, color.RGBA{0, 255, 0, 255})

	result, err := Crop(img, 10, 10, 20, 20, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	decoded := decodeBase64PNG(t, result.ImageBase64)
	_, g, _, _ := decoded.At(5, 2).RGBA()
	if g>>8 != 255 {
		t.Errorf("expected green at (5,2) of the crop, got g=%d", g>>8)
	}
	if result.X != 10 || result.Y != 10 {
		t.Errorf("origin: got (%d,%d), want (10,10)", result.X, result.Y)
	}
}

func TestCropToBox(t *testing.T) {
	img := createInMemoryImage(100, 80, color.White)
	box := &edges.BoundingBox{MinX: 20, MinY: 10, MaxX: 29, MaxY: 49}

	tests := []struct {
		name         string
		margin       int
		wantX, wantY int
		wantW, wantH int
	}{
		{"tight", 0, 20, 10, 10, 40},
		{"with margin", 5, 15, 5, 20, 50},
		{"margin clipped to image", 15, 5, 0, 40, 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CropToBox(img, box, tt.margin, 1.0)
			if err != nil {
				t.Fatalf("CropToBox failed: %v", err)
			}
			if result.X != tt.wantX || result.Y != tt.wantY {
				t.Errorf("origin: got (%d,%d), want (%d,%d)", result.X, result.Y, tt.wantX, tt.wantY)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropToBox_Errors(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	if _, err := CropToBox(img, nil, 0, 1.0); !errors.Is(err, edges.ErrInvalidInput) {
		t.Errorf("nil box: expected ErrInvalidInput, got %v", err)
	}
	box := &edges.BoundingBox{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}
	if _, err := CropToBox(img, box, -1, 1.0); !errors.Is(err, edges.ErrInvalidInput) {
		t.Errorf("negative margin: expected ErrInvalidInput, got %v", err)
	}
}
