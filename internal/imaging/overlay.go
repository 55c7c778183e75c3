package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
)

// OverlayResult contains the source image with detected edges and anchors
// drawn over it.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	EdgePixels  int    `json:"edge_pixels"`
	Anchors     int    `json:"anchors"`
}

// RenderOverlay composites the mask of res over src and marks each anchor.
//
// Edge pixels are painted in EdgeColor on a transparent layer which is then
// screen-blended onto the source, so edges lighten the image without hiding
// it. Anchors are drawn as discs in their AnchorColor with a white ring.
//
// src must have the dimensions res was computed from.
func RenderOverlay(src image.Image, res *edges.Result) (*image.RGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != res.Width || h != res.Height {
		return nil, errors.Wrapf(edges.ErrInvalidInput, "source is %dx%d but detection result is %dx%d",
			w, h, res.Width, res.Height)
	}

	layer := image.NewNRGBA(image.Rect(0, 0, w, h))
	teal := toNRGBA(EdgeColor)
	for i, v := range res.Mask {
		if v == edges.Edge {
			layer.SetNRGBA(i%w, i/w, teal)
		}
	}

	out := blend.Screen(imaging.Clone(src), layer)

	r := markerRadius(w, h)
	for _, a := range res.Anchors {
		drawDisc(out, a.X, a.Y, r+1, ringColor)
		drawDisc(out, a.X, a.Y, r, toNRGBA(AnchorColor(a)))
	}
	return out, nil
}

// Overlay renders the overlay and encodes it as base64 PNG.
func Overlay(src image.Image, res *edges.Result) (*OverlayResult, error) {
	out, err := RenderOverlay(src, res)
	if err != nil {
		return nil, err
	}

	data, err := encodePNG(out)
	if err != nil {
		return nil, errors.Wrap(err, "overlay")
	}

	return &OverlayResult{
		Width:       res.Width,
		Height:      res.Height,
		ImageBase64: data,
		MimeType:    pngMime,
		EdgePixels:  res.Stats.EdgePixels,
		Anchors:     len(res.Anchors),
	}, nil
}

// markerRadius scales anchor markers with the image, never below 3 pixels.
func markerRadius(width, height int) int {
	return max(3, min(width, height)/100)
}

// drawDisc fills a disc of radius r centred on (cx, cy), clipped to img.
func drawDisc(img *image.RGBA, cx, cy float64, r int, c color.Color) {
	x0, y0 := int(math.Round(cx)), int(math.Round(cy))
	bounds := img.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			if p := (image.Point{X: x0 + dx, Y: y0 + dy}); p.In(bounds) {
				img.Set(p.X, p.Y, c)
			}
		}
	}
}
