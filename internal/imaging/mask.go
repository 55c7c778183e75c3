package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/pkg/errors"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
)

const pngMime = "image/png"

// MaskImage renders a detection mask as a grayscale image: Edge pixels are
// white (255), everything else black.
func MaskImage(res *edges.Result) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, res.Width, res.Height))
	for y := 0; y < res.Height; y++ {
		copy(img.Pix[y*img.Stride:], res.Mask[y*res.Width:(y+1)*res.Width])
	}
	return img
}

// encodePNG encodes img as base64 PNG.
func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "failed to encode image")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// AnchorView is an anchor with its display colour.
type AnchorView struct {
	edges.AnchorPoint

	// Color is the resolved AnchorColor. It shadows AnchorPoint.Color.
	Color string `json:"color"`
}

// EdgeDetectResult is the client-facing form of an edges.Result.
type EdgeDetectResult struct {
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	EdgeFound   bool               `json:"edge_found"`
	BoundingBox *edges.BoundingBox `json:"bounding_box"`
	Anchors     []AnchorView       `json:"anchors"`
	Stats       edges.Stats        `json:"stats"`

	// Generation is the detection run that produced this result, when it came
	// from a Runner.
	Generation uint64 `json:"generation,omitempty"`

	// MaskBase64 is the mask as base64 PNG, only when requested.
	MaskBase64 string `json:"mask_base64,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
}

// Describe converts res for output. With includeMask the mask is attached as
// a grayscale PNG.
func Describe(res *edges.Result, includeMask bool) (*EdgeDetectResult, error) {
	out := &EdgeDetectResult{
		Width:       res.Width,
		Height:      res.Height,
		EdgeFound:   res.BoundingBox != nil,
		BoundingBox: res.BoundingBox,
		Anchors:     make([]AnchorView, len(res.Anchors)),
		Stats:       res.Stats,
	}
	for i, a := range res.Anchors {
		out.Anchors[i] = AnchorView{AnchorPoint: a, Color: AnchorColor(a).Hex()}
	}

	if includeMask {
		data, err := encodePNG(MaskImage(res))
		if err != nil {
			return nil, errors.Wrap(err, "mask")
		}
		out.MaskBase64 = data
		out.MimeType = pngMime
	}
	return out, nil
}
