package edges

import (
	"fmt"

	"github.com/pkg/errors"
)

// BoundingBox is the minimal axis-aligned rectangle enclosing every Edge
// pixel. All four bounds are inclusive pixel coordinates.
type BoundingBox struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Contains reports whether the point lies inside the box, bounds included.
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= float64(b.MinX) && x <= float64(b.MaxX) &&
		y >= float64(b.MinY) && y <= float64(b.MaxY)
}

// ColorTag groups anchors for display.
type ColorTag int

const (
	// Primary marks central-axis anchors.
	Primary ColorTag = iota
	// Secondary marks lateral-field anchors.
	Secondary
	// Tertiary marks base anchors.
	Tertiary
)

func (t ColorTag) String() string {
	switch t {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Tertiary:
		return "tertiary"
	default:
		return fmt.Sprintf("ColorTag(%d)", int(t))
	}
}

// MarshalText encodes the tag by name.
func (t ColorTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// AnchorPoint is a labelled position inside the bounding box. It describes
// where structure was found, not what it is.
type AnchorPoint struct {
	ID          string   `json:"id"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	ColorTag    ColorTag `json:"color_tag"`
	Label       string   `json:"label"`
	Description string   `json:"description"`

	// Color overrides the display colour of the tag group, as "#rrggbb".
	Color string `json:"color,omitempty"`
}

// AnchorStrategy derives anchors from the bounding box of the detected edges.
// Implementations must return at least one anchor and keep every anchor
// inside the box.
type AnchorStrategy interface {
	Anchors(box BoundingBox) []AnchorPoint
}

type fractionalAnchor struct {
	id          string
	fx, fy      float64
	tag         ColorTag
	label       string
	description string
	color       string
}

var fractionalLayout = []fractionalAnchor{
	// roi-a text and colour are consumed verbatim by existing viewers.
	{"roi-a", 0.5, 0.2, Primary, "Área de Contraste", "Região com alta densidade detectada.", "#facc15"},
	{"axis-center", 0.5, 0.5, Primary, "Central Axis", "Midline of the detected structure.", ""},
	{"field-left", 0.2, 0.55, Secondary, "Left Lateral Field", "Left lateral region bounded by detected edges.", ""},
	{"field-right", 0.8, 0.55, Secondary, "Right Lateral Field", "Right lateral region bounded by detected edges.", ""},
	{"base", 0.5, 0.9, Tertiary, "Base", "Lower boundary band of the detected structure.", ""},
}

// FractionalAnchors places a fixed, ordered set of anchors at fractional
// offsets of the box extent (MaxX-MinX, MaxY-MinY).
type FractionalAnchors struct{}

// Anchors implements AnchorStrategy.
func (FractionalAnchors) Anchors(box BoundingBox) []AnchorPoint {
	bw := float64(box.MaxX - box.MinX)
	bh := float64(box.MaxY - box.MinY)

	out := make([]AnchorPoint, len(fractionalLayout))
	for i, a := range fractionalLayout {
		out[i] = AnchorPoint{
			ID:          a.id,
			X:           float64(box.MinX) + bw*a.fx,
			Y:           float64(box.MinY) + bh*a.fy,
			ColorTag:    a.tag,
			Label:       a.label,
			Description: a.description,
			Color:       a.color,
		}
	}
	return out
}

// boundingBox scans the mask once. It returns nil when there are no edges.
func boundingBox(mask Mask, width int) *BoundingBox {
	var box *BoundingBox
	for i, v := range mask {
		if v != Edge {
			continue
		}
		x, y := i%width, i/width
		if box == nil {
			box = &BoundingBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
			continue
		}
		box.MinX = min(box.MinX, x)
		box.MaxX = max(box.MaxX, x)
		// rows are scanned in order, so MinY is already final
		box.MaxY = y
	}
	return box
}

// summarize computes the bounding box and asks strategy for anchors.
func summarize(mask Mask, width int, strategy AnchorStrategy) (*BoundingBox, []AnchorPoint, error) {
	box := boundingBox(mask, width)
	if box == nil {
		return nil, []AnchorPoint{}, nil
	}

	anchors := strategy.Anchors(*box)
	if len(anchors) == 0 {
		return nil, nil, errors.Wrap(ErrComputation, "anchor strategy returned no anchors for a non-empty box")
	}
	for _, a := range anchors {
		if !box.Contains(a.X, a.Y) {
			return nil, nil, errors.Wrapf(ErrComputation, "anchor %q at (%.2f,%.2f) outside bounding box %+v",
				a.ID, a.X, a.Y, *box)
		}
	}
	return box, anchors, nil
}
