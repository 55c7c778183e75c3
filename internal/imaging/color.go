package imaging

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
)

// Display colours. Tags map to a fixed palette so that anchors of the same
// group look the same across images.
var (
	// EdgeColor is the teal used to paint Edge pixels in overlays.
	EdgeColor = mustHex("#00FFC8")

	tagColors = map[edges.ColorTag]colorful.Color{
		edges.Primary:   mustHex("#22C55E"),
		edges.Secondary: mustHex("#3B82F6"),
		edges.Tertiary:  mustHex("#A855F7"),
	}

	// fallbackColor is used for tags outside the palette.
	fallbackColor = mustHex("#F59E0B")

	ringColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// TagColor returns the display colour for an anchor group.
func TagColor(tag edges.ColorTag) colorful.Color {
	if c, ok := tagColors[tag]; ok {
		return c
	}
	return fallbackColor
}

// AnchorColor returns the anchor's own colour when it carries a valid one,
// otherwise the colour of its tag group.
func AnchorColor(a edges.AnchorPoint) colorful.Color {
	if a.Color != "" {
		if c, err := colorful.Hex(a.Color); err == nil {
			return c
		}
	}
	return TagColor(a.ColorTag)
}

// TagHex returns TagColor as "#rrggbb".
func TagHex(tag edges.ColorTag) string {
	return TagColor(tag).Hex()
}

// toNRGBA converts a palette colour to an opaque 8-bit colour.
func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
