package edges

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBox_Empty(t *testing.T) {
	assert.Nil(t, boundingBox(make(Mask, 20), 5))
	assert.Nil(t, boundingBox(nil, 5))
}

func TestBoundingBox_SinglePixel(t *testing.T) {
	mask := make(Mask, 30)
	mask[2*6+4] = Edge

	box := boundingBox(mask, 6)

	require.NotNil(t, box)
	assert.Equal(t, BoundingBox{MinX: 4, MinY: 2, MaxX: 4, MaxY: 2}, *box)
}

func TestBoundingBox_Minimal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 25; trial++ {
		w, h := 5+rng.Intn(30), 5+rng.Intn(30)
		mask := make(Mask, w*h)
		for i := range mask {
			if rng.Float64() < 0.02 {
				mask[i] = Edge
			}
		}
		mask[rng.Intn(len(mask))] = Edge

		box := boundingBox(mask, w)
		require.NotNil(t, box)

		var touchLeft, touchRight, touchTop, touchBottom bool
		for i, v := range mask {
			if v != Edge {
				continue
			}
			x, y := i%w, i/w
			require.True(t, box.Contains(float64(x), float64(y)), "edge (%d,%d) outside %+v", x, y, *box)
			touchLeft = touchLeft || x == box.MinX
			touchRight = touchRight || x == box.MaxX
			touchTop = touchTop || y == box.MinY
			touchBottom = touchBottom || y == box.MaxY
		}
		assert.True(t, touchLeft && touchRight && touchTop && touchBottom, "trial %d box %+v is not minimal", trial, *box)
	}
}

func TestBoundingBox_Contains(t *testing.T) {
	box := BoundingBox{MinX: 10, MinY: 20, MaxX: 30, MaxY: 40}

	assert.True(t, box.Contains(10, 20))
	assert.True(t, box.Contains(30, 40))
	assert.True(t, box.Contains(20.5, 33.3))
	assert.False(t, box.Contains(9.99, 30))
	assert.False(t, box.Contains(20, 40.01))
}

func TestFractionalAnchors(t *testing.T) {
	box := BoundingBox{MinX: 10, MinY: 20, MaxX: 110, MaxY: 220}

	got := FractionalAnchors{}.Anchors(box)

	want := []struct {
		id    string
		x, y  float64
		tag   ColorTag
		label string
		desc  string
		color string
	}{
		{"roi-a", 60, 60, Primary, "Área de Contraste", "Região com alta densidade detectada.", "#facc15"},
		{"axis-center", 60, 120, Primary, "Central Axis", "Midline of the detected structure.", ""},
		{"field-left", 30, 130, Secondary, "Left Lateral Field", "Left lateral region bounded by detected edges.", ""},
		{"field-right", 90, 130, Secondary, "Right Lateral Field", "Right lateral region bounded by detected edges.", ""},
		{"base", 60, 200, Tertiary, "Base", "Lower boundary band of the detected structure.", ""},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.id, got[i].ID)
		assert.InDelta(t, w.x, got[i].X, 1e-9, w.id)
		assert.InDelta(t, w.y, got[i].Y, 1e-9, w.id)
		assert.Equal(t, w.tag, got[i].ColorTag, w.id)
		assert.Equal(t, w.label, got[i].Label, w.id)
		assert.Equal(t, w.desc, got[i].Description, w.id)
		assert.Equal(t, w.color, got[i].Color, w.id)
	}
}

func TestFractionalAnchors_DegenerateBox(t *testing.T) {
	box := BoundingBox{MinX: 7, MinY: 9, MaxX: 7, MaxY: 9}

	for _, a := range (FractionalAnchors{}).Anchors(box) {
		assert.Equal(t, 7.0, a.X, a.ID)
		assert.Equal(t, 9.0, a.Y, a.ID)
	}
}

type staticAnchors []AnchorPoint

func (s staticAnchors) Anchors(BoundingBox) []AnchorPoint { return s }

func TestSummarize(t *testing.T) {
	mask := make(Mask, 100)
	mask[3*10+2] = Edge
	mask[8*10+6] = Edge

	t.Run("no edges", func(t *testing.T) {
		box, anchors, err := summarize(make(Mask, 100), 10, FractionalAnchors{})
		require.NoError(t, err)
		assert.Nil(t, box)
		assert.NotNil(t, anchors)
		assert.Empty(t, anchors)
	})

	t.Run("fractional", func(t *testing.T) {
		box, anchors, err := summarize(mask, 10, FractionalAnchors{})
		require.NoError(t, err)
		require.NotNil(t, box)
		assert.Equal(t, BoundingBox{MinX: 2, MinY: 3, MaxX: 6, MaxY: 8}, *box)
		assert.Len(t, anchors, 5)
	})

	t.Run("strategy returns nothing", func(t *testing.T) {
		_, _, err := summarize(mask, 10, staticAnchors{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrComputation))
	})

	t.Run("strategy leaves box", func(t *testing.T) {
		_, _, err := summarize(mask, 10, staticAnchors{{ID: "far", X: 50, Y: 50}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrComputation))
		assert.Contains(t, err.Error(), "far")
	})
}

func TestAnchorPoint_JSON(t *testing.T) {
	data, err := json.Marshal(AnchorPoint{
		ID:          "base",
		X:           1.5,
		Y:           2,
		ColorTag:    Tertiary,
		Label:       "Base",
		Description: "d",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"base","x":1.5,"y":2,"color_tag":"tertiary","label":"Base","description":"d"}`, string(data))

	data, err = json.Marshal(AnchorPoint{ID: "roi-a", ColorTag: Primary, Color: "#facc15"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"roi-a","x":0,"y":0,"color_tag":"primary","label":"","description":"","color":"#facc15"}`, string(data))
}

func TestColorTag_String(t *testing.T) {
	assert.Equal(t, "primary", Primary.String())
	assert.Equal(t, "secondary", Secondary.String())
	assert.Equal(t, "tertiary", Tertiary.String())
	assert.Equal(t, "ColorTag(9)", ColorTag(9).String())
}
