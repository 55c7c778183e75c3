package edges

// Mask is the final binary classification, one byte per pixel in row-major
// order.
type Mask []byte

// Mask values.
const (
	NotEdge byte = 0
	Edge    byte = 255
)

// Count returns the number of Edge pixels.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v == Edge {
			n++
		}
	}
	return n
}

// class is the tri-state classification used while linking.
type class uint8

const (
	classNone class = iota
	classWeak
	classStrong
)

type thresholds struct {
	high float64
	low  float64
}

// neighbors8 lists the 8-connected offsets, clockwise from north.
var neighbors8 = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// classify partitions the suppressed field into strong, weak and none, and
// returns the indices of the strong pixels in scan order. A zero response is
// never an edge, whatever the thresholds.
func classify(suppressed *Field, t thresholds) ([]class, []int) {
	classes := make([]class, len(suppressed.Data))
	var seeds []int
	for i, v := range suppressed.Data {
		switch {
		case v <= 0:
		case v >= t.high:
			classes[i] = classStrong
			seeds = append(seeds, i)
		case v >= t.low:
			classes[i] = classWeak
		}
	}
	return classes, seeds
}

type linkStats struct {
	promoted int
	dropped  int
}

// link propagates strong classification through 8-connected weak pixels with
// an explicit LIFO worklist seeded by seeds, then collapses classes into a
// Mask. Weak pixels never reached are dropped. classes is consumed.
func link(classes []class, seeds []int, width, height int) (Mask, linkStats) {
	var stats linkStats
	stack := append(make([]int, 0, len(seeds)), seeds...)

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := i%width, i/width

		for _, o := range neighbors8 {
			nx, ny := cx+o[0], cy+o[1]
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			j := ny*width + nx
			if classes[j] == classWeak {
				classes[j] = classStrong
				stats.promoted++
				stack = append(stack, j)
			}
		}
	}

	mask := make(Mask, len(classes))
	for i, c := range classes {
		switch c {
		case classStrong:
			mask[i] = Edge
		case classWeak:
			stats.dropped++
		}
	}
	return mask, stats
}
