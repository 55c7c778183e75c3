package edges

// band is a 45°-wide orientation bucket of the gradient direction.
type band int

const (
	// bandHorizontal covers [0, 22.5) and [157.5, 180).
	bandHorizontal band = iota
	// bandMainDiagonal covers [22.5, 67.5): gradient toward +x,+y.
	bandMainDiagonal
	// bandVertical covers [67.5, 112.5).
	bandVertical
	// bandAntiDiagonal covers [112.5, 157.5): gradient toward -x,+y.
	bandAntiDiagonal
)

// bandSteps holds the (dx, dy) step along the gradient for each band. The
// compared neighbours are (x+dx, y+dy) and (x-dx, y-dy).
var bandSteps = [...][2]int{
	bandHorizontal:   {1, 0},
	bandMainDiagonal: {1, 1},
	bandVertical:     {0, 1},
	bandAntiDiagonal: {-1, 1},
}

// foldAngle maps a direction in degrees into [0, 180) so that opposite
// directions share a band.
func foldAngle(deg float64) float64 {
	if deg < 0 {
		deg += 180
	}
	if deg >= 180 {
		deg -= 180
	}
	return deg
}

// bandOf quantizes a direction. Every band is half-open on its upper bound.
func bandOf(deg float64) band {
	a := foldAngle(deg)
	switch {
	case a < 22.5 || a >= 157.5:
		return bandHorizontal
	case a < 67.5:
		return bandMainDiagonal
	case a < 112.5:
		return bandVertical
	default:
		return bandAntiDiagonal
	}
}

// suppress keeps a magnitude only when it is >= both neighbours lying along
// its gradient direction.
func suppress(magnitude, direction *Field, rows rowRunner) *Field {
	w, h := magnitude.Width, magnitude.Height
	out := newField(w, h)
	m := magnitude.Data

	rows(h-2*gradientInset, func(start, end int) {
		for y := start + gradientInset; y < end+gradientInset; y++ {
			for x := gradientInset; x < w-gradientInset; x++ {
				i := y*w + x
				if m[i] == 0 {
					continue
				}
				step := bandSteps[bandOf(direction.Data[i])]
				offset := step[1]*w + step[0]
				if m[i] >= m[i+offset] && m[i] >= m[i-offset] {
					out.Data[i] = m[i]
				}
			}
		}
	})

	return out
}
