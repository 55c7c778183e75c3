package edges

import (
	"math"

	"github.com/pkg/errors"
)

// gradientInset is the first row/column the gradient stage computes. The 3x3
// Sobel window must lie entirely inside the smoothed interior.
const gradientInset = smoothInset + 1

// gradient estimates per-pixel gradient magnitude and direction with Sobel
// operators:
//
//	gx: -1 0 1    gy: -1 -2 -1
//	    -2 0 2         0  0  0
//	    -1 0 1         1  2  1
//
// Direction is atan2(gy, gx) in degrees within (-180, 180]. Pixels closer
// than gradientInset to a border stay 0 in both fields.
func gradient(src *Field, rows rowRunner) (magnitude, direction *Field, err error) {
	w, h := src.Width, src.Height
	magnitude = newField(w, h)
	direction = newField(w, h)
	d := src.Data

	rows(h-2*gradientInset, func(start, end int) {
		for y := start + gradientInset; y < end+gradientInset; y++ {
			up, mid, down := (y-1)*w, y*w, (y+1)*w
			for x := gradientInset; x < w-gradientInset; x++ {
				gx := -d[up+x-1] + d[up+x+1] -
					2*d[mid+x-1] + 2*d[mid+x+1] -
					d[down+x-1] + d[down+x+1]
				gy := -d[up+x-1] - 2*d[up+x] - d[up+x+1] +
					d[down+x-1] + 2*d[down+x] + d[down+x+1]

				magnitude.Data[mid+x] = math.Sqrt(gx*gx + gy*gy)
				direction.Data[mid+x] = degrees(gx, gy)
			}
		}
	})

	for i, m := range magnitude.Data {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, nil, errors.Wrapf(ErrComputation, "non-finite gradient magnitude at (%d,%d)", i%w, i/w)
		}
	}
	return magnitude, direction, nil
}

// degrees converts the gradient vector to an angle in (-180, 180].
func degrees(gx, gy float64) float64 {
	deg := math.Atan2(gy, gx) * 180 / math.Pi
	if deg <= -180 {
		deg += 360
	}
	return deg
}
