package edges

import "github.com/anthonynsimon/bild/parallel"

// smoothInset is the number of border pixels the smoothing stage leaves at 0.
const smoothInset = 2

// binomial is the 1-D smoothing kernel. Its outer product is the 5x5 kernel
// with weights summing to 256 (σ ≈ 1.0).
var binomial = [2*smoothInset + 1]float64{1, 4, 6, 4, 1}

const binomialSum = 16.0

// rowRunner hands fn the row range [start, end) for n rows, possibly split
// across goroutines. fn must only write rows inside its range.
type rowRunner func(n int, fn func(start, end int))

func serialRows(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}

func parallelRows(n int, fn func(start, end int)) {
	if n > 0 {
		parallel.Line(n, fn)
	}
}

// smooth applies the binomial kernel horizontally then vertically.
//
// The horizontal pass covers every row for x in [2, w-2). The vertical pass
// reads that buffer for y in [2, h-2). Pixels within 2 cells of any border
// are never written and stay 0.
func smooth(src *Field, rows rowRunner) *Field {
	w, h := src.Width, src.Height
	tmp := newField(w, h)
	out := newField(w, h)

	rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.Data[y*w : (y+1)*w]
			for x := smoothInset; x < w-smoothInset; x++ {
				var sum float64
				for k := -smoothInset; k <= smoothInset; k++ {
					sum += row[x+k] * binomial[k+smoothInset]
				}
				tmp.Data[y*w+x] = sum / binomialSum
			}
		}
	})

	rows(h-2*smoothInset, func(start, end int) {
		for y := start + smoothInset; y < end+smoothInset; y++ {
			for x := smoothInset; x < w-smoothInset; x++ {
				var sum float64
				for k := -smoothInset; k <= smoothInset; k++ {
					sum += tmp.Data[(y+k)*w+x] * binomial[k+smoothInset]
				}
				out.Data[y*w+x] = sum / binomialSum
			}
		}
	})

	return out
}
