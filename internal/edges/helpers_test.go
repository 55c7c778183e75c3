package edges

import "math/rand"

// newRaster builds an opaque raster, asking fill for the gray level of each
// pixel.
func newRaster(width, height int, fill func(x, y int) byte) RasterImage {
	pix := make([]byte, 4*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := fill(x, y)
			i := 4 * (y*width + x)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
		}
	}
	return RasterImage{Width: width, Height: height, Pix: pix}
}

func uniformRaster(width, height int, v byte) RasterImage {
	return newRaster(width, height, func(int, int) byte { return v })
}

// midgrayLine is midgray with a 1-pixel-wide bright column at col.
func midgrayLine(width, height, col int) RasterImage {
	return newRaster(width, height, func(x, _ int) byte {
		if x == col {
			return 255
		}
		return 128
	})
}

// verticalStep is black left of col and white from col onward.
func verticalStep(width, height, col int) RasterImage {
	return newRaster(width, height, func(x, _ int) byte {
		if x < col {
			return 0
		}
		return 255
	})
}

// noiseRaster returns reproducible random gray noise.
func noiseRaster(width, height int, seed int64) RasterImage {
	rng := rand.New(rand.NewSource(seed))
	return newRaster(width, height, func(int, int) byte { return byte(rng.Intn(256)) })
}

func fieldFrom(width, height int, fill func(x, y int) float64) *Field {
	f := newField(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Data[y*width+x] = fill(x, y)
		}
	}
	return f
}
