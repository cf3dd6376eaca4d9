// Package bandmath holds the pure per-pixel transforms applied to scene bands:
// min/max normalization, normalized difference indices and RGB composites.
package bandmath

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon guards every denominator in this package.
const Epsilon = 1e-5

var ErrShape = errors.New("band shapes do not match")

// RGB is a composite image indexed [row][col][channel], values in [0,1].
type RGB [][][3]float64

// NewGrid allocates a zeroed height x width grid.
func NewGrid(height, width int) [][]float64 {
	data := make([]float64, height*width)
	grid := make([][]float64, height)
	for i := range grid {
		grid[i] = data[i*width : (i+1)*width]
	}
	return grid
}

// Shape returns the height and width of grid.
func Shape(grid [][]float64) (int, int) {
	if len(grid) == 0 {
		return 0, 0
	}
	return len(grid), len(grid[0])
}

func sameShape(grids ...[][]float64) error {
	h, w := Shape(grids[0])
	for _, g := range grids[1:] {
		gh, gw := Shape(g)
		if gh != h || gw != w {
			return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShape, h, w, gh, gw)
		}
	}
	for _, g := range grids {
		for _, row := range g {
			if len(row) != w {
				return fmt.Errorf("%w: ragged grid", ErrShape)
			}
		}
	}
	return nil
}

// MinMax returns the smallest and largest finite values in grid. ok is false
// when there are none.
func MinMax(grid [][]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			ok = true
		}
	}
	return lo, hi, ok
}

// Normalize maps grid into [0,1] as (x - min) / (max - min + Epsilon).
// A constant grid maps to zeros; NaN cells stay NaN. Rows keep their own
// length, so a ragged grid is normalized row by row against the global range.
func Normalize(grid [][]float64) [][]float64 {
	result := make([][]float64, len(grid))
	for y, row := range grid {
		result[y] = make([]float64, len(row))
		copy(result[y], row)
	}
	lo, hi, ok := MinMax(grid)
	if !ok {
		return result
	}
	span := hi - lo + Epsilon
	scale := 1.0
	if math.IsInf(span, 0) {
		// hi - lo overflows float64; work on halved values instead.
		scale = 0.5
		span = hi*scale - lo*scale + Epsilon*scale
	}
	for _, row := range result {
		for x, v := range row {
			row[x] = (v*scale - lo*scale) / span
		}
	}
	return result
}

// normalizedDifference is (a - b) / (a + b + Epsilon) for every pixel.
func normalizedDifference(a, b [][]float64) ([][]float64, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	h, w := Shape(a)
	result := NewGrid(h, w)
	for y := range result {
		for x := range result[y] {
			result[y][x] = (a[y][x] - b[y][x]) / (a[y][x] + b[y][x] + Epsilon)
		}
	}
	return result, nil
}

// NDVI = (nir - red) / (nir + red + Epsilon).
func NDVI(nir, red [][]float64) ([][]float64, error) {
	return normalizedDifference(nir, red)
}

// NDWI = (green - nir) / (green + nir + Epsilon).
func NDWI(green, nir [][]float64) ([][]float64, error) {
	return normalizedDifference(green, nir)
}

// MNDWI = (green - swir) / (green + swir + Epsilon).
func MNDWI(green, swir [][]float64) ([][]float64, error) {
	return normalizedDifference(green, swir)
}

// Composite stacks three independently normalized bands into one image
// clipped to [0,1].
func Composite(r, g, b [][]float64) (RGB, error) {
	if err := sameShape(r, g, b); err != nil {
		return nil, err
	}
	nr, ng, nb := Normalize(r), Normalize(g), Normalize(b)
	h, w := Shape(r)
	img := make(RGB, h)
	for y := range img {
		img[y] = make([][3]float64, w)
		for x := range img[y] {
			img[y][x] = [3]float64{Clip(nr[y][x], 0, 1), Clip(ng[y][x], 0, 1), Clip(nb[y][x], 0, 1)}
		}
	}
	return img, nil
}

// Clip bounds v to [lo, hi]. NaN is returned unchanged.
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Subtract returns later - earlier for every pixel.
func Subtract(later, earlier [][]float64) ([][]float64, error) {
	if err := sameShape(later, earlier); err != nil {
		return nil, err
	}
	h, w := Shape(later)
	result := NewGrid(h, w)
	for y := range result {
		for x := range result[y] {
			result[y][x] = later[y][x] - earlier[y][x]
		}
	}
	return result, nil
}
