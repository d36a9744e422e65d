package raster

import (
	"fmt"
	"math"
)

// DefaultSentinel is the no-data marker used by Landsat products at the
// I/O boundary. Inside the pipeline validity is tracked by an explicit
// bitmask instead of comparing floats against this value.
const DefaultSentinel = -9999.0

// ShapeError reports two rasters that were required to share a shape but
// do not. It is the only error the per-pixel stages can produce.
type ShapeError struct {
	WidthA, HeightA int
	WidthB, HeightB int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("raster shape mismatch: %dx%d vs %dx%d", e.WidthA, e.HeightA, e.WidthB, e.HeightB)
}

// Grid is a fixed-shape 2D float64 raster stored row-major with a parallel
// validity bitmask. Invalid pixels carry no value; exporters re-emit the
// sentinel for them.
type Grid struct {
	width  int
	height int
	values []float64
	valid  []bool
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		values: make([]float64, width*height),
		valid:  make([]bool, width*height),
	}
}

// GridFromRows builds a grid from row slices. Pixels equal to the sentinel
// or non-finite are marked invalid.
func GridFromRows(rows [][]float64, sentinel float64) *Grid {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	g := NewGrid(width, height)
	for y, row := range rows {
		for x, v := range row {
			if v != sentinel && !math.IsNaN(v) && !math.IsInf(v, 0) {
				g.Set(x, y, v)
			}
		}
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) Size() int   { return g.width * g.height }

func (g *Grid) index(x, y int) int { return y*g.width + x }

// At returns the pixel value and whether it is valid.
func (g *Grid) At(x, y int) (float64, bool) {
	i := g.index(x, y)
	return g.values[i], g.valid[i]
}

func (g *Grid) Valid(x, y int) bool { return g.valid[g.index(x, y)] }

// Set stores a valid value. Non-finite values are stored as invalid so the
// bitmask invariant holds regardless of the caller's arithmetic.
func (g *Grid) Set(x, y int, v float64) {
	i := g.index(x, y)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		g.values[i] = 0
		g.valid[i] = false
		return
	}
	g.values[i] = v
	g.valid[i] = true
}

func (g *Grid) SetInvalid(x, y int) {
	i := g.index(x, y)
	g.values[i] = 0
	g.valid[i] = false
}

// SameShape reports whether two grids share width and height.
func (g *Grid) SameShape(o *Grid) bool {
	return g.width == o.width && g.height == o.height
}

// CheckShape returns a ShapeError when the two grids differ in shape.
func (g *Grid) CheckShape(o *Grid) error {
	if g.SameShape(o) {
		return nil
	}
	return &ShapeError{WidthA: g.width, HeightA: g.height, WidthB: o.width, HeightB: o.height}
}

// ValidValues returns the values of all valid pixels in row-major order.
func (g *Grid) ValidValues() []float64 {
	out := make([]float64, 0, g.Size())
	for i, ok := range g.valid {
		if ok {
			out = append(out, g.values[i])
		}
	}
	return out
}

// ValidCount returns the number of valid pixels.
func (g *Grid) ValidCount() int {
	n := 0
	for _, ok := range g.valid {
		if ok {
			n++
		}
	}
	return n
}

// Rows exports the grid as row slices with invalid pixels replaced by the
// sentinel.
func (g *Grid) Rows(sentinel float64) [][]float64 {
	rows := make([][]float64, g.height)
	for y := 0; y < g.height; y++ {
		row := make([]float64, g.width)
		for x := 0; x < g.width; x++ {
			if v, ok := g.At(x, y); ok {
				row[x] = v
			} else {
				row[x] = sentinel
			}
		}
		rows[y] = row
	}
	return rows
}

// ClassGrid is a fixed-shape 2D raster of 8-bit class codes.
type ClassGrid struct {
	width  int
	height int
	values []uint8
}

func NewClassGrid(width, height int) *ClassGrid {
	return &ClassGrid{width: width, height: height, values: make([]uint8, width*height)}
}

func (g *ClassGrid) Width() int            { return g.width }
func (g *ClassGrid) Height() int           { return g.height }
func (g *ClassGrid) Size() int             { return g.width * g.height }
func (g *ClassGrid) At(x, y int) uint8     { return g.values[y*g.width+x] }
func (g *ClassGrid) Set(x, y int, c uint8) { g.values[y*g.width+x] = c }

// Count returns the number of pixels carrying the given class code.
func (g *ClassGrid) Count(c uint8) int {
	n := 0
	for _, v := range g.values {
		if v == c {
			n++
		}
	}
	return n
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// RoundPtr rounds through a possibly-nil pointer.
func RoundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
