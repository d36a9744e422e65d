package raster

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats holds descriptive statistics over the valid pixels of a grid.
// Pointer fields are nil when the grid has no valid pixels.
type Stats struct {
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	Mean        *float64 `json:"mean"`
	Std         *float64 `json:"std"`
	ValidPixels int      `json:"valid_pixels"`
	TotalPixels int      `json:"total_pixels"`
}

// ComputeStats summarises the valid pixels of a grid. Std is the population
// standard deviation, matching what the downstream hotspot threshold expects.
func ComputeStats(g *Grid) Stats {
	values := g.ValidValues()
	s := Stats{ValidPixels: len(values), TotalPixels: g.Size()}
	if len(values) == 0 {
		return s
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	s.Min = Float64Ptr(min)
	s.Max = Float64Ptr(max)
	s.Mean = Float64Ptr(mean)
	s.Std = Float64Ptr(std)
	return s
}

// Median returns the median of the valid pixels, or nil when there are none.
func Median(g *Grid) *float64 {
	values := g.ValidValues()
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return Float64Ptr(values[n/2])
	}
	return Float64Ptr((values[n/2-1] + values[n/2]) / 2)
}
