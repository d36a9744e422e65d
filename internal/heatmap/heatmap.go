// Package heatmap samples temperature rasters into point collections
// suitable for web map overlays.
package heatmap

import (
	"math"

	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// Point is one sampled temperature observation in geographic coordinates.
type Point struct {
	Lat  float64 `json:"lat" csv:"lat"`
	Lon  float64 `json:"lon" csv:"lon"`
	Temp float64 `json:"temp" csv:"temp"`
}

// PixelToLatLon converts raster pixel coordinates to geographic
// coordinates. Implementations come from the GeoTIFF geotransform.
type PixelToLatLon func(x, y int) (lat, lon float64, err error)

const (
	// DefaultMaxPoints bounds the output size so browser renderers stay
	// responsive.
	DefaultMaxPoints = 5000

	// MinValidTemp and MaxValidTemp bound plausible land surface
	// temperatures in Celsius; values outside are sensor artifacts.
	MinValidTemp = -50.0
	MaxValidTemp = 80.0
)

// Config controls point sampling.
type Config struct {
	MaxPoints int
	MinTemp   float64
	MaxTemp   float64
}

func (c Config) withDefaults() Config {
	if c.MaxPoints <= 0 {
		c.MaxPoints = DefaultMaxPoints
	}
	if c.MinTemp == 0 && c.MaxTemp == 0 {
		c.MinTemp = MinValidTemp
		c.MaxTemp = MaxValidTemp
	}
	return c
}

// SampleStep returns the uniform grid stride that keeps the sampled
// point count under maxPoints.
func SampleStep(totalPixels, maxPoints int) int {
	if totalPixels <= maxPoints {
		return 1
	}
	step := int(math.Ceil(math.Sqrt(float64(totalPixels) / float64(maxPoints))))
	if step < 1 {
		step = 1
	}
	return step
}

// Generate samples the temperature grid on a uniform stride and projects
// each kept pixel through toLatLon. Invalid and out-of-range pixels are
// skipped.
func Generate(temp *raster.Grid, toLatLon PixelToLatLon, cfg Config) ([]Point, int, error) {
	cfg = cfg.withDefaults()
	width, height := temp.Width(), temp.Height()
	step := SampleStep(width*height, cfg.MaxPoints)

	points := make([]Point, 0, cfg.MaxPoints)
	for y := 0; y < height; y += step {
		for x := 0; x < width; x += step {
			v, ok := temp.At(x, y)
			if !ok || v < cfg.MinTemp || v > cfg.MaxTemp {
				continue
			}
			lat, lon, err := toLatLon(x, y)
			if err != nil {
				return nil, step, err
			}
			points = append(points, Point{
				Lat:  raster.Round(lat, 6),
				Lon:  raster.Round(lon, 6),
				Temp: raster.Round(v, 2),
			})
		}
	}
	return points, step, nil
}

// Statistics summarizes a point set.
type Statistics struct {
	Count   int      `json:"count"`
	MinTemp *float64 `json:"min_temp"`
	MaxTemp *float64 `json:"max_temp"`
	AvgTemp *float64 `json:"avg_temp"`
}

// ComputeStatistics summarizes the temperatures of a point set. Empty
// sets produce nil temperature fields.
func ComputeStatistics(points []Point) Statistics {
	stats := Statistics{Count: len(points)}
	if len(points) == 0 {
		return stats
	}
	min, max, sum := points[0].Temp, points[0].Temp, 0.0
	for _, p := range points {
		if p.Temp < min {
			min = p.Temp
		}
		if p.Temp > max {
			max = p.Temp
		}
		sum += p.Temp
	}
	avg := raster.Round(sum/float64(len(points)), 2)
	stats.MinTemp = &min
	stats.MaxTemp = &max
	stats.AvgTemp = &avg
	return stats
}

// Bounds is a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the point lies inside the box, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// FilterBounds keeps only the points inside the bounding box.
func FilterBounds(points []Point, b Bounds) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if b.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// FilterTemperature keeps only the points with min <= temp <= max.
func FilterTemperature(points []Point, min, max float64) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Temp >= min && p.Temp <= max {
			out = append(out, p)
		}
	}
	return out
}

// Bin is one interval of a temperature histogram.
type Bin struct {
	RangeMin float64 `json:"range_min"`
	RangeMax float64 `json:"range_max"`
	Count    int     `json:"count"`
}

// BinTemperatures splits the observed temperature range into n equal
// intervals and counts points per interval. The last bin is closed on
// both ends.
func BinTemperatures(points []Point, n int) []Bin {
	if len(points) == 0 || n <= 0 {
		return nil
	}
	min, max := points[0].Temp, points[0].Temp
	for _, p := range points {
		if p.Temp < min {
			min = p.Temp
		}
		if p.Temp > max {
			max = p.Temp
		}
	}
	width := (max - min) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].RangeMin = raster.Round(min+float64(i)*width, 2)
		bins[i].RangeMax = raster.Round(min+float64(i+1)*width, 2)
	}
	if width == 0 {
		bins[0].Count = len(points)
		return bins
	}
	for _, p := range points {
		idx := int((p.Temp - min) / width)
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}
