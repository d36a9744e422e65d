package thermal

import (
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// ThermalZone is a comfort band defined by standard-deviation offsets from
// the scene mean temperature.
type ThermalZone uint8

const (
	ZoneVeryCold ThermalZone = iota
	ZoneCold
	ZoneCool
	ZoneComfortable
	ZoneWarm
	ZoneHot
	ZoneVeryHot
	zoneInvalid = 255
)

// ZoneNames maps zone codes to display names.
var ZoneNames = map[ThermalZone]string{
	ZoneVeryCold:    "Very Cold",
	ZoneCold:        "Cold",
	ZoneCool:        "Cool",
	ZoneComfortable: "Comfortable",
	ZoneWarm:        "Warm",
	ZoneHot:         "Hot",
	ZoneVeryHot:     "Very Hot",
}

// ClassifyZones buckets LST pixels into seven comfort zones around the
// scene mean: boundaries at mean -2s, -1s, -0.5s, +0.5s, +1s, +2s. When the
// scene has no valid pixels every cell gets the invalid code.
func ClassifyZones(lst *raster.Grid) *raster.ClassGrid {
	out := raster.NewClassGrid(lst.Width(), lst.Height())
	stats := raster.ComputeStats(lst)
	if stats.Mean == nil || stats.Std == nil {
		for y := 0; y < lst.Height(); y++ {
			for x := 0; x < lst.Width(); x++ {
				out.Set(x, y, zoneInvalid)
			}
		}
		return out
	}

	mean, std := *stats.Mean, *stats.Std
	bounds := []float64{
		mean - 2*std,
		mean - 1*std,
		mean - 0.5*std,
		mean + 0.5*std,
		mean + 1*std,
		mean + 2*std,
	}

	for y := 0; y < lst.Height(); y++ {
		for x := 0; x < lst.Width(); x++ {
			v, ok := lst.At(x, y)
			if !ok {
				out.Set(x, y, zoneInvalid)
				continue
			}
			zone := ZoneVeryHot
			for i, b := range bounds {
				if v < b {
					zone = ThermalZone(i)
					break
				}
			}
			out.Set(x, y, uint8(zone))
		}
	}
	return out
}

// Statistics extends the raster stats with the median, as reported for LST.
type Statistics struct {
	raster.Stats
	Median *float64 `json:"median"`
	Unit   string   `json:"unit"`
}

// LSTStatistics summarises an LST grid in Celsius.
func LSTStatistics(lst *raster.Grid) Statistics {
	return Statistics{
		Stats:  raster.ComputeStats(lst),
		Median: raster.Median(lst),
		Unit:   "Celsius",
	}
}
