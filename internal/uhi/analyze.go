// Package uhi quantifies the urban heat island effect from land surface
// temperature and land cover rasters: urban/rural zone statistics,
// intensity classing, hotspot detection and cluster counting.
package uhi

import (
	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// Default analysis parameters.
const (
	DefaultStdThreshold     = 2.0
	DefaultMinClusterSize   = 10
	DefaultPixelResolutionM = 30.0 // Landsat pixel size
)

// Category is the UHI intensity band.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryWeak
	CategoryModerate
	CategoryStrong
	CategoryVeryStrong
)

// CategoryNames maps category codes to display names.
var CategoryNames = map[Category]string{
	CategoryNone:       "No UHI Effect",
	CategoryWeak:       "Weak",
	CategoryModerate:   "Moderate",
	CategoryStrong:     "Strong",
	CategoryVeryStrong: "Very Strong",
}

// ClassifyIntensity buckets a UHI intensity in Celsius:
// None below 2, Weak below 4, Moderate below 6, Strong below 8, Very
// Strong above. Boundary values round up into the next band.
func ClassifyIntensity(intensity float64) Category {
	switch {
	case intensity < 2:
		return CategoryNone
	case intensity < 4:
		return CategoryWeak
	case intensity < 6:
		return CategoryModerate
	case intensity < 8:
		return CategoryStrong
	default:
		return CategoryVeryStrong
	}
}

// ZoneStatistics summarises temperature over one land cover zone. Pointer
// fields are nil when the zone has no valid temperature pixels.
type ZoneStatistics struct {
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	Mean       *float64 `json:"mean"`
	Std        *float64 `json:"std"`
	PixelCount int      `json:"pixel_count"`
}

// ZoneTemperature restricts the temperature grid to the pixels of one land
// cover class and summarises them.
func ZoneTemperature(lst *raster.Grid, landCover *raster.ClassGrid, class landcover.Class) ZoneStatistics {
	var values []float64
	for y := 0; y < lst.Height(); y++ {
		for x := 0; x < lst.Width(); x++ {
			if landCover.At(x, y) != uint8(class) {
				continue
			}
			if v, ok := lst.At(x, y); ok {
				values = append(values, v)
			}
		}
	}

	zone := raster.NewGrid(len(values), 1)
	for i, v := range values {
		zone.Set(i, 0, v)
	}
	stats := raster.ComputeStats(zone)
	return ZoneStatistics{
		Min:        stats.Min,
		Max:        stats.Max,
		Mean:       stats.Mean,
		Std:        stats.Std,
		PixelCount: len(values),
	}
}

// OverallStats is the scene-wide temperature summary.
type OverallStats struct {
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
	Mean *float64 `json:"mean"`
	Std  *float64 `json:"std"`
}

// Result carries the full UHI analysis. Field names match what the insight
// and frontend collaborators consume.
type Result struct {
	UHIIntensity     *float64 `json:"uhi_intensity"`
	UHICategory      string   `json:"uhi_category"`
	UHICategoryValue int      `json:"uhi_category_value"`

	UrbanMeanTemp *float64       `json:"urban_mean_temp"`
	RuralMeanTemp *float64       `json:"rural_mean_temp"`
	UrbanStats    ZoneStatistics `json:"urban_stats"`
	RuralStats    ZoneStatistics `json:"rural_stats"`
	OverallStats  OverallStats   `json:"overall_stats"`

	HotspotCount         int      `json:"hotspot_count"`
	HotspotClusterCount  int      `json:"hotspot_cluster_count"`
	HotspotThresholdTemp *float64 `json:"hotspot_threshold_temp"`

	AffectedAreaKm2 float64 `json:"affected_area_km2"`
	AffectedAreaHa  float64 `json:"affected_area_ha"`
	AffectedPixels  int     `json:"affected_pixels"`

	PixelResolutionM float64 `json:"pixel_resolution_m"`
	Unit             string  `json:"unit"`

	HotspotMask   *raster.Mask `json:"-"`
	ClusterLabels *LabelGrid   `json:"-"`
}

// Options configures an analysis run; zero values fall back to defaults.
// StdThreshold is a pointer so that an explicit zero, which puts the
// hotspot threshold right at the scene mean, is not mistaken for unset.
type Options struct {
	StdThreshold     *float64
	MinClusterSize   int
	PixelResolutionM float64
}

func (o Options) withDefaults() Options {
	if o.StdThreshold == nil {
		o.StdThreshold = raster.Float64Ptr(DefaultStdThreshold)
	}
	if o.MinClusterSize == 0 {
		o.MinClusterSize = DefaultMinClusterSize
	}
	if o.PixelResolutionM == 0 {
		o.PixelResolutionM = DefaultPixelResolutionM
	}
	return o
}

// Analyze runs the full UHI analysis over an LST grid and a land cover
// grid of the same shape. The vegetation zone serves as the rural
// reference; intensity is nil (not zero) when either zone is empty.
func Analyze(lst *raster.Grid, landCover *raster.ClassGrid, opts Options) (*Result, error) {
	if lst.Width() != landCover.Width() || lst.Height() != landCover.Height() {
		return nil, &raster.ShapeError{
			WidthA: lst.Width(), HeightA: lst.Height(),
			WidthB: landCover.Width(), HeightB: landCover.Height(),
		}
	}
	opts = opts.withDefaults()

	urbanStats := ZoneTemperature(lst, landCover, landcover.ClassUrban)
	ruralStats := ZoneTemperature(lst, landCover, landcover.ClassVegetation)

	var intensity *float64
	category := CategoryNone
	if urbanStats.Mean != nil && ruralStats.Mean != nil {
		intensity = raster.Float64Ptr(*urbanStats.Mean - *ruralStats.Mean)
		category = ClassifyIntensity(*intensity)
	}

	hotspots, thresholdInfo := IdentifyHotspots(lst, *opts.StdThreshold)
	clusterCount, labels := CountClusters(hotspots, opts.MinClusterSize)
	area := AffectedArea(hotspots, opts.PixelResolutionM)

	overall := raster.ComputeStats(lst)

	return &Result{
		UHIIntensity:     raster.RoundPtr(intensity, 2),
		UHICategory:      CategoryNames[category],
		UHICategoryValue: int(category),

		UrbanMeanTemp: raster.RoundPtr(urbanStats.Mean, 2),
		RuralMeanTemp: raster.RoundPtr(ruralStats.Mean, 2),
		UrbanStats:    urbanStats,
		RuralStats:    ruralStats,
		OverallStats:  OverallStats{Min: overall.Min, Max: overall.Max, Mean: overall.Mean, Std: overall.Std},

		HotspotCount:         hotspots.Count(),
		HotspotClusterCount:  clusterCount,
		HotspotThresholdTemp: raster.RoundPtr(thresholdInfo.ThresholdTemp, 2),

		AffectedAreaKm2: area.AreaKm2,
		AffectedAreaHa:  area.AreaHa,
		AffectedPixels:  area.PixelCount,

		PixelResolutionM: opts.PixelResolutionM,
		Unit:             "Celsius",

		HotspotMask:   hotspots,
		ClusterLabels: labels,
	}, nil
}

// AnomalyMap returns per-pixel temperature minus the rural (vegetation)
// mean, invalid where the input is invalid. When no rural reference
// exists the whole map is invalid.
func AnomalyMap(lst *raster.Grid, landCover *raster.ClassGrid) (*raster.Grid, error) {
	if lst.Width() != landCover.Width() || lst.Height() != landCover.Height() {
		return nil, &raster.ShapeError{
			WidthA: lst.Width(), HeightA: lst.Height(),
			WidthB: landCover.Width(), HeightB: landCover.Height(),
		}
	}

	out := raster.NewGrid(lst.Width(), lst.Height())
	rural := ZoneTemperature(lst, landCover, landcover.ClassVegetation)
	if rural.Mean == nil {
		return out, nil
	}

	for y := 0; y < lst.Height(); y++ {
		for x := 0; x < lst.Width(); x++ {
			if v, ok := lst.At(x, y); ok {
				out.Set(x, y, v-*rural.Mean)
			}
		}
	}
	return out, nil
}
