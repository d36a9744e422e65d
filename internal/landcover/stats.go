package landcover

import (
	"fmt"

	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// Statistics reports pixel counts and percentages per land cover class.
// Percentages are over the valid (non-NoData) pixels, rounded to two
// decimals; the NoData class always reports 0%.
type Statistics struct {
	ClassCounts      map[string]int     `json:"class_counts"`
	ClassPercentages map[string]float64 `json:"class_percentages"`
	TotalValidPixels int                `json:"total_valid_pixels"`
	TotalPixels      int                `json:"total_pixels"`
	NoDataPixels     int                `json:"nodata_pixels"`
}

// ComputeStatistics summarises a classified grid.
func ComputeStatistics(classified *raster.ClassGrid) Statistics {
	totalPixels := classified.Size()
	noData := classified.Count(uint8(ClassNoData))
	totalValid := totalPixels - noData

	counts := make(map[string]int, len(ClassNames))
	percentages := make(map[string]float64, len(ClassNames))
	for class, name := range ClassNames {
		count := classified.Count(uint8(class))
		counts[name] = count

		pct := 0.0
		if totalValid > 0 && class != ClassNoData {
			pct = float64(count) / float64(totalValid) * 100
		}
		percentages[name] = raster.Round(pct, 2)
	}

	return Statistics{
		ClassCounts:      counts,
		ClassPercentages: percentages,
		TotalValidPixels: totalValid,
		TotalPixels:      totalPixels,
		NoDataPixels:     noData,
	}
}

// LegendEntry describes one class for map legends.
type LegendEntry struct {
	Value    int    `json:"value"`
	ColorRGB [3]int `json:"color_rgb"`
	ColorHex string `json:"color_hex"`
}

// Legend exports the classification palette keyed by class name.
func Legend() map[string]LegendEntry {
	legend := make(map[string]LegendEntry, len(ClassNames))
	for class, name := range ClassNames {
		c := ClassColors[class]
		legend[name] = LegendEntry{
			Value:    int(class),
			ColorRGB: [3]int{int(c.R), int(c.G), int(c.B)},
			ColorHex: fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
		}
	}
	return legend
}
