package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/urban-guardian/urban-guardian-api/internal/heatmap"
)

// CreateHeatmapGeoJSON writes the sampled temperature points as a
// GeoJSON FeatureCollection.
func CreateHeatmapGeoJSON(points []heatmap.Point, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".geojson") {
		outputPath += ".geojson"
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating GeoJSON file: %w", err)
	}
	defer file.Close()
	return heatmap.WriteGeoJSON(file, points)
}

// CreateHeatmapCSV writes the sampled temperature points as CSV.
func CreateHeatmapCSV(points []heatmap.Point, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".csv") {
		outputPath += ".csv"
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()
	return heatmap.WriteCSV(file, points)
}
