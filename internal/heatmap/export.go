package heatmap

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToGeoJSON builds a FeatureCollection of point features with a temp
// property per point.
func ToGeoJSON(points []Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		feature := geojson.NewFeature(orb.Point{p.Lon, p.Lat})
		feature.Properties = geojson.Properties{"temp": p.Temp}
		fc.Append(feature)
	}
	return fc
}

// WriteGeoJSON serializes the point set as GeoJSON.
func WriteGeoJSON(w io.Writer, points []Point) error {
	data, err := ToGeoJSON(points).MarshalJSON()
	if err != nil {
		return fmt.Errorf("error marshaling heatmap geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing heatmap geojson: %w", err)
	}
	return nil
}

// WriteCSV serializes the point set as lat,lon,temp rows.
func WriteCSV(w io.Writer, points []Point) error {
	if err := gocsv.Marshal(&points, w); err != nil {
		return fmt.Errorf("error writing heatmap csv: %w", err)
	}
	return nil
}
