// Package landsat reads Landsat 8 GeoTIFF bands into rasters and exposes
// the georeferencing needed to map pixels back to WGS84 coordinates.
package landsat

import (
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

// Band identifies a Landsat 8 OLI/TIRS band used by the analysis.
type Band string

const (
	BandBlue  Band = "band_2"
	BandGreen Band = "band_3"
	BandRed   Band = "band_4"
	BandNIR   Band = "band_5"
	BandSWIR1 Band = "band_6"
	BandSWIR2 Band = "band_7"
	BandTIRS1 Band = "band_10"
)

// AnalysisBands lists every band the full pipeline consumes, in upload
// order.
var AnalysisBands = []Band{BandBlue, BandGreen, BandRed, BandNIR, BandSWIR1, BandSWIR2, BandTIRS1}

// Scene holds a single opened band file.
type Scene struct {
	dataset *godal.Dataset
	path    string
}

// Open opens a GeoTIFF band file.
func Open(path string) (*Scene, error) {
	register()
	dataset, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open TIFF file %s: %w", path, err)
	}
	return &Scene{dataset: dataset, path: path}, nil
}

// Close releases the underlying dataset.
func (s *Scene) Close() error {
	return s.dataset.Close()
}

// Size returns the raster dimensions in pixels.
func (s *Scene) Size() (width, height int) {
	structure := s.dataset.Structure()
	return structure.SizeX, structure.SizeY
}

// ReadGrid reads the first raster band into a grid. Pixels equal to the
// file's nodata value and non-positive digital numbers are marked
// invalid; Landsat DN zero means no observation.
func (s *Scene) ReadGrid() (*raster.Grid, error) {
	structure := s.dataset.Structure()
	width, height := structure.SizeX, structure.SizeY

	bands := s.dataset.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("no raster bands in %s", s.path)
	}
	band := bands[0]

	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height); err != nil {
		return nil, fmt.Errorf("failed to read raster data from %s: %w", s.path, err)
	}

	nodata, hasNodata := band.NoData()

	grid := raster.NewGrid(width, height)
	for i, v := range data {
		if hasNodata && v == nodata {
			continue
		}
		if v <= 0 {
			continue
		}
		grid.Set(i%width, i/width, v)
	}
	return grid, nil
}

// Metadata describes the georeferencing of a scene.
type Metadata struct {
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	GeoTransform [6]float64 `json:"geo_transform"`
	Bounds       *GeoBounds `json:"bounds"`
}

// GeoBounds is the scene extent in WGS84.
type GeoBounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Metadata reads the scene's dimensions, geotransform and WGS84 extent.
// Bounds is nil when the file carries no spatial reference.
func (s *Scene) Metadata() (Metadata, error) {
	structure := s.dataset.Structure()
	md := Metadata{Width: structure.SizeX, Height: structure.SizeY}

	geoTransform, err := s.dataset.GeoTransform()
	if err != nil {
		return md, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	md.GeoTransform = geoTransform

	toLatLon, err := s.PixelToLatLon()
	if err != nil {
		return md, nil
	}

	corners := [][2]int{
		{0, 0},
		{structure.SizeX - 1, 0},
		{0, structure.SizeY - 1},
		{structure.SizeX - 1, structure.SizeY - 1},
	}
	bounds := &GeoBounds{MinLat: 90, MaxLat: -90, MinLon: 180, MaxLon: -180}
	for _, c := range corners {
		lat, lon, err := toLatLon(c[0], c[1])
		if err != nil {
			return md, nil
		}
		if lat < bounds.MinLat {
			bounds.MinLat = lat
		}
		if lat > bounds.MaxLat {
			bounds.MaxLat = lat
		}
		if lon < bounds.MinLon {
			bounds.MinLon = lon
		}
		if lon > bounds.MaxLon {
			bounds.MaxLon = lon
		}
	}
	md.Bounds = bounds
	return md, nil
}

// PixelToLatLon returns a converter from pixel coordinates to WGS84
// latitude and longitude. Coordinates reference pixel centers.
func (s *Scene) PixelToLatLon() (func(x, y int) (float64, float64, error), error) {
	geoTransform, err := s.dataset.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	srcSR := s.dataset.SpatialRef()
	if srcSR == nil {
		return nil, fmt.Errorf("no spatial reference in %s", s.path)
	}

	return func(x, y int) (float64, float64, error) {
		xCoord := geoTransform[0] + geoTransform[1]*(float64(x)+0.5) + geoTransform[2]*(float64(y)+0.5)
		yCoord := geoTransform[3] + geoTransform[4]*(float64(x)+0.5) + geoTransform[5]*(float64(y)+0.5)

		dstSR, err := godal.NewSpatialRefFromEPSG(4326)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to create WGS84 reference: %w", err)
		}
		defer dstSR.Close()
		tr, err := godal.NewTransform(srcSR, dstSR)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to create transform: %w", err)
		}
		defer tr.Close()

		xs := []float64{xCoord}
		ys := []float64{yCoord}
		if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
			return 0, 0, fmt.Errorf("transform error: %w", err)
		}
		return ys[0], xs[0], nil
	}, nil
}

// PixelResolutionM derives the pixel edge length in meters from the
// geotransform, falling back to fallback when unavailable.
func (s *Scene) PixelResolutionM(fallback float64) float64 {
	geoTransform, err := s.dataset.GeoTransform()
	if err != nil || geoTransform[1] == 0 {
		return fallback
	}
	res := geoTransform[1]
	if res < 0 {
		res = -res
	}
	return res
}
