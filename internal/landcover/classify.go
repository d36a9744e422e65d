// Package landcover classifies Landsat reflectance bands into land cover
// classes with a spectral-index decision tree.
package landcover

import (
	"image/color"

	"github.com/urban-guardian/urban-guardian-api/internal/index"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// Class is a land cover class code.
type Class uint8

const (
	ClassNoData Class = iota
	ClassWater
	ClassUrban
	ClassVegetation
	ClassBareSoil
)

// ClassNames maps class codes to the display names the insight layer and
// API consumers key off.
var ClassNames = map[Class]string{
	ClassNoData:     "No Data",
	ClassWater:      "Water",
	ClassUrban:      "Urban/Built-up",
	ClassVegetation: "Vegetation",
	ClassBareSoil:   "Bare Soil",
}

// ClassColors is the rendering palette for classified rasters.
var ClassColors = map[Class]color.RGBA{
	ClassNoData:     {0, 0, 0, 255},
	ClassWater:      {0, 100, 255, 255},
	ClassUrban:      {255, 100, 100, 255},
	ClassVegetation: {34, 139, 34, 255},
	ClassBareSoil:   {210, 180, 140, 255},
}

// Classification thresholds. Fixed constants, not derived from the scene.
const (
	ndwiWater      = 0.0
	ndviVegetation = 0.2
	urbanRatioMin  = 1.0
	ndbiUrban      = 0.0
)

// Classify runs the decision tree over the reflectance bands. Priority is
// Water > Vegetation > Urban > Bare Soil; a pixel is never re-evaluated
// once assigned. Pixels whose NDVI or NDWI is invalid stay NoData. The
// precomputed NDVI may be nil, in which case it is derived here.
// Returns the class grid together with the underlying index set.
func Classify(green, red, nir, swir1 *raster.Grid, ndvi *raster.Grid) (*raster.ClassGrid, *index.Set, error) {
	for _, band := range []*raster.Grid{red, nir, swir1} {
		if err := green.CheckShape(band); err != nil {
			return nil, nil, err
		}
	}

	indexes, err := index.ComputeAll(green, red, nir, swir1)
	if err != nil {
		return nil, nil, err
	}
	if ndvi != nil {
		if err := ndvi.CheckShape(green); err != nil {
			return nil, nil, err
		}
		indexes.NDVI = ndvi
	}

	return ClassifyFromIndexes(indexes), indexes, nil
}

// ClassifyFromIndexes runs the decision tree over precomputed indices.
func ClassifyFromIndexes(indexes *index.Set) *raster.ClassGrid {
	width, height := indexes.NDVI.Width(), indexes.NDVI.Height()
	out := raster.NewClassGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ndviV, ndviOK := indexes.NDVI.At(x, y)
			ndwiV, ndwiOK := indexes.NDWI.At(x, y)
			if !ndviOK || !ndwiOK {
				continue // stays NoData
			}

			switch {
			case ndwiV > ndwiWater:
				out.Set(x, y, uint8(ClassWater))
			case ndviV > ndviVegetation:
				out.Set(x, y, uint8(ClassVegetation))
			default:
				urbanV, urbanOK := indexes.UrbanRatio.At(x, y)
				ndbiV, ndbiOK := indexes.NDBI.At(x, y)
				if (urbanOK && urbanV > urbanRatioMin) || (ndbiOK && ndbiV > ndbiUrban) {
					out.Set(x, y, uint8(ClassUrban))
				} else {
					out.Set(x, y, uint8(ClassBareSoil))
				}
			}
		}
	}
	return out
}
