package index

import (
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// NDVICategory buckets NDVI values into coarse land condition classes.
type NDVICategory uint8

const (
	CategoryWater NDVICategory = iota
	CategoryUrbanBareSoil
	CategorySparseVegetation
	CategoryDenseVegetation
	categoryInvalid = 255
)

const (
	ndviWaterMax  = 0.0
	ndviUrbanMax  = 0.2
	ndviSparseMax = 0.4
)

// ClassifyNDVI buckets each valid NDVI pixel:
// water < 0, urban/bare soil < 0.2, sparse vegetation < 0.4, dense above.
// Invalid pixels get the reserved invalid code.
func ClassifyNDVI(ndvi *raster.Grid) *raster.ClassGrid {
	out := raster.NewClassGrid(ndvi.Width(), ndvi.Height())
	for y := 0; y < ndvi.Height(); y++ {
		for x := 0; x < ndvi.Width(); x++ {
			v, ok := ndvi.At(x, y)
			if !ok {
				out.Set(x, y, categoryInvalid)
				continue
			}
			switch {
			case v < ndviWaterMax:
				out.Set(x, y, uint8(CategoryWater))
			case v < ndviUrbanMax:
				out.Set(x, y, uint8(CategoryUrbanBareSoil))
			case v < ndviSparseMax:
				out.Set(x, y, uint8(CategorySparseVegetation))
			default:
				out.Set(x, y, uint8(CategoryDenseVegetation))
			}
		}
	}
	return out
}

// CategoryPercentages reports the share of each NDVI category over the
// valid pixels, as 0-100 percentages.
func CategoryPercentages(classified *raster.ClassGrid) map[string]float64 {
	counts := map[NDVICategory]int{}
	totalValid := 0
	for y := 0; y < classified.Height(); y++ {
		for x := 0; x < classified.Width(); x++ {
			c := classified.At(x, y)
			if c == categoryInvalid {
				continue
			}
			counts[NDVICategory(c)]++
			totalValid++
		}
	}

	out := map[string]float64{
		"water":             0,
		"urban_bare_soil":   0,
		"sparse_vegetation": 0,
		"dense_vegetation":  0,
	}
	if totalValid == 0 {
		return out
	}
	out["water"] = float64(counts[CategoryWater]) / float64(totalValid) * 100
	out["urban_bare_soil"] = float64(counts[CategoryUrbanBareSoil]) / float64(totalValid) * 100
	out["sparse_vegetation"] = float64(counts[CategorySparseVegetation]) / float64(totalValid) * 100
	out["dense_vegetation"] = float64(counts[CategoryDenseVegetation]) / float64(totalValid) * 100
	return out
}
