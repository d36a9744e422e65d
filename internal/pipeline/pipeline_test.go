package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// buildInput synthesizes a 10x10 scene with an urban west half and a
// vegetated east half, the urban side markedly hotter.
func buildInput() Input {
	size := 10
	blue := raster.NewGrid(size, size)
	green := raster.NewGrid(size, size)
	red := raster.NewGrid(size, size)
	nir := raster.NewGrid(size, size)
	swir1 := raster.NewGrid(size, size)
	swir2 := raster.NewGrid(size, size)
	tirs1 := raster.NewGrid(size, size)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			blue.Set(x, y, 0.08)
			if x < size/2 {
				green.Set(x, y, 0.10)
				red.Set(x, y, 0.20)
				nir.Set(x, y, 0.15)
				swir1.Set(x, y, 0.25)
				swir2.Set(x, y, 0.22)
				tirs1.Set(x, y, 30000)
			} else {
				green.Set(x, y, 0.10)
				red.Set(x, y, 0.05)
				nir.Set(x, y, 0.50)
				swir1.Set(x, y, 0.20)
				swir2.Set(x, y, 0.15)
				tirs1.Set(x, y, 26000)
			}
		}
	}

	return Input{
		Blue:  blue,
		Green: green,
		Red:   red,
		NIR:   nir,
		SWIR1: swir1,
		SWIR2: swir2,
		TIRS1: tirs1,
		ToLatLon: func(x, y int) (float64, float64, error) {
			return 40.0 + float64(y)*0.0003, -74.0 + float64(x)*0.0003, nil
		},
	}
}

func TestRun(t *testing.T) {
	result, err := Run(buildInput(), Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.JobID)
	assert.Equal(t, "completed", result.Status)

	// land cover split is half urban, half vegetation
	assert.Equal(t, 50, result.LandCover.ClassCounts[landcover.ClassNames[landcover.ClassUrban]])
	assert.Equal(t, 50, result.LandCover.ClassCounts[landcover.ClassNames[landcover.ClassVegetation]])
	assert.Equal(t, 100, result.LandCover.TotalValidPixels)

	// urban side is hotter, so intensity is well above zero
	require.NotNil(t, result.UHI.UHIIntensity)
	assert.Greater(t, *result.UHI.UHIIntensity, 5.0)

	require.NotNil(t, result.LSTStatistics.Mean)
	assert.Greater(t, *result.LSTStatistics.Mean, 0.0)
	assert.Less(t, *result.LSTStatistics.Mean, 50.0)
	require.NotNil(t, result.LSTStatistics.Median)

	assert.NotEmpty(t, result.Insights.Recommendations)
	assert.NotEmpty(t, result.Insights.Explanation)

	assert.Len(t, result.HeatmapPoints, 100)
	require.NotNil(t, result.HeatmapStats)
	assert.Equal(t, 100, result.HeatmapStats.Count)
	assert.Equal(t, 1, result.HeatmapSampling)

	steps := make(map[string]bool, len(result.Timings))
	for _, timing := range result.Timings {
		steps[timing.Step] = true
	}
	for _, step := range []string{"spectral_indexes", "surface_temperature", "land_cover", "uhi_analysis", "statistics", "insights", "heatmap"} {
		assert.True(t, steps[step], "missing timing for %s", step)
	}

	require.NotNil(t, result.LST)
	require.NotNil(t, result.Anomaly)
	require.NotNil(t, result.Classes)
	require.NotNil(t, result.Indexes)
}

func TestRunShapeMismatch(t *testing.T) {
	// every band participates in shape validation, including the two
	// that feed no index
	bands := map[string]func(in *Input, g *raster.Grid){
		"blue":  func(in *Input, g *raster.Grid) { in.Blue = g },
		"red":   func(in *Input, g *raster.Grid) { in.Red = g },
		"nir":   func(in *Input, g *raster.Grid) { in.NIR = g },
		"swir1": func(in *Input, g *raster.Grid) { in.SWIR1 = g },
		"swir2": func(in *Input, g *raster.Grid) { in.SWIR2 = g },
		"tirs1": func(in *Input, g *raster.Grid) { in.TIRS1 = g },
	}
	for name, set := range bands {
		t.Run(name, func(t *testing.T) {
			in := buildInput()
			set(&in, raster.NewGrid(5, 5))

			_, err := Run(in, Options{})
			var shapeErr *raster.ShapeError
			require.ErrorAs(t, err, &shapeErr)
		})
	}
}

func TestRunWithoutGeoreference(t *testing.T) {
	in := buildInput()
	in.ToLatLon = nil

	result, err := Run(in, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.HeatmapPoints)
	assert.Nil(t, result.HeatmapStats)
}

func TestRunAllInvalidScene(t *testing.T) {
	size := 4
	in := Input{
		Blue:  raster.NewGrid(size, size),
		Green: raster.NewGrid(size, size),
		Red:   raster.NewGrid(size, size),
		NIR:   raster.NewGrid(size, size),
		SWIR1: raster.NewGrid(size, size),
		SWIR2: raster.NewGrid(size, size),
		TIRS1: raster.NewGrid(size, size),
	}

	result, err := Run(in, Options{})
	require.NoError(t, err)

	assert.Nil(t, result.UHI.UHIIntensity)
	assert.Nil(t, result.LSTStatistics.Mean)
	assert.Equal(t, 0, result.LandCover.TotalValidPixels)
	assert.Equal(t, size*size, result.LandCover.NoDataPixels)
	assert.Equal(t, 0, result.UHI.HotspotCount)
}
