package uhi

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

func grid(rows [][]float64) *raster.Grid {
	return raster.GridFromRows(rows, raster.DefaultSentinel)
}

func TestClassifyIntensity(t *testing.T) {
	tests := []struct {
		intensity float64
		expected  Category
	}{
		{-1.0, CategoryNone},
		{1.9, CategoryNone},
		{2.0, CategoryWeak},
		{3.9, CategoryWeak},
		{4.0, CategoryModerate},
		{6.0, CategoryStrong},
		{8.0, CategoryVeryStrong},
		{12.0, CategoryVeryStrong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyIntensity(tt.intensity), "intensity %.1f", tt.intensity)
	}
}

func TestZoneTemperatureEmptyZoneIsNil(t *testing.T) {
	lst := grid([][]float64{{20.0, 25.0}})
	landCover := raster.NewClassGrid(2, 1)
	landCover.Set(0, 0, uint8(landcover.ClassWater))
	landCover.Set(1, 0, uint8(landcover.ClassWater))

	stats := ZoneTemperature(lst, landCover, landcover.ClassUrban)
	assert.Nil(t, stats.Mean)
	assert.Equal(t, 0, stats.PixelCount)
}

func TestIdentifyHotspotsThreshold(t *testing.T) {
	// nine pixels at 20 and one far outlier
	lst := grid([][]float64{
		{20, 20, 20, 20, 20},
		{20, 20, 20, 20, 60},
	})
	hotspots, info := IdentifyHotspots(lst, 2.0)

	require.NotNil(t, info.ThresholdTemp)
	assert.Equal(t, 1, hotspots.Count())
	assert.True(t, hotspots.At(4, 1))
}

func TestIdentifyHotspotsMonotonicity(t *testing.T) {
	lst := grid([][]float64{
		{18, 20, 22, 24, 26},
		{28, 30, 32, 34, 60},
	})
	loose, _ := IdentifyHotspots(lst, 1.0)
	strict, _ := IdentifyHotspots(lst, 2.0)

	// a stricter threshold marks a subset of the looser mask
	assert.LessOrEqual(t, strict.Count(), loose.Count())
	for y := 0; y < lst.Height(); y++ {
		for x := 0; x < lst.Width(); x++ {
			if strict.At(x, y) {
				assert.True(t, loose.At(x, y))
			}
		}
	}
}

func TestIdentifyHotspotsAllInvalid(t *testing.T) {
	lst := raster.NewGrid(3, 3)
	hotspots, info := IdentifyHotspots(lst, 2.0)

	assert.Equal(t, 0, hotspots.Count())
	assert.Nil(t, info.Mean)
	assert.Nil(t, info.ThresholdTemp)
}

func TestCountClusters(t *testing.T) {
	mask := raster.NewMask(6, 3)
	// one 4-connected cluster of 4
	mask.Set(0, 0, true)
	mask.Set(1, 0, true)
	mask.Set(0, 1, true)
	mask.Set(1, 1, true)
	// a diagonal pixel is NOT connected to it
	mask.Set(2, 2, true)
	// separate single pixel
	mask.Set(5, 0, true)

	count, labels := CountClusters(mask, 2)
	assert.Equal(t, 1, count)

	// all four cluster members share a label
	label := labels.At(0, 0)
	assert.NotZero(t, label)
	assert.Equal(t, label, labels.At(1, 0))
	assert.Equal(t, label, labels.At(0, 1))
	assert.Equal(t, label, labels.At(1, 1))
	assert.NotEqual(t, label, labels.At(2, 2))
	assert.Zero(t, labels.At(3, 0))
}

func TestCountClustersMinSize(t *testing.T) {
	mask := raster.NewMask(10, 1)
	for x := 0; x < 5; x++ {
		mask.Set(x, 0, true)
	}
	mask.Set(8, 0, true)

	count, _ := CountClusters(mask, 5)
	assert.Equal(t, 1, count)

	count, _ = CountClusters(mask, 1)
	assert.Equal(t, 2, count)

	count, _ = CountClusters(mask, 6)
	assert.Equal(t, 0, count)
}

// componentKeys canonicalizes the label partition as a set of sorted
// pixel lists, with labels erased. transpose maps pixels back to the
// untransposed frame so partitions from both scan orders compare.
func componentKeys(labels *LabelGrid, transpose bool) map[string]bool {
	groups := make(map[int32][][2]int)
	for y := 0; y < labels.Height(); y++ {
		for x := 0; x < labels.Width(); x++ {
			label := labels.At(x, y)
			if label == 0 {
				continue
			}
			p := [2]int{x, y}
			if transpose {
				p = [2]int{y, x}
			}
			groups[label] = append(groups[label], p)
		}
	}
	keys := make(map[string]bool, len(groups))
	for _, pixels := range groups {
		sort.Slice(pixels, func(i, j int) bool {
			if pixels[i][0] != pixels[j][0] {
				return pixels[i][0] < pixels[j][0]
			}
			return pixels[i][1] < pixels[j][1]
		})
		keys[fmt.Sprint(pixels)] = true
	}
	return keys
}

func TestCountClustersOrderIndependent(t *testing.T) {
	// irregular components: an L of 5, a bar of 3, a domino and two
	// isolated pixels
	mask := raster.NewMask(7, 5)
	for _, p := range [][2]int{
		{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2},
		{4, 0}, {5, 0}, {6, 0},
		{5, 3}, {5, 4},
		{2, 4}, {6, 2},
	} {
		mask.Set(p[0], p[1], true)
	}

	// transposing the mask visits pixels in a different order but
	// preserves 4-connectivity
	transposed := raster.NewMask(5, 7)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			transposed.Set(y, x, mask.At(x, y))
		}
	}

	count, labels := CountClusters(mask, 3)
	countT, labelsT := CountClusters(transposed, 3)

	assert.Equal(t, 2, count)
	assert.Equal(t, count, countT)
	assert.Equal(t, componentKeys(labels, false), componentKeys(labelsT, true))
}

func TestAffectedArea(t *testing.T) {
	mask := raster.NewMask(4, 4)
	for x := 0; x < 4; x++ {
		mask.Set(x, 0, true)
	}

	area := AffectedArea(mask, 30.0)
	assert.Equal(t, 4, area.PixelCount)
	assert.InDelta(t, 3600.0, area.AreaM2, 1e-9)
	assert.InDelta(t, 0.0036, area.AreaKm2, 1e-9)
	assert.InDelta(t, 0.36, area.AreaHa, 1e-9)
}

func buildScenario() (*raster.Grid, *raster.ClassGrid) {
	// 20x20 scene: left half urban at 35C, right half vegetation at 30C,
	// with a hot urban block pushed far above the scene mean
	lst := raster.NewGrid(20, 20)
	landCover := raster.NewClassGrid(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				lst.Set(x, y, 35.0)
				landCover.Set(x, y, uint8(landcover.ClassUrban))
			} else {
				lst.Set(x, y, 30.0)
				landCover.Set(x, y, uint8(landcover.ClassVegetation))
			}
		}
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			lst.Set(x, y, 50.0)
		}
	}
	return lst, landCover
}

func TestAnalyzeScenario(t *testing.T) {
	lst, landCover := buildScenario()

	result, err := Analyze(lst, landCover, Options{})
	require.NoError(t, err)

	require.NotNil(t, result.UHIIntensity)
	// urban mean: (184*35 + 16*50)/200 = 36.2; rural mean 30
	assert.InDelta(t, 6.2, *result.UHIIntensity, 1e-9)
	assert.Equal(t, "Strong", result.UHICategory)
	assert.Equal(t, 184+16, result.UrbanStats.PixelCount)
	assert.Equal(t, 200, result.RuralStats.PixelCount)

	// the 16-pixel hot block is the only region above mean + 2 std
	assert.Equal(t, 16, result.HotspotCount)
	assert.Equal(t, 1, result.HotspotClusterCount)
	assert.InDelta(t, 16*900.0/1e6, result.AffectedAreaKm2, 1e-9)
	assert.Equal(t, "Celsius", result.Unit)
}

func TestAnalyzeExplicitZeroThreshold(t *testing.T) {
	lst, landCover := buildScenario()

	result, err := Analyze(lst, landCover, Options{StdThreshold: raster.Float64Ptr(0)})
	require.NoError(t, err)

	// an explicit zero puts the threshold at the scene mean (33.1), so
	// all 200 pixels above it are hotspots, not just the hot block
	assert.Equal(t, 200, result.HotspotCount)
	require.NotNil(t, result.HotspotThresholdTemp)
	assert.InDelta(t, 33.1, *result.HotspotThresholdTemp, 1e-9)
}

func TestAnalyzeEmptyUrbanZone(t *testing.T) {
	lst := grid([][]float64{{20.0, 25.0}})
	landCover := raster.NewClassGrid(2, 1)
	landCover.Set(0, 0, uint8(landcover.ClassVegetation))
	landCover.Set(1, 0, uint8(landcover.ClassVegetation))

	result, err := Analyze(lst, landCover, Options{})
	require.NoError(t, err)

	assert.Nil(t, result.UHIIntensity)
	assert.Nil(t, result.UrbanMeanTemp)
	assert.Equal(t, "No UHI Effect", result.UHICategory)
}

func TestAnalyzeShapeMismatch(t *testing.T) {
	lst := grid([][]float64{{20.0}})
	landCover := raster.NewClassGrid(2, 1)

	_, err := Analyze(lst, landCover, Options{})
	var shapeErr *raster.ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestAnomalyMap(t *testing.T) {
	lst := grid([][]float64{{30.0, 35.0}})
	landCover := raster.NewClassGrid(2, 1)
	landCover.Set(0, 0, uint8(landcover.ClassVegetation))
	landCover.Set(1, 0, uint8(landcover.ClassUrban))

	anomaly, err := AnomalyMap(lst, landCover)
	require.NoError(t, err)

	v, ok := anomaly.At(0, 0)
	assert.True(t, ok)
	assert.InDelta(t, 0.0, v, 1e-9)

	v, ok = anomaly.At(1, 0)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-9)
}

func TestAnomalyMapNoRuralReference(t *testing.T) {
	lst := grid([][]float64{{30.0}})
	landCover := raster.NewClassGrid(1, 1)
	landCover.Set(0, 0, uint8(landcover.ClassUrban))

	anomaly, err := AnomalyMap(lst, landCover)
	require.NoError(t, err)
	assert.Equal(t, 0, anomaly.ValidCount())
}
