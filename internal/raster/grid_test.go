package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFromRowsMarksSentinelInvalid(t *testing.T) {
	g := GridFromRows([][]float64{
		{1.0, DefaultSentinel},
		{math.NaN(), 4.0},
	}, DefaultSentinel)

	v, ok := g.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = g.At(1, 0)
	assert.False(t, ok)

	_, ok = g.At(0, 1)
	assert.False(t, ok)

	assert.Equal(t, 2, g.ValidCount())
}

func TestSetNonFiniteStoresInvalid(t *testing.T) {
	g := NewGrid(2, 1)
	g.Set(0, 0, math.Inf(1))
	g.Set(1, 0, 7.5)

	assert.False(t, g.Valid(0, 0))
	assert.True(t, g.Valid(1, 0))
}

func TestRowsRestoresSentinel(t *testing.T) {
	g := NewGrid(2, 1)
	g.Set(0, 0, 3.0)

	rows := g.Rows(DefaultSentinel)
	assert.Equal(t, [][]float64{{3.0, DefaultSentinel}}, rows)
}

func TestCheckShape(t *testing.T) {
	a := NewGrid(3, 2)
	b := NewGrid(3, 2)
	c := NewGrid(2, 3)

	assert.NoError(t, a.CheckShape(b))

	err := a.CheckShape(c)
	require.Error(t, err)
	assert.Equal(t, "raster shape mismatch: 3x2 vs 2x3", err.Error())
}

func TestComputeStats(t *testing.T) {
	g := GridFromRows([][]float64{
		{2.0, 4.0},
		{6.0, DefaultSentinel},
	}, DefaultSentinel)

	stats := ComputeStats(g)
	require.NotNil(t, stats.Mean)
	assert.Equal(t, 3, stats.ValidPixels)
	assert.Equal(t, 4, stats.TotalPixels)
	assert.InDelta(t, 4.0, *stats.Mean, 1e-9)
	assert.InDelta(t, 2.0, *stats.Min, 1e-9)
	assert.InDelta(t, 6.0, *stats.Max, 1e-9)
	// population standard deviation, not sample
	assert.InDelta(t, math.Sqrt(8.0/3.0), *stats.Std, 1e-9)
}

func TestComputeStatsEmptyGrid(t *testing.T) {
	g := NewGrid(2, 2)
	stats := ComputeStats(g)

	assert.Nil(t, stats.Mean)
	assert.Nil(t, stats.Min)
	assert.Nil(t, stats.Max)
	assert.Nil(t, stats.Std)
	assert.Equal(t, 0, stats.ValidPixels)
}

func TestMedian(t *testing.T) {
	odd := GridFromRows([][]float64{{3.0, 1.0, 2.0}}, DefaultSentinel)
	m := Median(odd)
	require.NotNil(t, m)
	assert.InDelta(t, 2.0, *m, 1e-9)

	even := GridFromRows([][]float64{{4.0, 1.0, 3.0, 2.0}}, DefaultSentinel)
	m = Median(even)
	require.NotNil(t, m)
	assert.InDelta(t, 2.5, *m, 1e-9)

	assert.Nil(t, Median(NewGrid(2, 2)))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, 1.235, Round(1.2346, 3))
	assert.Nil(t, RoundPtr(nil, 2))
}
