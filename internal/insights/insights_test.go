package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
	"github.com/urban-guardian/urban-guardian-api/internal/thermal"
	"github.com/urban-guardian/urban-guardian-api/internal/uhi"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		intensity float64
		expected  Severity
	}{
		{0.5, SeverityMinimal},
		{1.0, SeverityMild},
		{2.9, SeverityMild},
		{3.0, SeverityModerate},
		{5.0, SeveritySevere},
		{7.0, SeverityCritical},
		{10.0, SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifySeverity(tt.intensity), "intensity %.1f", tt.intensity)
	}
}

func testInputs(intensity float64, urbanPct, vegPct float64, ndviMean float64) Inputs {
	return Inputs{
		UHI: &uhi.Result{
			UHIIntensity:        raster.Float64Ptr(intensity),
			UrbanMeanTemp:       raster.Float64Ptr(34.0),
			RuralMeanTemp:       raster.Float64Ptr(34.0 - intensity),
			HotspotCount:        1500,
			HotspotClusterCount: 3,
			AffectedAreaKm2:     1.35,
		},
		LandCoverStats: landcover.Statistics{
			ClassPercentages: map[string]float64{
				"Urban/Built-up": urbanPct,
				"Vegetation":     vegPct,
				"Water":          2.0,
			},
		},
		NDVIMean: raster.Float64Ptr(ndviMean),
		LSTStats: thermal.Statistics{
			Stats: raster.Stats{
				Min:  raster.Float64Ptr(22.0),
				Max:  raster.Float64Ptr(48.0),
				Mean: raster.Float64Ptr(31.0),
			},
		},
	}
}

func TestRecommendationsSortedAndCapped(t *testing.T) {
	// severe intensity, dense urban, sparse vegetation triggers every rule
	in := testInputs(6.5, 70.0, 10.0, 0.15)

	recs := Recommendations(in, DefaultMaxRecommendations)
	require.LessOrEqual(t, len(recs), DefaultMaxRecommendations)
	require.NotEmpty(t, recs)

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].PriorityValue, recs[i].PriorityValue)
	}
	assert.Equal(t, "CRITICAL", recs[0].Priority)
}

func TestRecommendationsAlwaysPresent(t *testing.T) {
	// benign scene still gets the monitoring fallback
	in := testInputs(0.5, 20.0, 60.0, 0.6)
	in.UHI.HotspotCount = 0
	in.UHI.AffectedAreaKm2 = 0

	recs := Recommendations(in, DefaultMaxRecommendations)
	require.NotEmpty(t, recs)
	assert.Equal(t, "Establish Long-term Monitoring Program", recs[len(recs)-1].Title)
}

func TestExplanationSections(t *testing.T) {
	in := testInputs(6.5, 70.0, 10.0, 0.15)
	text := Explanation(in)

	assert.Contains(t, text, "Urban Heat Island Analysis Summary")
	assert.Contains(t, text, "severe")
	assert.Contains(t, text, "Temperature Distribution")
	assert.Contains(t, text, "Land Cover Composition")
	assert.Contains(t, text, "High Urban Density Alert")
	assert.Contains(t, text, "Low Vegetation Alert")
	assert.Contains(t, text, "Health Impact Assessment")
}

func TestExplanationWithoutIntensity(t *testing.T) {
	in := testInputs(1.0, 20.0, 60.0, 0.6)
	in.UHI.UHIIntensity = nil

	text := Explanation(in)
	assert.False(t, strings.Contains(text, "Urban Heat Island Analysis Summary"))
	assert.Contains(t, text, "Land Cover Composition")
}

func TestGenerate(t *testing.T) {
	in := testInputs(6.5, 70.0, 10.0, 0.15)
	report := Generate(in)

	assert.Equal(t, "severe", report.Severity)
	assert.Equal(t, int(SeveritySevere), report.SeverityValue)
	assert.Equal(t, len(report.Recommendations), report.RecommendationCount)
	assert.InDelta(t, 6.5, report.SummaryMetrics.UHIIntensityC, 1e-9)
	assert.InDelta(t, 70.0, report.SummaryMetrics.UrbanCoveragePct, 1e-9)
	assert.Equal(t, 3, report.SummaryMetrics.HotspotClusters)
}
