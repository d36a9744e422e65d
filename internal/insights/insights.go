// Package insights turns analysis results into natural language
// explanations and prioritized heat mitigation recommendations.
package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/thermal"
	"github.com/urban-guardian/urban-guardian-api/internal/uhi"
)

// Severity grades the overall UHI condition for insight generation. The
// bands are offset from the intensity categories on purpose: severity
// drives messaging, not classification.
type Severity uint8

const (
	SeverityMinimal Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityMinimal:  "minimal",
	SeverityMild:     "mild",
	SeverityModerate: "moderate",
	SeveritySevere:   "severe",
	SeverityCritical: "critical",
}

// ClassifySeverity grades a UHI intensity in Celsius.
func ClassifySeverity(intensity float64) Severity {
	switch {
	case intensity < 1:
		return SeverityMinimal
	case intensity < 3:
		return SeverityMild
	case intensity < 5:
		return SeverityModerate
	case intensity < 7:
		return SeveritySevere
	default:
		return SeverityCritical
	}
}

var healthImpacts = map[Severity]string{
	SeverityMinimal: "Current conditions pose minimal additional health risk from urban heat. " +
		"Standard precautions for vulnerable populations are sufficient.",
	SeverityMild: "Mild heat stress may affect sensitive individuals including the elderly, " +
		"young children, and those with pre-existing conditions. Increased hydration " +
		"and limited outdoor activity during peak hours is recommended.",
	SeverityModerate: "Moderate heat stress conditions present. Risk of heat-related illness is elevated, " +
		"particularly in areas without adequate cooling. Outdoor workers and athletic " +
		"activities should take additional precautions.",
	SeveritySevere: "Severe heat conditions detected. Significant health risks exist for the general " +
		"population. Heat exhaustion and heat stroke cases are likely to increase. " +
		"Emergency cooling centers should be activated.",
	SeverityCritical: "CRITICAL: Extreme heat emergency conditions. Life-threatening heat exposure is " +
		"possible without adequate cooling. Immediate protective actions are required " +
		"including public health alerts and emergency response activation.",
}

// Priority orders recommendations; higher sorts first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityLow:      "LOW",
	PriorityMedium:   "MEDIUM",
	PriorityHigh:     "HIGH",
	PriorityCritical: "CRITICAL",
}

// Recommendation is one prioritized mitigation action.
type Recommendation struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Priority        string `json:"priority"`
	PriorityValue   int    `json:"priority_value"`
	Category        string `json:"category"`
	Timeframe       string `json:"timeframe"`
	EstimatedImpact string `json:"estimated_impact"`
}

// Inputs bundles the upstream results the generator reads.
type Inputs struct {
	UHI            *uhi.Result
	LandCoverStats landcover.Statistics
	NDVIMean       *float64
	LSTStats       thermal.Statistics
}

func (in Inputs) urbanPct() float64 {
	return in.LandCoverStats.ClassPercentages[landcover.ClassNames[landcover.ClassUrban]]
}

func (in Inputs) vegetationPct() float64 {
	return in.LandCoverStats.ClassPercentages[landcover.ClassNames[landcover.ClassVegetation]]
}

func (in Inputs) waterPct() float64 {
	return in.LandCoverStats.ClassPercentages[landcover.ClassNames[landcover.ClassWater]]
}

// Explanation assembles a markdown narrative of the analysis for
// non-technical readers.
func Explanation(in Inputs) string {
	var sections []string

	if in.UHI.UHIIntensity != nil {
		intensity := *in.UHI.UHIIntensity
		severity := ClassifySeverity(intensity)
		direction := "warmer"
		if intensity <= 0 {
			direction = "cooler"
		}
		sections = append(sections, fmt.Sprintf(
			"## Urban Heat Island Analysis Summary\n\n"+
				"The analysis reveals a **%s Urban Heat Island (UHI) effect** with an intensity of **%.1f°C**.\n\n"+
				"Urban areas exhibit a mean temperature of **%.1f°C**, which is %.1f°C %s than surrounding "+
				"vegetated (rural reference) areas at **%.1f°C**.",
			severityNames[severity], intensity,
			value(in.UHI.UrbanMeanTemp), abs(intensity), direction, value(in.UHI.RuralMeanTemp)))
	}

	if in.LSTStats.Min != nil && in.LSTStats.Max != nil {
		section := fmt.Sprintf(
			"### Temperature Distribution\n\n"+
				"Surface temperatures range from **%.1f°C to %.1f°C**, with a spatial variation of %.1f°C "+
				"across the study area. The mean surface temperature is **%.1f°C**.",
			*in.LSTStats.Min, *in.LSTStats.Max, *in.LSTStats.Max-*in.LSTStats.Min, value(in.LSTStats.Mean))
		if in.UHI.HotspotCount > 0 {
			section += fmt.Sprintf(
				"\n\n**%d thermal hotspot pixels** were identified, covering approximately **%.2f km²** of "+
					"land area. These hotspots represent locations where temperatures exceed the regional mean "+
					"by more than 2 standard deviations.",
				in.UHI.HotspotCount, in.UHI.AffectedAreaKm2)
		}
		sections = append(sections, section)
	}

	landCover := fmt.Sprintf(
		"### Land Cover Composition\n\n"+
			"The study area contains:\n"+
			"- **%.1f%%** urban/built-up surfaces\n"+
			"- **%.1f%%** vegetation cover\n"+
			"- **%.1f%%** water bodies",
		in.urbanPct(), in.vegetationPct(), in.waterPct())
	if in.urbanPct() > 60 {
		landCover += "\n\n**High Urban Density Alert**: With more than 60% impervious surface coverage, " +
			"this area is highly susceptible to heat accumulation. Urban surfaces absorb and retain solar " +
			"radiation, contributing significantly to elevated temperatures."
	} else if in.urbanPct() > 40 {
		landCover += "\n\nThe urban coverage is moderately high. As impervious surfaces continue to expand, " +
			"UHI effects are likely to intensify without mitigation measures."
	}
	sections = append(sections, landCover)

	if in.NDVIMean != nil {
		mean := *in.NDVIMean
		var health, detail string
		switch {
		case mean < 0.2:
			health, detail = "poor", "indicating minimal healthy vegetation cover"
		case mean < 0.3:
			health, detail = "fair", "suggesting sparse or stressed vegetation"
		case mean < 0.5:
			health, detail = "moderate", "with mixed vegetation conditions"
		default:
			health, detail = "good", "indicating healthy, dense vegetation"
		}
		section := fmt.Sprintf(
			"### Vegetation Health\n\n"+
				"The mean NDVI value of **%.2f** indicates **%s** vegetation health across the study area, %s. "+
				"Vegetation plays a critical role in urban cooling through evapotranspiration and shading.",
			mean, health, detail)
		if mean < 0.3 {
			section += "\n\n**Low Vegetation Alert**: The limited vegetation cover reduces the natural cooling " +
				"capacity of the area. Green infrastructure investments would provide significant temperature " +
				"reduction benefits."
		}
		sections = append(sections, section)
	}

	if in.UHI.UHIIntensity != nil {
		severity := ClassifySeverity(*in.UHI.UHIIntensity)
		sections = append(sections, "### Health Impact Assessment\n\n"+healthImpacts[severity])
	}

	return strings.Join(sections, "\n\n")
}

// Recommendations derives prioritized mitigation actions from the analysis
// results, sorted by priority, capped at max.
func Recommendations(in Inputs, max int) []Recommendation {
	var recs []recommendation

	intensity := 0.0
	if in.UHI.UHIIntensity != nil {
		intensity = *in.UHI.UHIIntensity
	}
	meanNDVI := 0.5
	if in.NDVIMean != nil {
		meanNDVI = *in.NDVIMean
	}

	if intensity > 5 {
		recs = append(recs, recommendation{
			Title: "Activate Emergency Cooling Measures",
			Description: fmt.Sprintf(
				"With a UHI intensity of %.1f°C, immediate action is required. Open cooling centers in "+
					"affected neighborhoods, extend public facility hours, and deploy mobile cooling units to "+
					"vulnerable areas. Issue public health advisories recommending reduced outdoor activity "+
					"during peak heat hours (11 AM - 4 PM).", intensity),
			Priority:        PriorityCritical,
			Category:        "Emergency Response",
			Timeframe:       "Immediate",
			EstimatedImpact: "High",
		}, recommendation{
			Title: "Implement Cool Pavement Program",
			Description: "Apply high-albedo coatings or reflective surfaces to roads and parking lots in " +
				"identified hotspot areas. Cool pavement technologies can reduce surface temperatures by " +
				"10-20°C compared to traditional asphalt, directly mitigating UHI effects in severely " +
				"affected zones.",
			Priority:        PriorityHigh,
			Category:        "Infrastructure",
			Timeframe:       "Short-term (3-6 months)",
			EstimatedImpact: "High",
		})
	}

	if in.urbanPct() > 60 {
		recs = append(recs, recommendation{
			Title: "Expand Urban Tree Canopy Program",
			Description: fmt.Sprintf(
				"Urban areas cover %.1f%% of the study area. Implement an aggressive tree planting program "+
					"targeting 40%% canopy coverage in residential and commercial zones. Prioritize shade trees "+
					"along pedestrian corridors, parking lots, and around buildings. Each 10%% increase in tree "+
					"canopy can reduce ambient temperatures by 1-2°C.", in.urbanPct()),
			Priority:        PriorityHigh,
			Category:        "Green Infrastructure",
			Timeframe:       "Long-term (2-5 years)",
			EstimatedImpact: "High",
		}, recommendation{
			Title: "Mandate Green Building Standards",
			Description: "Require cool roofs (high Solar Reflectance Index) and green roofs for new " +
				"construction and major renovations. Cool roofs can reduce surface temperatures by up to " +
				"30°C compared to dark roofs. Offer tax incentives for voluntary retrofits.",
			Priority:        PriorityMedium,
			Category:        "Policy",
			Timeframe:       "Medium-term (1-2 years)",
			EstimatedImpact: "Medium",
		})
	}

	if meanNDVI < 0.3 {
		recs = append(recs, recommendation{
			Title: "Invest in Green Infrastructure Network",
			Description: fmt.Sprintf(
				"Mean NDVI of %.2f indicates insufficient vegetation for effective cooling. Develop a "+
					"connected green infrastructure network including pocket parks, green corridors, bioswales, "+
					"and urban gardens. Target conversion of 5%% of impervious surfaces to vegetated areas "+
					"within identified hotspot zones.", meanNDVI),
			Priority:        PriorityHigh,
			Category:        "Green Infrastructure",
			Timeframe:       "Medium-term (1-3 years)",
			EstimatedImpact: "High",
		}, recommendation{
			Title: "Establish Community Garden Program",
			Description: "Convert vacant lots and underutilized spaces in heat-vulnerable neighborhoods into " +
				"community gardens. This provides both cooling benefits and community resilience through " +
				"local food production. Target 5 new community gardens per high-impact area.",
			Priority:        PriorityMedium,
			Category:        "Community",
			Timeframe:       "Short-term (6-12 months)",
			EstimatedImpact: "Medium",
		})
	}

	if in.UHI.HotspotCount > 1000 || in.UHI.AffectedAreaKm2 > 1.0 {
		recs = append(recs, recommendation{
			Title: "Target Hotspot Mitigation Zones",
			Description: fmt.Sprintf(
				"Approximately %.2f km² has been identified as thermal hotspots. Prioritize these areas for "+
					"immediate interventions including shade structures, misting systems, and reflective surface "+
					"treatments. Create detailed micro-climate improvement plans for the top 10 most critical "+
					"hotspot clusters.", in.UHI.AffectedAreaKm2),
			Priority:        PriorityHigh,
			Category:        "Targeted Intervention",
			Timeframe:       "Short-term (3-6 months)",
			EstimatedImpact: "High",
		})
	}

	if intensity > 3 && intensity <= 5 {
		recs = append(recs, recommendation{
			Title: "Develop Heat Action Plan",
			Description: fmt.Sprintf(
				"The moderate UHI intensity of %.1f°C warrants a comprehensive heat action plan. Establish "+
					"early warning systems, identify vulnerable populations, and create neighborhood-level "+
					"response protocols. Train community health workers on heat illness prevention and "+
					"response.", intensity),
			Priority:        PriorityMedium,
			Category:        "Planning",
			Timeframe:       "Medium-term (6-12 months)",
			EstimatedImpact: "Medium",
		})
	}

	if intensity > 3 && in.vegetationPct() < 30 {
		recs = append(recs, recommendation{
			Title: "Integrate Blue Infrastructure",
			Description: "Incorporate water features such as fountains, splash pads, and urban streams in " +
				"high-traffic public spaces. Water bodies and evaporative cooling features can reduce local " +
				"temperatures by 2-4°C. Prioritize locations near transit stops and community gathering spaces.",
			Priority:        PriorityMedium,
			Category:        "Blue Infrastructure",
			Timeframe:       "Medium-term (1-2 years)",
			EstimatedImpact: "Medium",
		})
	}

	if len(recs) < 3 {
		recs = append(recs, recommendation{
			Title: "Establish Long-term Monitoring Program",
			Description: "Implement continuous thermal monitoring using satellite imagery and ground-based " +
				"sensors. Track UHI trends seasonally and evaluate mitigation effectiveness. Create public " +
				"dashboards showing real-time heat conditions and historical trends.",
			Priority:        PriorityLow,
			Category:        "Monitoring",
			Timeframe:       "Ongoing",
			EstimatedImpact: "Low",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority > recs[j].Priority })
	if len(recs) > max {
		recs = recs[:max]
	}

	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = Recommendation{
			Title:           r.Title,
			Description:     r.Description,
			Priority:        priorityNames[r.Priority],
			PriorityValue:   int(r.Priority),
			Category:        r.Category,
			Timeframe:       r.Timeframe,
			EstimatedImpact: r.EstimatedImpact,
		}
	}
	return out
}

type recommendation struct {
	Title           string
	Description     string
	Priority        Priority
	Category        string
	Timeframe       string
	EstimatedImpact string
}

// SummaryMetrics is the quick-reference metrics block of a report.
type SummaryMetrics struct {
	UHIIntensityC         float64  `json:"uhi_intensity_c"`
	UHISeverity           string   `json:"uhi_severity"`
	UrbanCoveragePct      float64  `json:"urban_coverage_pct"`
	VegetationCoveragePct float64  `json:"vegetation_coverage_pct"`
	MeanNDVI              *float64 `json:"mean_ndvi"`
	MaxTemperatureC       *float64 `json:"max_temperature_c"`
	MeanTemperatureC      *float64 `json:"mean_temperature_c"`
	HotspotAreaKm2        float64  `json:"hotspot_area_km2"`
	HotspotClusters       int      `json:"hotspot_clusters"`
}

// Report is the full insight product.
type Report struct {
	Explanation         string           `json:"explanation"`
	Recommendations     []Recommendation `json:"recommendations"`
	RecommendationCount int              `json:"recommendation_count"`
	Severity            string           `json:"severity"`
	SeverityValue       int              `json:"severity_value"`
	SummaryMetrics      SummaryMetrics   `json:"summary_metrics"`
}

// DefaultMaxRecommendations caps a report's recommendation list.
const DefaultMaxRecommendations = 5

// Generate builds the complete insight report.
func Generate(in Inputs) Report {
	intensity := 0.0
	if in.UHI.UHIIntensity != nil {
		intensity = *in.UHI.UHIIntensity
	}
	severity := ClassifySeverity(intensity)
	recs := Recommendations(in, DefaultMaxRecommendations)

	return Report{
		Explanation:         Explanation(in),
		Recommendations:     recs,
		RecommendationCount: len(recs),
		Severity:            severityNames[severity],
		SeverityValue:       int(severity),
		SummaryMetrics: SummaryMetrics{
			UHIIntensityC:         intensity,
			UHISeverity:           severityNames[severity],
			UrbanCoveragePct:      in.urbanPct(),
			VegetationCoveragePct: in.vegetationPct(),
			MeanNDVI:              in.NDVIMean,
			MaxTemperatureC:       in.LSTStats.Max,
			MeanTemperatureC:      in.LSTStats.Mean,
			HotspotAreaKm2:        in.UHI.AffectedAreaKm2,
			HotspotClusters:       in.UHI.HotspotClusterCount,
		},
	}
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
