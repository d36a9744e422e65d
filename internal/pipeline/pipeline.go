// Package pipeline runs the complete heat island analysis over a set of
// Landsat bands and assembles the response envelope.
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/urban-guardian/urban-guardian-api/internal/heatmap"
	"github.com/urban-guardian/urban-guardian-api/internal/index"
	"github.com/urban-guardian/urban-guardian-api/internal/insights"
	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/landsat"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
	"github.com/urban-guardian/urban-guardian-api/internal/thermal"
	"github.com/urban-guardian/urban-guardian-api/internal/uhi"
)

// Options tunes a pipeline run. Zero values select the defaults;
// HotspotStd is a pointer so an explicit zero (threshold at the scene
// mean) stays distinguishable from unset.
type Options struct {
	ML               float64
	AL               float64
	HotspotStd       *float64
	MinClusterSize   int
	PixelResolutionM float64
	MaxHeatmapPoints int
}

func (o Options) withDefaults() Options {
	if o.ML == 0 {
		o.ML = thermal.DefaultML
	}
	if o.AL == 0 {
		o.AL = thermal.DefaultAL
	}
	if o.HotspotStd == nil {
		o.HotspotStd = raster.Float64Ptr(uhi.DefaultStdThreshold)
	}
	if o.MinClusterSize == 0 {
		o.MinClusterSize = uhi.DefaultMinClusterSize
	}
	if o.PixelResolutionM == 0 {
		o.PixelResolutionM = uhi.DefaultPixelResolutionM
	}
	if o.MaxHeatmapPoints == 0 {
		o.MaxHeatmapPoints = heatmap.DefaultMaxPoints
	}
	return o
}

// Input carries the decoded band rasters and optional georeferencing.
// Blue and SWIR2 take no part in the index math but are co-required
// uploads, so they join the shape validation.
type Input struct {
	Blue  *raster.Grid
	Green *raster.Grid
	Red   *raster.Grid
	NIR   *raster.Grid
	SWIR1 *raster.Grid
	SWIR2 *raster.Grid
	TIRS1 *raster.Grid

	// ToLatLon enables heatmap point generation; nil skips it.
	ToLatLon heatmap.PixelToLatLon
	Metadata *landsat.Metadata
}

// StepTiming records one pipeline stage's wall time.
type StepTiming struct {
	Step       string  `json:"step"`
	DurationMs float64 `json:"duration_ms"`
}

// Result is the full analysis envelope returned to clients.
type Result struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`

	LSTStatistics   thermal.Statistics               `json:"lst_statistics"`
	ThermalZones    map[string]int                   `json:"thermal_zones"`
	NDVIStatistics  raster.Stats                     `json:"ndvi_statistics"`
	NDVICategories  map[string]float64               `json:"ndvi_categories"`
	LandCover       landcover.Statistics             `json:"land_cover"`
	LandCoverLegend map[string]landcover.LegendEntry `json:"land_cover_legend"`
	UHI             *uhi.Result                      `json:"uhi_analysis"`
	Insights        insights.Report                  `json:"insights"`
	HeatmapPoints   []heatmap.Point                  `json:"heatmap_points,omitempty"`
	HeatmapStats    *heatmap.Statistics              `json:"heatmap_statistics,omitempty"`
	HeatmapSampling int                              `json:"heatmap_sample_step,omitempty"`
	Metadata        *landsat.Metadata                `json:"metadata,omitempty"`
	Timings         []StepTiming                     `json:"timings"`
	TotalDurationMs float64                          `json:"total_duration_ms"`

	// Rasters for rendering, not serialized.
	LST        *raster.Grid      `json:"-"`
	Anomaly    *raster.Grid      `json:"-"`
	Classes    *raster.ClassGrid `json:"-"`
	Indexes    *index.Set        `json:"-"`
	Emissivity *raster.Grid      `json:"-"`
}

type timer struct {
	start   time.Time
	overall time.Time
	timings []StepTiming
}

func newTimer() *timer {
	now := time.Now()
	return &timer{start: now, overall: now}
}

func (t *timer) mark(step string) {
	now := time.Now()
	t.timings = append(t.timings, StepTiming{
		Step:       step,
		DurationMs: raster.Round(float64(now.Sub(t.start).Microseconds())/1000, 2),
	})
	t.start = now
}

func (t *timer) totalMs() float64 {
	return raster.Round(float64(time.Since(t.overall).Microseconds())/1000, 2)
}

// Run executes the full analysis chain.
func Run(in Input, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	t := newTimer()

	for _, band := range []*raster.Grid{in.Blue, in.Red, in.NIR, in.SWIR1, in.SWIR2, in.TIRS1} {
		if err := in.Green.CheckShape(band); err != nil {
			return nil, err
		}
	}

	indexes, err := computeIndexes(in)
	if err != nil {
		return nil, err
	}
	t.mark("spectral_indexes")

	lst, _, _, emissivity, err := thermal.Retrieve(in.TIRS1, indexes.NDVI, opts.ML, opts.AL)
	if err != nil {
		return nil, fmt.Errorf("error retrieving surface temperature: %w", err)
	}
	t.mark("surface_temperature")

	classes := landcover.ClassifyFromIndexes(indexes)
	landStats := landcover.ComputeStatistics(classes)
	t.mark("land_cover")

	uhiResult, err := uhi.Analyze(lst, classes, uhi.Options{
		StdThreshold:     opts.HotspotStd,
		MinClusterSize:   opts.MinClusterSize,
		PixelResolutionM: opts.PixelResolutionM,
	})
	if err != nil {
		return nil, fmt.Errorf("error analyzing heat island: %w", err)
	}
	anomaly, err := uhi.AnomalyMap(lst, classes)
	if err != nil {
		return nil, fmt.Errorf("error computing anomaly map: %w", err)
	}
	t.mark("uhi_analysis")

	lstStats := thermal.LSTStatistics(lst)
	zones := thermal.ClassifyZones(lst)
	zoneCounts := make(map[string]int, len(thermal.ZoneNames))
	for zone, name := range thermal.ZoneNames {
		zoneCounts[name] = zones.Count(uint8(zone))
	}
	ndviStats := raster.ComputeStats(indexes.NDVI)
	ndviCategories := index.CategoryPercentages(index.ClassifyNDVI(indexes.NDVI))
	t.mark("statistics")

	report := insights.Generate(insights.Inputs{
		UHI:            uhiResult,
		LandCoverStats: landStats,
		NDVIMean:       ndviStats.Mean,
		LSTStats:       lstStats,
	})
	t.mark("insights")

	result := &Result{
		JobID:           uuid.NewString(),
		Status:          "completed",
		LSTStatistics:   lstStats,
		ThermalZones:    zoneCounts,
		NDVIStatistics:  ndviStats,
		NDVICategories:  ndviCategories,
		LandCover:       landStats,
		LandCoverLegend: landcover.Legend(),
		UHI:             uhiResult,
		Insights:        report,
		Metadata:        in.Metadata,
		LST:             lst,
		Anomaly:         anomaly,
		Classes:         classes,
		Indexes:         indexes,
		Emissivity:      emissivity,
	}

	if in.ToLatLon != nil {
		points, step, err := heatmap.Generate(lst, in.ToLatLon, heatmap.Config{MaxPoints: opts.MaxHeatmapPoints})
		if err != nil {
			return nil, fmt.Errorf("error generating heatmap points: %w", err)
		}
		stats := heatmap.ComputeStatistics(points)
		result.HeatmapPoints = points
		result.HeatmapStats = &stats
		result.HeatmapSampling = step
		t.mark("heatmap")
	}

	result.Timings = t.timings
	result.TotalDurationMs = t.totalMs()
	return result, nil
}

// computeIndexes fans the four normalized indices and the urban ratio
// out over a worker pool.
func computeIndexes(in Input) (*index.Set, error) {
	set := &index.Set{}
	tasks := []struct {
		name    string
		compute func() (*raster.Grid, error)
		dst     **raster.Grid
	}{
		{"ndvi", func() (*raster.Grid, error) { return index.NDVI(in.NIR, in.Red) }, &set.NDVI},
		{"ndwi", func() (*raster.Grid, error) { return index.NDWI(in.Green, in.NIR) }, &set.NDWI},
		{"ndbi", func() (*raster.Grid, error) { return index.NDBI(in.SWIR1, in.NIR) }, &set.NDBI},
		{"mndwi", func() (*raster.Grid, error) { return index.MNDWI(in.Green, in.SWIR1) }, &set.MNDWI},
		{"urban_ratio", func() (*raster.Grid, error) { return index.UrbanRatio(in.SWIR1, in.NIR) }, &set.UrbanRatio},
	}

	wp := workerpool.New(len(tasks))
	errChan := make(chan error, 1)
	var stopProcessing sync.Once

	for _, task := range tasks {
		task := task
		wp.Submit(func() {
			grid, err := task.compute()
			if err != nil {
				stopProcessing.Do(func() { errChan <- fmt.Errorf("error computing %s: %w", task.name, err) })
				return
			}
			*task.dst = grid
		})
	}

	go func() {
		wp.StopWait()
		close(errChan)
	}()

	if err := <-errChan; err != nil {
		return nil, err
	}
	return set, nil
}
