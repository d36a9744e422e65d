package uhi

import (
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// ThresholdInfo reports the statistics behind a hotspot mask. Pointer
// fields are nil when the scene has no valid temperature pixels.
type ThresholdInfo struct {
	Mean          *float64 `json:"mean"`
	Std           *float64 `json:"std"`
	ThresholdTemp *float64 `json:"threshold_temp"`
	StdThreshold  float64  `json:"std_threshold"`
}

// IdentifyHotspots marks pixels whose temperature exceeds the scene mean
// plus stdThreshold standard deviations. An all-invalid scene yields an
// all-false mask and nil threshold fields.
func IdentifyHotspots(lst *raster.Grid, stdThreshold float64) (*raster.Mask, ThresholdInfo) {
	mask := raster.NewMask(lst.Width(), lst.Height())
	info := ThresholdInfo{StdThreshold: stdThreshold}

	stats := raster.ComputeStats(lst)
	if stats.Mean == nil || stats.Std == nil {
		return mask, info
	}

	threshold := *stats.Mean + stdThreshold**stats.Std
	info.Mean = stats.Mean
	info.Std = stats.Std
	info.ThresholdTemp = raster.Float64Ptr(threshold)

	for y := 0; y < lst.Height(); y++ {
		for x := 0; x < lst.Width(); x++ {
			if v, ok := lst.At(x, y); ok && v > threshold {
				mask.Set(x, y, true)
			}
		}
	}
	return mask, info
}

// LabelGrid holds per-pixel cluster labels. Zero means no cluster;
// positive labels are unique within one run only.
type LabelGrid struct {
	width  int
	height int
	labels []int32
}

func (g *LabelGrid) Width() int        { return g.width }
func (g *LabelGrid) Height() int       { return g.height }
func (g *LabelGrid) At(x, y int) int32 { return g.labels[y*g.width+x] }

// CountClusters labels 4-connected components of the hotspot mask with a
// breadth-first flood fill over a flat visited bitmap. It returns the
// number of components with at least minClusterSize pixels and the label
// grid. The partition depends only on connectivity, not traversal order;
// sub-threshold components keep their labels, they just aren't counted.
func CountClusters(hotspots *raster.Mask, minClusterSize int) (int, *LabelGrid) {
	width, height := hotspots.Width(), hotspots.Height()
	out := &LabelGrid{width: width, height: height, labels: make([]int32, width*height)}

	visited := make([]bool, width*height)
	queue := make([]int, 0, 64)
	var label int32
	significant := 0

	for start := 0; start < width*height; start++ {
		if visited[start] || !hotspots.At(start%width, start/width) {
			continue
		}

		label++
		clusterSize := 0
		queue = append(queue[:0], start)
		visited[start] = true

		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			out.labels[i] = label
			clusterSize++

			x, y := i%width, i/width
			for _, n := range [4][2]int{{x, y - 1}, {x, y + 1}, {x - 1, y}, {x + 1, y}} {
				nx, ny := n[0], n[1]
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				ni := ny*width + nx
				if !visited[ni] && hotspots.At(nx, ny) {
					visited[ni] = true
					queue = append(queue, ni)
				}
			}
		}

		if clusterSize >= minClusterSize {
			significant++
		}
	}
	return significant, out
}

// AreaStats reports the ground area covered by hotspot pixels.
type AreaStats struct {
	PixelCount       int     `json:"pixel_count"`
	PixelResolutionM float64 `json:"pixel_resolution_m"`
	AreaM2           float64 `json:"area_m2"`
	AreaKm2          float64 `json:"area_km2"`
	AreaHa           float64 `json:"area_ha"`
}

// AffectedArea converts the hotspot pixel count into ground area for the
// given pixel resolution in meters.
func AffectedArea(hotspots *raster.Mask, pixelResolutionM float64) AreaStats {
	count := hotspots.Count()
	pixelAreaM2 := pixelResolutionM * pixelResolutionM
	totalM2 := float64(count) * pixelAreaM2
	return AreaStats{
		PixelCount:       count,
		PixelResolutionM: pixelResolutionM,
		AreaM2:           totalM2,
		AreaKm2:          raster.Round(totalM2/1e6, 4),
		AreaHa:           raster.Round(totalM2/1e4, 2),
	}
}
