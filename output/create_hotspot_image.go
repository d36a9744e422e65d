package output

import (
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// CreateHotspotImage renders the temperature raster in grayscale with
// hotspot pixels overlaid on a yellow to red gradient scaled by how far
// the pixel sits above the hotspot threshold.
func CreateHotspotImage(lst *raster.Grid, hotspots *raster.Mask, thresholdTemp *float64, outputImagePath string) error {
	if !strings.HasSuffix(outputImagePath, ".png") {
		outputImagePath += ".png"
	}

	width, height := lst.Width(), lst.Height()
	stats := raster.ComputeStats(lst)
	if stats.Min == nil || stats.Max == nil {
		return fmt.Errorf("no valid temperature data to render")
	}
	min, max := *stats.Min, *stats.Max
	span := max - min
	if span == 0 {
		span = 1
	}

	dc := gg.NewContext(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v, ok := lst.At(x, y)
			if !ok {
				dc.SetRGB(0, 0, 0)
				dc.SetPixel(x, y)
				continue
			}
			gray := (v - min) / span
			dc.SetRGB(gray, gray, gray)
			dc.SetPixel(x, y)
		}
	}

	if thresholdTemp != nil {
		threshold := *thresholdTemp
		overSpan := max - threshold
		if overSpan <= 0 {
			overSpan = 1
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !hotspots.At(x, y) {
					continue
				}
				v, ok := lst.At(x, y)
				if !ok {
					continue
				}
				heat := (v - threshold) / overSpan
				if heat < 0 {
					heat = 0
				}
				if heat > 1 {
					heat = 1
				}
				// yellow (1,1,0) to red (1,0,0)
				dc.SetRGB(1, 1-heat, 0)
				dc.SetPixel(x, y)
			}
		}
	}

	if err := dc.SavePNG(outputImagePath); err != nil {
		return fmt.Errorf("error saving hotspot image: %w", err)
	}
	return nil
}
