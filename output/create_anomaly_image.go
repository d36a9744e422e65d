package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// CreateAnomalyImage renders a temperature anomaly raster on a diverging
// blue to red scale centered on zero. Invalid pixels stay black.
func CreateAnomalyImage(anomaly *raster.Grid, outputImagePath string) error {
	if !strings.HasSuffix(outputImagePath, ".png") {
		outputImagePath += ".png"
	}

	width, height := anomaly.Width(), anomaly.Height()

	maxAbs := 0.0
	for _, v := range anomaly.ValidValues() {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	newImage := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v, ok := anomaly.At(x, y)
			if !ok {
				newImage.Set(x, y, color.RGBA{0, 0, 0, 255})
				continue
			}
			t := v / maxAbs
			if t > 0 {
				newImage.Set(x, y, color.RGBA{255, uint8(255 * (1 - t)), uint8(255 * (1 - t)), 255})
			} else {
				newImage.Set(x, y, color.RGBA{uint8(255 * (1 + t)), uint8(255 * (1 + t)), 255, 255})
			}
		}
	}

	outputFile, err := os.Create(outputImagePath)
	if err != nil {
		return fmt.Errorf("error creating PNG file: %w", err)
	}
	defer outputFile.Close()

	if err := png.Encode(outputFile, newImage); err != nil {
		return fmt.Errorf("error encoding PNG file: %w", err)
	}
	return nil
}
