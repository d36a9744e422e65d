package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/urban-guardian/urban-guardian-api/internal/landcover"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// CreateLandCoverImage renders a classified raster with the class palette
// and saves it as a PNG.
func CreateLandCoverImage(classes *raster.ClassGrid, outputImagePath string) error {
	if !strings.HasSuffix(outputImagePath, ".png") {
		outputImagePath += ".png"
	}

	width, height := classes.Width(), classes.Height()
	newImage := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			newImage.Set(x, y, landcover.ClassColors[landcover.Class(classes.At(x, y))])
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
