package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/urban-guardian/urban-guardian-api/internal/landsat"
	"github.com/urban-guardian/urban-guardian-api/internal/pipeline"
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
	"github.com/urban-guardian/urban-guardian-api/internal/uhi"
	"github.com/urban-guardian/urban-guardian-api/output"
)

func printBanner() {
	figure1 := figure.NewFigure("Urban", "isometric1", true)
	figure2 := figure.NewFigure("Guardian", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	var (
		sceneDir       = flag.String("scene", "", "directory containing band_2.tif .. band_7.tif and band_10.tif")
		outDir         = flag.String("out", "output", "directory for rendered results")
		ml             = flag.Float64("ml", 0, "band 10 radiance multiplicative rescaling factor")
		al             = flag.Float64("al", 0, "band 10 radiance additive rescaling factor")
		hotspotStd     = flag.Float64("hotspot-std", uhi.DefaultStdThreshold, "hotspot threshold in standard deviations above the mean")
		minClusterSize = flag.Int("min-cluster", 0, "minimum hotspot cluster size in pixels")
	)
	flag.Parse()

	if *sceneDir == "" {
		fmt.Println("\033[31m-scene is required\033[0m")
		flag.Usage()
		os.Exit(1)
	}

	printBanner()

	if err := run(*sceneDir, *outDir, pipeline.Options{
		ML:             *ml,
		AL:             *al,
		HotspotStd:     hotspotStd,
		MinClusterSize: *minClusterSize,
	}); err != nil {
		fmt.Printf("\033[31mError: %s\033[0m\n", err.Error())
		os.Exit(1)
	}
}

func run(sceneDir, outDir string, opts pipeline.Options) error {
	grids := make(map[landsat.Band]*raster.Grid, len(landsat.AnalysisBands))
	progressBar := progressbar.Default(int64(len(landsat.AnalysisBands)), "Reading bands")

	var refScene *landsat.Scene
	for _, band := range landsat.AnalysisBands {
		path := filepath.Join(sceneDir, string(band)+".tif")
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(sceneDir, string(band)+".tiff")
		}
		scene, err := landsat.Open(path)
		if err != nil {
			return err
		}
		grid, err := scene.ReadGrid()
		if err != nil {
			scene.Close()
			return err
		}
		grids[band] = grid
		if band == landsat.BandTIRS1 {
			refScene = scene
			defer refScene.Close()
		} else {
			scene.Close()
		}
		progressBar.Add(1)
	}
	progressBar.Finish()

	input := pipeline.Input{
		Blue:  grids[landsat.BandBlue],
		Green: grids[landsat.BandGreen],
		Red:   grids[landsat.BandRed],
		NIR:   grids[landsat.BandNIR],
		SWIR1: grids[landsat.BandSWIR1],
		SWIR2: grids[landsat.BandSWIR2],
		TIRS1: grids[landsat.BandTIRS1],
	}
	if toLatLon, err := refScene.PixelToLatLon(); err == nil {
		input.ToLatLon = toLatLon
	}
	if md, err := refScene.Metadata(); err == nil {
		input.Metadata = &md
	}
	opts.PixelResolutionM = refScene.PixelResolutionM(0)

	result, err := pipeline.Run(input, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	reportPath := filepath.Join(outDir, "analysis.json")
	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	fmt.Println("Analysis report created successfully at", reportPath)

	if err := output.CreateLandCoverImage(result.Classes, filepath.Join(outDir, "land_cover")); err != nil {
		return err
	}
	if err := output.CreateHotspotImage(result.LST, result.UHI.HotspotMask, result.UHI.HotspotThresholdTemp, filepath.Join(outDir, "hotspots")); err != nil {
		return err
	}
	if err := output.CreateAnomalyImage(result.Anomaly, filepath.Join(outDir, "anomaly")); err != nil {
		return err
	}
	if len(result.HeatmapPoints) > 0 {
		if err := output.CreateHeatmapGeoJSON(result.HeatmapPoints, filepath.Join(outDir, "heatmap")); err != nil {
			return err
		}
		if err := output.CreateHeatmapCSV(result.HeatmapPoints, filepath.Join(outDir, "heatmap")); err != nil {
			return err
		}
	}

	if result.UHI.UHIIntensity != nil {
		bannercolor.Green("UHI intensity: %.2f°C (%s)", *result.UHI.UHIIntensity, result.UHI.UHICategory)
	} else {
		bannercolor.Yellow("UHI intensity could not be computed (missing urban or rural pixels)")
	}
	bannercolor.Green("Hotspots: %d pixels in %d clusters covering %.4f km²",
		result.UHI.HotspotCount, result.UHI.HotspotClusterCount, result.UHI.AffectedAreaKm2)
	return nil
}
