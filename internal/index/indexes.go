// Package index computes per-pixel spectral indices from calibrated
// Landsat 8/9 band rasters.
package index

import (
	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// NormalizedDifference computes (a-b)/(a+b) per pixel, clipped to [-1, 1].
// A pixel is valid only when both inputs are valid and the denominator is
// non-zero; all other pixels come out invalid.
func NormalizedDifference(a, b *raster.Grid) (*raster.Grid, error) {
	if err := a.CheckShape(b); err != nil {
		return nil, err
	}

	out := raster.NewGrid(a.Width(), a.Height())
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			av, aok := a.At(x, y)
			bv, bok := b.At(x, y)
			if !aok || !bok {
				continue
			}
			denominator := av + bv
			if denominator == 0 {
				continue
			}
			v := (av - bv) / denominator
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			out.Set(x, y, v)
		}
	}
	return out, nil
}

// Ratio computes a/b per pixel without clipping. Urban surfaces typically
// show SWIR1/NIR above 1.0, so the ratio is left unbounded.
func Ratio(a, b *raster.Grid) (*raster.Grid, error) {
	if err := a.CheckShape(b); err != nil {
		return nil, err
	}

	out := raster.NewGrid(a.Width(), a.Height())
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			av, aok := a.At(x, y)
			bv, bok := b.At(x, y)
			if !aok || !bok || bv == 0 {
				continue
			}
			out.Set(x, y, av/bv)
		}
	}
	return out, nil
}

// NDVI is the vegetation index (NIR - Red) / (NIR + Red).
func NDVI(nir, red *raster.Grid) (*raster.Grid, error) {
	return NormalizedDifference(nir, red)
}

// NDWI is the McFeeters water index (Green - NIR) / (Green + NIR).
func NDWI(green, nir *raster.Grid) (*raster.Grid, error) {
	return NormalizedDifference(green, nir)
}

// NDBI is the built-up index (SWIR1 - NIR) / (SWIR1 + NIR).
func NDBI(swir1, nir *raster.Grid) (*raster.Grid, error) {
	return NormalizedDifference(swir1, nir)
}

// MNDWI is the modified water index (Green - SWIR1) / (Green + SWIR1),
// better at separating water from built-up surfaces.
func MNDWI(green, swir1 *raster.Grid) (*raster.Grid, error) {
	return NormalizedDifference(green, swir1)
}

// UrbanRatio is the SWIR1/NIR band ratio.
func UrbanRatio(swir1, nir *raster.Grid) (*raster.Grid, error) {
	return Ratio(swir1, nir)
}

// Set bundles every index the pipeline derives from the reflectance bands.
type Set struct {
	NDVI       *raster.Grid
	NDWI       *raster.Grid
	NDBI       *raster.Grid
	MNDWI      *raster.Grid
	UrbanRatio *raster.Grid
}

// ComputeAll derives the full index set from the reflectance bands.
func ComputeAll(green, red, nir, swir1 *raster.Grid) (*Set, error) {
	ndvi, err := NDVI(nir, red)
	if err != nil {
		return nil, err
	}
	ndwi, err := NDWI(green, nir)
	if err != nil {
		return nil, err
	}
	ndbi, err := NDBI(swir1, nir)
	if err != nil {
		return nil, err
	}
	mndwi, err := MNDWI(green, swir1)
	if err != nil {
		return nil, err
	}
	urbanRatio, err := UrbanRatio(swir1, nir)
	if err != nil {
		return nil, err
	}
	return &Set{NDVI: ndvi, NDWI: ndwi, NDBI: ndbi, MNDWI: mndwi, UrbanRatio: urbanRatio}, nil
}
