// Package thermal converts Landsat 8/9 Band 10 digital numbers into land
// surface temperature via the single-channel algorithm: DN to radiance,
// radiance to brightness temperature, NDVI-based emissivity estimation,
// emissivity-corrected temperature.
package thermal

import (
	"math"

	"github.com/urban-guardian/urban-guardian-api/internal/raster"
)

// Band 10 thermal constants from the USGS Landsat 8/9 handbook.
const (
	K1 = 774.89  // W/(m^2 sr um)
	K2 = 1321.08 // Kelvin

	Wavelength = 10.9e-6  // Band 10 center wavelength in meters
	Rho        = 1.438e-2 // h*c/sigma in m*K

	KelvinToCelsius = 273.15
)

// Radiometric rescaling coefficients come from the scene's MTL metadata;
// these are typical Band 10 values callers can fall back on.
const (
	DefaultML = 3.342e-4
	DefaultAL = 0.1
)

// NDVI threshold emissivity model (Sobrino 2004): fixed endpoints with a
// squared vegetation-proportion interpolation in between.
const (
	ndviSoil = 0.2
	ndviVeg  = 0.5

	emissivitySoil = 0.97
	emissivityVeg  = 0.99

	emissivityCoeffPv   = 0.004
	emissivityCoeffBase = 0.986
)

// DNToRadiance applies the radiometric rescale L = ml*DN + al. Pixels with
// non-positive DN are invalid, and a computed non-positive radiance is
// demoted to invalid to keep the next stage's logarithm defined.
func DNToRadiance(band10 *raster.Grid, ml, al float64) *raster.Grid {
	out := raster.NewGrid(band10.Width(), band10.Height())
	for y := 0; y < band10.Height(); y++ {
		for x := 0; x < band10.Width(); x++ {
			dn, ok := band10.At(x, y)
			if !ok || dn <= 0 {
				continue
			}
			radiance := ml*dn + al
			if radiance <= 0 {
				continue
			}
			out.Set(x, y, radiance)
		}
	}
	return out
}

// RadianceToBrightnessTemp inverts Planck's law: BT = K2 / ln(K1/L + 1),
// in Kelvin. Only positive radiance pixels are valid.
func RadianceToBrightnessTemp(radiance *raster.Grid, k1, k2 float64) *raster.Grid {
	out := raster.NewGrid(radiance.Width(), radiance.Height())
	for y := 0; y < radiance.Height(); y++ {
		for x := 0; x < radiance.Width(); x++ {
			l, ok := radiance.At(x, y)
			if !ok || l <= 0 {
				continue
			}
			out.Set(x, y, k2/math.Log(k1/l+1))
		}
	}
	return out
}

// EmissivityFromNDVI estimates land surface emissivity per pixel:
// below 0.2 bare soil (0.97), above 0.5 full vegetation (0.99), otherwise
// e = 0.004*Pv + 0.986 with Pv = ((ndvi-0.2)/0.3)^2. The squared fraction
// follows the published vegetation-proportion model.
func EmissivityFromNDVI(ndvi *raster.Grid) *raster.Grid {
	out := raster.NewGrid(ndvi.Width(), ndvi.Height())
	for y := 0; y < ndvi.Height(); y++ {
		for x := 0; x < ndvi.Width(); x++ {
			v, ok := ndvi.At(x, y)
			if !ok {
				continue
			}
			switch {
			case v < ndviSoil:
				out.Set(x, y, emissivitySoil)
			case v > ndviVeg:
				out.Set(x, y, emissivityVeg)
			default:
				pv := (v - ndviSoil) / (ndviVeg - ndviSoil)
				pv *= pv
				out.Set(x, y, emissivityCoeffPv*pv+emissivityCoeffBase)
			}
		}
	}
	return out
}

// LST applies the emissivity correction LST = BT / (1 + (lambda*BT/rho)*ln(e))
// and converts to Celsius when outputCelsius is set. Both inputs must share
// a shape; a mismatch is the only error.
func LST(brightnessTemp, emissivity *raster.Grid, outputCelsius bool) (*raster.Grid, error) {
	if err := brightnessTemp.CheckShape(emissivity); err != nil {
		return nil, err
	}

	out := raster.NewGrid(brightnessTemp.Width(), brightnessTemp.Height())
	for y := 0; y < brightnessTemp.Height(); y++ {
		for x := 0; x < brightnessTemp.Width(); x++ {
			bt, btOK := brightnessTemp.At(x, y)
			eps, epsOK := emissivity.At(x, y)
			if !btOK || !epsOK || bt <= 0 || eps <= 0 {
				continue
			}
			lst := bt / (1 + (Wavelength*bt/Rho)*math.Log(eps))
			if outputCelsius {
				lst -= KelvinToCelsius
			}
			out.Set(x, y, lst)
		}
	}
	return out, nil
}

// Retrieve chains the four stages from Band 10 digital numbers and NDVI to
// land surface temperature in Celsius, returning the intermediates.
func Retrieve(band10, ndvi *raster.Grid, ml, al float64) (lst, radiance, brightnessTemp, emissivity *raster.Grid, err error) {
	radiance = DNToRadiance(band10, ml, al)
	brightnessTemp = RadianceToBrightnessTemp(radiance, K1, K2)
	emissivity = EmissivityFromNDVI(ndvi)
	lst, err = LST(brightnessTemp, emissivity, true)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return lst, radiance, brightnessTemp, emissivity, nil
}
