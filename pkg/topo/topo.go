// Package topo models terrain illumination and applies the Minnaert
// correction that flattens terrain-induced brightness variation in the
// near-infrared band before the dark-pixel shadow test.
package topo

import (
	"math"

	"github.com/project-spencer/msscvm/pkg/raster"
)

const degToRad = math.Pi / 180

// Minnaert exponent as a function of slope, fifth-order empirical fit. The
// fit is only valid up to 50 degrees of slope; steeper cells are evaluated
// at exactly 50 (clamp, never extrapolate).
const maxFitSlopeDeg = 50.0

var kCoeffs = [6]float64{
	1.0021313684,
	-0.1308793751,
	0.0106861276,
	-0.0004051135,
	0.0000071825,
	-0.0000000488,
}

// Illumination returns the cosine-of-incidence grid for the given sun
// geometry and terrain: cos(z)cos(s) + sin(z)sin(s)cos(az - aspect) with
// z the solar zenith. Values are deliberately not clamped; self-shadowed
// terrain comes out negative and grazing geometry can exceed the usual
// range. Consumers must tolerate both.
func Illumination(slope, aspect *raster.Grid, sunAzimuth, sunElevation float64) *raster.Grid {
	zenith := (90 - sunElevation) * degToRad
	cosZ := math.Cos(zenith)
	sinZ := math.Sin(zenith)
	az := sunAzimuth * degToRad

	out := raster.NewGrid(slope.Def, 0)
	for i := range out.Data {
		s := slope.Data[i] * degToRad
		a := aspect.Data[i] * degToRad
		out.Data[i] = cosZ*math.Cos(s) + sinZ*math.Sin(s)*math.Cos(az-a)
	}
	return out
}

// MinnaertK evaluates the slope-dependent Minnaert exponent per cell.
func MinnaertK(slope *raster.Grid) *raster.Grid {
	return slope.Map(kForSlope)
}

func kForSlope(slopeDeg float64) float64 {
	s := math.Min(slopeDeg, maxFitSlopeDeg)
	// Horner evaluation of the fitted polynomial
	k := kCoeffs[5]
	for i := 4; i >= 0; i-- {
		k = k*s + kCoeffs[i]
	}
	return k
}

// CorrectNIR applies the Minnaert correction to the near-infrared band:
// corrected = nir * (cos(z) / IC)^k. Cells where the illumination is near
// zero or negative produce extreme or NaN factors; that degeneracy is a
// known limitation of the model and is propagated, not guarded.
func CorrectNIR(nir, slope, illumination *raster.Grid, sunElevation float64) *raster.Grid {
	cosZ := math.Cos((90 - sunElevation) * degToRad)
	k := MinnaertK(slope)

	out := raster.NewGrid(nir.Def, 0)
	for i := range out.Data {
		factor := math.Pow(cosZ/illumination.Data[i], k.Data[i])
		out.Data[i] = nir.Data[i] * factor
	}
	return out
}
