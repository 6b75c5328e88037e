// Package clouds holds the spectral cloud and water tests and the
// morphological cleanup that turns raw cloud candidates into the mask the
// shadow projector consumes.
package clouds

import (
	"github.com/project-spencer/msscvm/pkg/raster"
)

const (
	// brightness thresholds of the Braaten-Cohen-Yang cloud test
	// https://custom-scripts.sentinel-hub.com/sentinel-2/cby_cloud_detection/
	brightGreen   = 0.175
	brighterGreen = 0.39

	// candidates below this component size are speckle, not cloud
	minClusterCells = 9

	// fixed buffer against cloud-boundary contamination
	dilateRadius = 2

	waterNDThreshold = -0.085
)

// Candidates applies the spectral cloud test to the green and red
// reflectance bands: a cell is a candidate when its green/red normalized
// difference is positive and either green brightness threshold trips. The
// two thresholds collapse to a single OR.
func Candidates(green, red *raster.Grid) *raster.Bool {
	nd := raster.NormalizedDifference(green, red)
	bright := green.Gt(brightGreen).Or(green.Gt(brighterGreen))
	return nd.Gt(0).And(bright)
}

// Mask runs the full cloud detection: spectral candidates, the
// connected-component sieve on the native cell layout, then a circular
// dilation. The result is the cloud mask every downstream step consumes.
func Mask(green, red *raster.Grid) *raster.Bool {
	return Candidates(green, red).Sieve(minClusterCells).FocalMax(dilateRadius)
}

// Water flags open-water cells: strongly negative NIR/red normalized
// difference, confined to the maximum historical water extent so that dark
// land surfaces do not leak in.
func Water(nir, red *raster.Grid, maxExtent *raster.Bool) *raster.Bool {
	return raster.NormalizedDifference(nir, red).Lt(waterNDThreshold).And(maxExtent)
}

// Coverage returns the sieved, dilated cloud fraction of a scene in [0, 1].
// Batch screening uses it to drop scenes too cloudy to bother masking.
func Coverage(green, red *raster.Grid) float64 {
	return Mask(green, red).Fraction()
}
