// Package shadows finds cloud shadows by combining a dark-pixel test on the
// terrain-corrected near-infrared band with a directional projection of the
// cloud mask away from the sun.
package shadows

import (
	"github.com/project-spencer/msscvm/pkg/raster"
)

const (
	// physical reflectance baseline for shaded ground; not configurable
	darkNIR = 0.11

	// clouds project shadows at most this many cells from their edge
	maxProjectionCells = 50

	// closes small gaps in the detected shadow patches
	closeRadius = 2
)

// Mask returns the shadow layer: cells dark in the corrected NIR band that
// lie inside the shadow corridor projected from the cloud mask along
// 90° - sunAzimuth, closed by a small dilation, never on water. Cloud cells
// themselves are not excluded here; compositing gives cloud precedence.
func Mask(correctedNIR *raster.Grid, cloud, water *raster.Bool, sunAzimuth float64) *raster.Bool {
	dark := correctedNIR.Lt(darkNIR)

	proj := cloud.DirectionalDistance(90-sunAzimuth, maxProjectionCells)
	corridor := proj.Gt(0).And(proj.Finite())

	// water is excluded again after the close filter: dilation would
	// otherwise smear shadow back onto water cells next to a shadow patch
	land := water.Not()
	return dark.And(corridor).And(land).FocalMax(closeRadius).And(land)
}
