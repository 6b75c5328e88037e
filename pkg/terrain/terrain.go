// Package terrain derives the slope and aspect grids the illumination model
// needs, from a prioritized mosaic of elevation sources resampled onto the
// target image layout.
package terrain

import (
	"fmt"
	"math"

	"github.com/project-spencer/msscvm/pkg/raster"
)

// Model is a DEM-derived terrain model aligned to one grid layout. Slope and
// aspect are in degrees; aspect is compass convention, clockwise from north.
type Model struct {
	Elevation *raster.Grid
	Slope     *raster.Grid
	Aspect    *raster.Grid
}

// New mosaics the elevation sources onto the target layout and derives slope
// and aspect. Sources are in priority order: the first source with a finite
// value at a cell wins, later sources only fill its gaps. That makes the
// mosaic a prioritized override, never an average.
func New(sources []*raster.Grid, def raster.GridDef) (*Model, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("terrain: no elevation sources")
	}

	dem := raster.NewGrid(def, math.NaN())
	for _, src := range sources {
		rs, err := src.ResampleTo(def, raster.Bilinear)
		if err != nil {
			return nil, fmt.Errorf("terrain: %w", err)
		}
		for i, v := range dem.Data {
			if math.IsNaN(v) && !math.IsNaN(rs.Data[i]) {
				dem.Data[i] = rs.Data[i]
			}
		}
	}

	slope, aspect := Derivatives(dem)
	return &Model{Elevation: dem, Slope: slope, Aspect: aspect}, nil
}

// Derivatives computes slope and aspect in degrees from an elevation grid
// using the Horn 3x3 finite-difference kernel. Edge cells reuse the nearest
// interior neighbor.
func Derivatives(dem *raster.Grid) (slope, aspect *raster.Grid) {
	def := dem.Def
	slope = raster.NewGrid(def, 0)
	aspect = raster.NewGrid(def, 0)
	cell := def.CellSize

	at := func(col, row int) float64 {
		if col < 0 {
			col = 0
		}
		if row < 0 {
			row = 0
		}
		if col >= def.Width {
			col = def.Width - 1
		}
		if row >= def.Height {
			row = def.Height - 1
		}
		return dem.At(col, row)
	}

	for row := 0; row < def.Height; row++ {
		for col := 0; col < def.Width; col++ {
			a := at(col-1, row-1)
			b := at(col, row-1)
			c := at(col+1, row-1)
			d := at(col-1, row)
			f := at(col+1, row)
			g := at(col-1, row+1)
			h := at(col, row+1)
			i := at(col+1, row+1)

			dzdx := ((c + 2*f + i) - (a + 2*d + g)) / (8 * cell)
			dzdy := ((g + 2*h + i) - (a + 2*b + c)) / (8 * cell)

			slope.Set(col, row, math.Atan(math.Sqrt(dzdx*dzdx+dzdy*dzdy))*180/math.Pi)
			aspect.Set(col, row, compassAspect(dzdx, dzdy))
		}
	}
	return slope, aspect
}

// compassAspect converts Horn derivatives to a downslope direction in
// compass degrees (0 = north, clockwise).
func compassAspect(dzdx, dzdy float64) float64 {
	deg := math.Atan2(dzdy, -dzdx) * 180 / math.Pi
	switch {
	case deg < 0:
		return 90 - deg
	case deg > 90:
		return 360 - deg + 90
	default:
		return 90 - deg
	}
}
