package raster

import (
	"fmt"
	"math"
)

// Resampling selects how cell values are interpolated when a grid is
// resampled onto another layout.
type Resampling int

const (
	Nearest Resampling = iota
	Bilinear
)

// ResampleTo resamples the grid onto the target layout. Both layouts must
// carry the same projection code; this engine resamples within one
// projection and does not do CRS math. Target cells outside the source
// extent come out as NaN.
func (g *Grid) ResampleTo(def GridDef, method Resampling) (*Grid, error) {
	if g.Def.Proj != def.Proj {
		return nil, fmt.Errorf("raster: cannot resample across projections (%s vs %s)", g.Def.Proj, def.Proj)
	}
	out := NewGrid(def, math.NaN())
	for row := 0; row < def.Height; row++ {
		for col := 0; col < def.Width; col++ {
			p := def.CellCenter(col, row)
			var v float64
			switch method {
			case Bilinear:
				v = g.sampleBilinear(p[0], p[1])
			default:
				v = g.sampleNearest(p[0], p[1])
			}
			out.Data[row*def.Width+col] = v
		}
	}
	return out, nil
}

func (g *Grid) sampleNearest(x, y float64) float64 {
	col, row := g.Def.CellAt([2]float64{x, y})
	if col < 0 || row < 0 || col >= g.Def.Width || row >= g.Def.Height {
		return math.NaN()
	}
	return g.At(col, row)
}

func (g *Grid) sampleBilinear(x, y float64) float64 {
	// fractional cell coordinates relative to cell centers
	fc := (x-g.Def.OriginX)/g.Def.CellSize - 0.5
	fr := (g.Def.OriginY-y)/g.Def.CellSize - 0.5

	c0 := int(math.Floor(fc))
	r0 := int(math.Floor(fr))
	tc := fc - float64(c0)
	tr := fr - float64(r0)

	clampC := func(c int) int {
		if c < 0 {
			return 0
		}
		if c >= g.Def.Width {
			return g.Def.Width - 1
		}
		return c
	}
	clampR := func(r int) int {
		if r < 0 {
			return 0
		}
		if r >= g.Def.Height {
			return g.Def.Height - 1
		}
		return r
	}
	if c0 < -1 || r0 < -1 || c0 > g.Def.Width-1 || r0 > g.Def.Height-1 {
		return math.NaN()
	}

	samples := [4]float64{
		g.At(clampC(c0), clampR(r0)),
		g.At(clampC(c0+1), clampR(r0)),
		g.At(clampC(c0), clampR(r0+1)),
		g.At(clampC(c0+1), clampR(r0+1)),
	}
	weights := [4]float64{
		(1 - tc) * (1 - tr),
		tc * (1 - tr),
		(1 - tc) * tr,
		tc * tr,
	}

	// NaN cells (nodata) drop out and the remaining weights renormalize, so
	// a gap in one source does not bleed into its neighbors
	var sum, wsum float64
	for i, v := range samples {
		if weights[i] == 0 || math.IsNaN(v) {
			continue
		}
		sum += v * weights[i]
		wsum += weights[i]
	}
	if wsum == 0 {
		return math.NaN()
	}
	return sum / wsum
}
