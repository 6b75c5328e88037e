// Package raster provides the small set of single-node raster primitives the
// masking pipeline is built on: float and boolean grids on a georeferenced
// cell layout, band arithmetic, thresholding, morphology and resampling.
// Every operation returns a new grid; grids are never mutated in place, so
// callers are free to reuse inputs across derived products.
package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// GridDef describes the cell layout a grid is aligned to: projection code,
// top-left corner of the top-left cell and square cell size in projection
// units. Row 0 is the northernmost row.
type GridDef struct {
	Proj     string  `json:"proj" yaml:"proj"`
	OriginX  float64 `json:"origin_x" yaml:"origin_x"`
	OriginY  float64 `json:"origin_y" yaml:"origin_y"`
	CellSize float64 `json:"cell_size" yaml:"cell_size"`
	Width    int     `json:"width" yaml:"width"`
	Height   int     `json:"height" yaml:"height"`
}

func (d GridDef) Cells() int { return d.Width * d.Height }

// Bound returns the georeferenced extent of the grid.
func (d GridDef) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{d.OriginX, d.OriginY - float64(d.Height)*d.CellSize},
		Max: orb.Point{d.OriginX + float64(d.Width)*d.CellSize, d.OriginY},
	}
}

// CellCenter returns the projected coordinate of the center of cell (col, row).
func (d GridDef) CellCenter(col, row int) orb.Point {
	return orb.Point{
		d.OriginX + (float64(col)+0.5)*d.CellSize,
		d.OriginY - (float64(row)+0.5)*d.CellSize,
	}
}

// CellAt returns the cell containing the projected point p. The cell may lie
// outside the grid; the caller checks the returned indices.
func (d GridDef) CellAt(p orb.Point) (col, row int) {
	col = int(math.Floor((p[0] - d.OriginX) / d.CellSize))
	row = int(math.Floor((d.OriginY - p[1]) / d.CellSize))
	return col, row
}

// sameLayout demands full cell-for-cell alignment: equal dimensions are not
// enough, two grids with different origin, cell size or projection must
// never combine silently.
func (d GridDef) sameLayout(o GridDef) bool {
	return d == o
}

// Grid is a single band of float64 cells in row-major order. Missing values
// are carried as NaN.
type Grid struct {
	Def  GridDef
	Data []float64
}

// NewGrid allocates a grid filled with the given value.
func NewGrid(def GridDef, fill float64) *Grid {
	g := &Grid{Def: def, Data: make([]float64, def.Cells())}
	if fill != 0 {
		for i := range g.Data {
			g.Data[i] = fill
		}
	}
	return g
}

func (g *Grid) At(col, row int) float64 { return g.Data[row*g.Def.Width+col] }

func (g *Grid) Set(col, row int, v float64) { g.Data[row*g.Def.Width+col] = v }

func (g *Grid) Clone() *Grid {
	out := &Grid{Def: g.Def, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// Bool is a per-cell membership layer. The only algebra on it is
// union/intersection/complement.
type Bool struct {
	Def  GridDef
	Data []bool
}

func NewBool(def GridDef) *Bool {
	return &Bool{Def: def, Data: make([]bool, def.Cells())}
}

func (b *Bool) At(col, row int) bool { return b.Data[row*b.Def.Width+col] }

func (b *Bool) Set(col, row int, v bool) { b.Data[row*b.Def.Width+col] = v }

func (b *Bool) Clone() *Bool {
	out := &Bool{Def: b.Def, Data: make([]bool, len(b.Data))}
	copy(out.Data, b.Data)
	return out
}

// Count returns the number of true cells.
func (b *Bool) Count() int {
	n := 0
	for _, v := range b.Data {
		if v {
			n++
		}
	}
	return n
}

// Fraction returns the share of true cells, in [0, 1].
func (b *Bool) Fraction() float64 {
	return float64(b.Count()) / float64(len(b.Data))
}

func mustSameLayout(op string, a, b GridDef) {
	if !a.sameLayout(b) {
		panic(fmt.Sprintf("raster: %s on misaligned grids %+v vs %+v", op, a, b))
	}
}
