package raster

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Add returns g + o cell-wise.
func (g *Grid) Add(o *Grid) *Grid {
	mustSameLayout("add", g.Def, o.Def)
	out := g.Clone()
	floats.Add(out.Data, o.Data)
	return out
}

// Sub returns g - o cell-wise.
func (g *Grid) Sub(o *Grid) *Grid {
	mustSameLayout("sub", g.Def, o.Def)
	out := g.Clone()
	floats.Sub(out.Data, o.Data)
	return out
}

// Mul returns g * o cell-wise.
func (g *Grid) Mul(o *Grid) *Grid {
	mustSameLayout("mul", g.Def, o.Def)
	out := g.Clone()
	floats.Mul(out.Data, o.Data)
	return out
}

// Div returns g / o cell-wise. Division by zero follows IEEE-754: the result
// is ±Inf or NaN and is propagated, not clamped.
func (g *Grid) Div(o *Grid) *Grid {
	mustSameLayout("div", g.Def, o.Def)
	out := g.Clone()
	floats.Div(out.Data, o.Data)
	return out
}

// Scale returns g * s cell-wise.
func (g *Grid) Scale(s float64) *Grid {
	out := g.Clone()
	floats.Scale(s, out.Data)
	return out
}

// AddScalar returns g + s cell-wise.
func (g *Grid) AddScalar(s float64) *Grid {
	out := g.Clone()
	floats.AddConst(s, out.Data)
	return out
}

// Pow returns g^e cell-wise.
func (g *Grid) Pow(e *Grid) *Grid {
	mustSameLayout("pow", g.Def, e.Def)
	out := g.Clone()
	for i, v := range out.Data {
		out.Data[i] = math.Pow(v, e.Data[i])
	}
	return out
}

// Map returns f applied to every cell.
func (g *Grid) Map(f func(float64) float64) *Grid {
	out := g.Clone()
	for i, v := range out.Data {
		out.Data[i] = f(v)
	}
	return out
}

// NormalizedDifference returns (a-b)/(a+b). Cells where a+b is zero come out
// as NaN, which every comparison treats as false.
func NormalizedDifference(a, b *Grid) *Grid {
	mustSameLayout("normalizedDifference", a.Def, b.Def)
	out := NewGrid(a.Def, 0)
	for i := range out.Data {
		out.Data[i] = (a.Data[i] - b.Data[i]) / (a.Data[i] + b.Data[i])
	}
	return out
}

// Gt returns the cells strictly greater than s. NaN cells are false.
func (g *Grid) Gt(s float64) *Bool {
	out := NewBool(g.Def)
	for i, v := range g.Data {
		out.Data[i] = v > s
	}
	return out
}

// Lt returns the cells strictly less than s. NaN cells are false.
func (g *Grid) Lt(s float64) *Bool {
	out := NewBool(g.Def)
	for i, v := range g.Data {
		out.Data[i] = v < s
	}
	return out
}

// Finite returns the cells holding a finite value.
func (g *Grid) Finite() *Bool {
	out := NewBool(g.Def)
	for i, v := range g.Data {
		out.Data[i] = !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return out
}

// And returns the intersection of two layers.
func (b *Bool) And(o *Bool) *Bool {
	mustSameLayout("and", b.Def, o.Def)
	out := NewBool(b.Def)
	for i := range out.Data {
		out.Data[i] = b.Data[i] && o.Data[i]
	}
	return out
}

// Or returns the union of two layers.
func (b *Bool) Or(o *Bool) *Bool {
	mustSameLayout("or", b.Def, o.Def)
	out := NewBool(b.Def)
	for i := range out.Data {
		out.Data[i] = b.Data[i] || o.Data[i]
	}
	return out
}

// Not returns the complement of a layer.
func (b *Bool) Not() *Bool {
	out := NewBool(b.Def)
	for i := range out.Data {
		out.Data[i] = !b.Data[i]
	}
	return out
}

// Mask returns g with every cell outside keep replaced by NaN.
func (g *Grid) Mask(keep *Bool) *Grid {
	mustSameLayout("mask", g.Def, keep.Def)
	out := g.Clone()
	for i := range out.Data {
		if !keep.Data[i] {
			out.Data[i] = math.NaN()
		}
	}
	return out
}
