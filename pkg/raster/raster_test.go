package raster

import (
	"math"
	"testing"
)

func testDef(w, h int) GridDef {
	return GridDef{Proj: "EPSG:32612", OriginX: 500000, OriginY: 4600000, CellSize: 60, Width: w, Height: h}
}

func TestNormalizedDifference(t *testing.T) {
	def := testDef(2, 1)
	a := NewGrid(def, 0)
	b := NewGrid(def, 0)
	a.Set(0, 0, 0.5)
	b.Set(0, 0, 0.1)

	nd := NormalizedDifference(a, b)

	want := (0.5 - 0.1) / (0.5 + 0.1)
	if math.Abs(nd.At(0, 0)-want) > 1e-12 {
		t.Errorf("nd(0.5, 0.1) = %f, want %f", nd.At(0, 0), want)
	}

	// both zero: undefined, must come out NaN and compare as false
	if !math.IsNaN(nd.At(1, 0)) {
		t.Errorf("nd(0, 0) = %f, want NaN", nd.At(1, 0))
	}
	if nd.Gt(0).At(1, 0) {
		t.Errorf("NaN cell compared true against 0")
	}
}

func TestThresholdsIgnoreNaN(t *testing.T) {
	def := testDef(1, 1)
	g := NewGrid(def, math.NaN())
	if g.Gt(-1).At(0, 0) || g.Lt(1).At(0, 0) {
		t.Errorf("NaN cell passed a threshold")
	}
}

func TestSieveRemovesSpecksKeepsBlocks(t *testing.T) {
	def := testDef(10, 10)
	b := NewBool(def)

	// isolated single cell
	b.Set(0, 0, true)

	// solid 3x3 block, exactly the minimum size of 9
	for row := 5; row < 8; row++ {
		for col := 5; col < 8; col++ {
			b.Set(col, row, true)
		}
	}

	out := b.Sieve(9)

	if out.At(0, 0) {
		t.Errorf("isolated cell survived the sieve")
	}
	for row := 5; row < 8; row++ {
		for col := 5; col < 8; col++ {
			if !out.At(col, row) {
				t.Errorf("3x3 block cell (%d,%d) removed by the sieve", col, row)
			}
		}
	}
}

func TestSieveUsesEightConnectivity(t *testing.T) {
	def := testDef(12, 12)
	b := NewBool(def)
	// a diagonal of 9 cells is one component only under 8-connectivity
	for i := 0; i < 9; i++ {
		b.Set(i, i, true)
	}

	out := b.Sieve(9)
	for i := 0; i < 9; i++ {
		if !out.At(i, i) {
			t.Fatalf("diagonal component split by sieve at (%d,%d)", i, i)
		}
	}
}

func TestFocalMaxIsExtensive(t *testing.T) {
	def := testDef(20, 20)
	b := NewBool(def)
	b.Set(3, 3, true)
	b.Set(10, 15, true)
	b.Set(19, 0, true)

	out := b.FocalMax(2)

	for i, v := range b.Data {
		if v && !out.Data[i] {
			t.Fatalf("dilation dropped an input cell at index %d", i)
		}
	}

	// circular kernel: (1,1) offset is inside radius 2, (2,2) is not
	if !out.At(4, 4) {
		t.Errorf("diagonal neighbor (4,4) not dilated")
	}
	if out.At(5, 5) {
		t.Errorf("(5,5) dilated, outside the circular kernel")
	}
	if !out.At(1, 3) || !out.At(3, 1) {
		t.Errorf("axis neighbors at distance 2 not dilated")
	}
}

func TestDirectionalDistance(t *testing.T) {
	def := testDef(11, 11)
	b := NewBool(def)
	b.Set(5, 5, true)

	// angle 0: walk toward grid east
	east := b.DirectionalDistance(0, 50)
	if got := east.At(2, 5); got != 3 {
		t.Errorf("distance east from (2,5) = %f, want 3", got)
	}
	if got := east.At(8, 5); !math.IsInf(got, 1) {
		t.Errorf("distance east from (8,5) = %f, want +Inf", got)
	}
	if got := east.At(5, 5); got != 0 {
		t.Errorf("distance at a true cell = %f, want 0", got)
	}

	// angle 90: walk toward grid north (row decreases)
	north := b.DirectionalDistance(90, 50)
	if got := north.At(5, 8); got != 3 {
		t.Errorf("distance north from (5,8) = %f, want 3", got)
	}

	// bounded search
	short := b.DirectionalDistance(0, 2)
	if got := short.At(2, 5); !math.IsInf(got, 1) {
		t.Errorf("distance with maxDist 2 from (2,5) = %f, want +Inf", got)
	}
}

func TestBoolAlgebra(t *testing.T) {
	def := testDef(2, 1)
	a := NewBool(def)
	b := NewBool(def)
	a.Set(0, 0, true)
	b.Set(0, 0, true)
	b.Set(1, 0, true)

	if !a.And(b).At(0, 0) || a.And(b).At(1, 0) {
		t.Errorf("And wrong")
	}
	if !a.Or(b).At(1, 0) {
		t.Errorf("Or wrong")
	}
	if a.Not().At(0, 0) || !a.Not().At(1, 0) {
		t.Errorf("Not wrong")
	}
}

func TestMaskNullsOutsideCells(t *testing.T) {
	def := testDef(2, 1)
	g := NewGrid(def, 7)
	keep := NewBool(def)
	keep.Set(0, 0, true)

	out := g.Mask(keep)
	if out.At(0, 0) != 7 {
		t.Errorf("kept cell changed")
	}
	if !math.IsNaN(out.At(1, 0)) {
		t.Errorf("masked cell not NaN")
	}
	if math.IsNaN(g.At(1, 0)) {
		t.Errorf("input grid mutated")
	}
}

func TestResampleNearestIdentity(t *testing.T) {
	def := testDef(4, 4)
	g := NewGrid(def, 0)
	for i := range g.Data {
		g.Data[i] = float64(i)
	}

	out, err := g.ResampleTo(def, Nearest)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	for i := range g.Data {
		if out.Data[i] != g.Data[i] {
			t.Fatalf("identity resample changed cell %d: %f != %f", i, out.Data[i], g.Data[i])
		}
	}
}

func TestResampleToCoarser(t *testing.T) {
	src := testDef(4, 4)
	g := NewGrid(src, 0)
	for i := range g.Data {
		g.Data[i] = float64(i)
	}

	dst := src
	dst.CellSize = 120
	dst.Width = 2
	dst.Height = 2

	out, err := g.ResampleTo(dst, Bilinear)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	// target cell (0,0) center sits between source cells (0,0),(1,0),(0,1),(1,1)
	want := (0.0 + 1 + 4 + 5) / 4
	if math.Abs(out.At(0, 0)-want) > 1e-9 {
		t.Errorf("bilinear cell (0,0) = %f, want %f", out.At(0, 0), want)
	}
}

func TestResampleRejectsProjectionMismatch(t *testing.T) {
	g := NewGrid(testDef(2, 2), 0)
	other := testDef(2, 2)
	other.Proj = "EPSG:32613"
	if _, err := g.ResampleTo(other, Nearest); err == nil {
		t.Fatalf("expected projection mismatch error")
	}
}

func TestOpsPanicOnMisalignedLayouts(t *testing.T) {
	a := NewGrid(testDef(2, 2), 0)

	shifted := testDef(2, 2)
	shifted.OriginX += 60
	b := NewGrid(shifted, 0)

	// same dimensions, different origin: the cells do not line up and the
	// guard must refuse the combination
	defer func() {
		if recover() == nil {
			t.Fatalf("Add on grids with different origins did not panic")
		}
	}()
	a.Add(b)
}

func TestGridOpsAreOutOfPlace(t *testing.T) {
	def := testDef(2, 2)
	a := NewGrid(def, 1)
	b := NewGrid(def, 2)

	sum := a.Add(b)
	if sum.At(0, 0) != 3 {
		t.Errorf("add = %f, want 3", sum.At(0, 0))
	}
	if a.At(0, 0) != 1 || b.At(0, 0) != 2 {
		t.Errorf("inputs mutated by Add")
	}

	if got := a.Scale(4).AddScalar(1).At(1, 1); got != 5 {
		t.Errorf("scale+add = %f, want 5", got)
	}
}
