package terrain

import (
	"math"
	"testing"

	"github.com/project-spencer/msscvm/pkg/raster"
)

func flatDef(w, h int, cell float64) raster.GridDef {
	return raster.GridDef{Proj: "EPSG:32612", OriginX: 0, OriginY: float64(h) * cell, CellSize: cell, Width: w, Height: h}
}

func TestMosaicIsPrioritizedNotAveraged(t *testing.T) {
	def := flatDef(4, 4, 60)

	primary := raster.NewGrid(def, math.NaN())
	primary.Set(0, 0, 100)
	primary.Set(1, 0, 120)

	fill := raster.NewGrid(def, 500)

	m, err := New([]*raster.Grid{primary, fill}, def)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := m.Elevation.At(0, 0); got != 100 {
		t.Errorf("primary value overridden: %f", got)
	}
	if got := m.Elevation.At(3, 3); got != 500 {
		t.Errorf("gap not filled from secondary: %f", got)
	}
}

func TestDerivativesOnFlatTerrain(t *testing.T) {
	def := flatDef(5, 5, 60)
	dem := raster.NewGrid(def, 1200)

	slope, _ := Derivatives(dem)
	for i, v := range slope.Data {
		if v != 0 {
			t.Fatalf("flat terrain has slope %f at cell %d", v, i)
		}
	}
}

func TestDerivativesOnEastRamp(t *testing.T) {
	def := flatDef(7, 7, 60)
	dem := raster.NewGrid(def, 0)
	// elevation rises 30 m per cell toward the east
	for row := 0; row < 7; row++ {
		for col := 0; col < 7; col++ {
			dem.Set(col, row, float64(col)*30)
		}
	}

	slope, aspect := Derivatives(dem)

	wantSlope := math.Atan(30.0/60.0) * 180 / math.Pi
	if got := slope.At(3, 3); math.Abs(got-wantSlope) > 1e-9 {
		t.Errorf("interior slope = %f, want %f", got, wantSlope)
	}

	// downslope faces west
	if got := aspect.At(3, 3); math.Abs(got-270) > 1e-9 {
		t.Errorf("interior aspect = %f, want 270", got)
	}
}

func TestDerivativesOnSouthRamp(t *testing.T) {
	def := flatDef(7, 7, 60)
	dem := raster.NewGrid(def, 0)
	// elevation rises toward the north (row 0), so downslope faces south
	for row := 0; row < 7; row++ {
		for col := 0; col < 7; col++ {
			dem.Set(col, row, float64(6-row)*30)
		}
	}

	_, aspect := Derivatives(dem)
	if got := aspect.At(3, 3); math.Abs(got-180) > 1e-9 {
		t.Errorf("interior aspect = %f, want 180", got)
	}
}

func TestNewRequiresSources(t *testing.T) {
	if _, err := New(nil, flatDef(2, 2, 60)); err == nil {
		t.Fatalf("expected error for empty source list")
	}
}
