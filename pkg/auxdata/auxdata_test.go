package auxdata

import (
	"errors"
	"path"
	"testing"

	"github.com/project-spencer/msscvm/pkg/raster"
)

func TestOpenRequiresElevationSources(t *testing.T) {
	_, err := Open(Config{Water: "water.nc"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOpenRequiresWaterExtent(t *testing.T) {
	_, err := Open(Config{DEM: []string{"dem.nc"}})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOpenFailsHardOnUnreachableDataset(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		DEM:   []string{path.Join(dir, "nope.nc")},
		Water: path.Join(dir, "also-nope.nc"),
	}
	// a missing dataset must never be skipped: skipping would silently
	// disable shadow projection or water exclusion
	if _, err := Open(cfg); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewStoreExposesGridsInPriorityOrder(t *testing.T) {
	def := raster.GridDef{Proj: "EPSG:32612", OriginX: 0, OriginY: 120, CellSize: 60, Width: 2, Height: 2}
	a := raster.NewGrid(def, 1)
	b := raster.NewGrid(def, 2)
	w := raster.NewGrid(def, 0)

	st := NewStore([]*raster.Grid{a, b}, w)
	dems := st.Elevation()
	if len(dems) != 2 || dems[0] != a || dems[1] != b {
		t.Errorf("elevation sources reordered")
	}
	if st.WaterExtent() != w {
		t.Errorf("water extent not exposed")
	}
}
