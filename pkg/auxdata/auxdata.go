// Package auxdata loads the fixed auxiliary rasters the pipeline consumes
// read-only: the prioritized elevation sources and the maximum historical
// water-extent layer. Datasets are NetCDF files with 1D x/y coordinate
// variables and a 2D data variable, already in the working projection.
//
// An unreachable or malformed dataset is a hard error. Skipping one would
// silently disable shadow projection or water exclusion, so there is no
// fallback.
package auxdata

import (
	"errors"
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/project-spencer/msscvm/pkg/raster"
)

// ErrUnavailable marks an auxiliary dataset that could not be opened or read.
var ErrUnavailable = errors.New("auxdata: auxiliary dataset unavailable")

// Variable names expected inside the dataset files.
const (
	elevationVar = "elevation"
	waterVar     = "water"
)

// Config names the dataset files. DEM entries are in priority order: the
// first source with a value at a cell wins when the terrain provider
// mosaics them (higher-resolution override first, global fill last).
type Config struct {
	DEM   []string `yaml:"dem"`
	Water string   `yaml:"water"`
}

// Store holds the loaded auxiliary rasters for the lifetime of a run.
type Store struct {
	dems  []*raster.Grid
	water *raster.Grid
}

// NewStore builds a store from already-loaded grids. Callers normally go
// through Open; NewStore exists for embedders that source the rasters some
// other way.
func NewStore(dems []*raster.Grid, water *raster.Grid) *Store {
	return &Store{dems: dems, water: water}
}

// Open loads every configured dataset up front so that a missing file fails
// the run before any scene work starts.
func Open(cfg Config) (*Store, error) {
	if len(cfg.DEM) == 0 {
		return nil, fmt.Errorf("%w: no elevation sources configured", ErrUnavailable)
	}
	if cfg.Water == "" {
		return nil, fmt.Errorf("%w: no water extent configured", ErrUnavailable)
	}

	st := &Store{}
	for _, fp := range cfg.DEM {
		g, err := ReadGrid(fp, elevationVar)
		if err != nil {
			return nil, err
		}
		st.dems = append(st.dems, g)
	}
	w, err := ReadGrid(cfg.Water, waterVar)
	if err != nil {
		return nil, err
	}
	st.water = w
	return st, nil
}

// Elevation returns the elevation sources in priority order.
func (s *Store) Elevation() []*raster.Grid { return s.dems }

// WaterExtent returns the maximum historical water-extent raster. Cells are
// nonzero where water has ever been observed.
func (s *Store) WaterExtent() *raster.Grid { return s.water }

// ReadGrid reads one 2D variable plus its x/y coordinates from a NetCDF file
// into a grid.
func ReadGrid(fp, varName string) (*raster.Grid, error) {
	nc, err := netcdf.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, fp, err)
	}
	defer nc.Close()

	xs, err := readCoord(nc, "x")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, fp, err)
	}
	ys, err := readCoord(nc, "y")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, fp, err)
	}
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("%w: %s: degenerate coordinate axes", ErrUnavailable, fp)
	}

	vr, err := nc.GetVariable(varName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: no variable %q: %v", ErrUnavailable, fp, varName, err)
	}

	rows, err := toRows(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: variable %q: %v", ErrUnavailable, fp, varName, err)
	}
	if len(rows) != len(ys) || len(rows[0]) != len(xs) {
		return nil, fmt.Errorf("%w: %s: variable %q does not match coordinate axes", ErrUnavailable, fp, varName)
	}

	proj, err := projAttribute(vr, nc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, fp, err)
	}

	cell := math.Abs(xs[1] - xs[0])
	northFirst := ys[0] > ys[1]
	top := ys[0]
	if !northFirst {
		top = ys[len(ys)-1]
	}

	def := raster.GridDef{
		Proj:     proj,
		OriginX:  xs[0] - cell/2,
		OriginY:  top + cell/2,
		CellSize: cell,
		Width:    len(xs),
		Height:   len(ys),
	}

	g := raster.NewGrid(def, 0)
	for r := range rows {
		outRow := r
		if !northFirst {
			outRow = len(ys) - 1 - r
		}
		copy(g.Data[outRow*def.Width:(outRow+1)*def.Width], rows[r])
	}
	return g, nil
}

func projAttribute(vr *api.Variable, nc api.Group) (string, error) {
	if v, has := vr.Attributes.Get("proj"); has {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	if v, has := nc.Attributes().Get("proj"); has {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("no proj attribute")
}

func readCoord(nc api.Group, name string) ([]float64, error) {
	vr, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("no coordinate %q: %v", name, err)
	}
	switch vs := vr.Values.(type) {
	case []float64:
		return vs, nil
	case []float32:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("coordinate %q has unsupported type %T", name, vr.Values)
	}
}

func toRows(values interface{}) ([][]float64, error) {
	switch vs := values.(type) {
	case [][]float64:
		return vs, nil
	case [][]float32:
		out := make([][]float64, len(vs))
		for r, row := range vs {
			out[r] = make([]float64, len(row))
			for c, v := range row {
				out[r][c] = float64(v)
			}
		}
		return out, nil
	case [][]int32:
		out := make([][]float64, len(vs))
		for r, row := range vs {
			out[r] = make([]float64, len(row))
			for c, v := range row {
				out[r][c] = float64(v)
			}
		}
		return out, nil
	case [][]int16:
		out := make([][]float64, len(vs))
		for r, row := range vs {
			out[r] = make([]float64, len(row))
			for c, v := range row {
				out[r][c] = float64(v)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", values)
	}
}
