// Package scene holds the image data model: the four spectral bands plus the
// quality band on a shared grid, and the scalar acquisition metadata the
// pipeline reads (sun geometry, calibration coefficients, path/row).
package scene

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/project-spencer/msscvm/pkg/raster"
)

type Band string

const (
	Green   Band = "green"
	Red     Band = "red"
	RedEdge Band = "red_edge"
	NIR     Band = "nir"
	QA      Band = "BQA"
)

// SpectralBands lists the four reflective bands in sensor band order. The
// order is load-bearing: calibration coefficients are aligned to it by index.
var SpectralBands = [4]Band{Green, Red, RedEdge, NIR}

var (
	ErrMissingMetadata = errors.New("scene: missing metadata property")
	ErrMissingBand     = errors.New("scene: missing band")
)

// Metadata carries the scalar properties attached to an acquisition.
// Numeric calibration and sun-geometry properties live in Properties and are
// read through Property so that an absent key fails fast instead of reading
// as zero.
type Metadata struct {
	Acquired   time.Time          `json:"acquired"`
	Path       int                `json:"path"`
	Row        int                `json:"row"`
	Properties map[string]float64 `json:"properties"`
}

// Well-known property names.
const (
	PropSunAzimuth   = "SUN_AZIMUTH"
	PropSunElevation = "SUN_ELEVATION"
)

// Property returns a scalar metadata property, or ErrMissingMetadata if the
// acquisition does not carry it.
func (m Metadata) Property(name string) (float64, error) {
	v, ok := m.Properties[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingMetadata, name)
	}
	return v, nil
}

// SunGeometry returns the sun azimuth and elevation in degrees.
func (m Metadata) SunGeometry() (azimuth, elevation float64, err error) {
	azimuth, err = m.Property(PropSunAzimuth)
	if err != nil {
		return 0, 0, err
	}
	elevation, err = m.Property(PropSunElevation)
	if err != nil {
		return 0, 0, err
	}
	return azimuth, elevation, nil
}

// Scene is one acquisition: named bands on a common grid plus metadata.
// Scenes are treated as immutable; derive new ones with WithBands.
type Scene struct {
	Def   raster.GridDef
	Bands map[Band]*raster.Grid
	Meta  Metadata
}

// Band returns the named band or ErrMissingBand.
func (s *Scene) Band(name Band) (*raster.Grid, error) {
	g, ok := s.Bands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingBand, name)
	}
	return g, nil
}

// SpectralBand returns one of the four reflective bands.
func (s *Scene) SpectralBand(name Band) (*raster.Grid, error) {
	return s.Band(name)
}

// BandNames returns the names of the bands present, spectral bands first in
// sensor order, then the quality band if present, then any extra bands in
// name order.
func (s *Scene) BandNames() []Band {
	var names []Band
	for _, b := range SpectralBands {
		if _, ok := s.Bands[b]; ok {
			names = append(names, b)
		}
	}
	if _, ok := s.Bands[QA]; ok {
		names = append(names, QA)
	}

	var extras []Band
	for b := range s.Bands {
		if b == QA {
			continue
		}
		spectral := false
		for _, sb := range SpectralBands {
			if b == sb {
				spectral = true
				break
			}
		}
		if !spectral {
			extras = append(extras, b)
		}
	}
	// map iteration order is random; the tail must be deterministic
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(names, extras...)
}

// WithBands derives a new scene with the given band set, metadata and grid
// carried forward unchanged.
func (s *Scene) WithBands(bands map[Band]*raster.Grid) *Scene {
	return &Scene{Def: s.Def, Bands: bands, Meta: s.Meta}
}

// WithBand derives a new scene with one extra band attached.
func (s *Scene) WithBand(name Band, g *raster.Grid) *Scene {
	bands := make(map[Band]*raster.Grid, len(s.Bands)+1)
	for b, v := range s.Bands {
		bands[b] = v
	}
	bands[name] = g
	return s.WithBands(bands)
}
