// Package msscvm composes the cloud, shadow and water layers into the final
// per-cell classification and exposes the per-image operations: radiometric
// conversion, attaching the classification band, and destructive masking.
//
// The whole pipeline is pure: the same scene and auxiliary data always
// produce the same classification, and nothing is cached between calls.
package msscvm

import (
	"github.com/project-spencer/msscvm/pkg/auxdata"
	"github.com/project-spencer/msscvm/pkg/clouds"
	"github.com/project-spencer/msscvm/pkg/radiometry"
	"github.com/project-spencer/msscvm/pkg/raster"
	"github.com/project-spencer/msscvm/pkg/scene"
	"github.com/project-spencer/msscvm/pkg/shadows"
	"github.com/project-spencer/msscvm/pkg/terrain"
	"github.com/project-spencer/msscvm/pkg/topo"
)

// Per-cell classification codes.
const (
	Clear  = 0
	Cloud  = 1
	Shadow = 2
)

// MaskBand is the name of the categorical band AddMask attaches.
const MaskBand scene.Band = "msscvm"

// ToRadiance converts a DN scene to at-sensor radiance.
func ToRadiance(s *scene.Scene) (*scene.Scene, error) {
	return radiometry.ToRadiance(s)
}

// ToReflectance converts a DN scene to top-of-atmosphere reflectance.
func ToReflectance(s *scene.Scene) (*scene.Scene, error) {
	return radiometry.ToReflectance(s)
}

// Pipeline binds the classifier to its auxiliary rasters. It holds no
// per-scene state; one Pipeline serves any number of scenes concurrently.
type Pipeline struct {
	Aux *auxdata.Store
}

// New returns a pipeline over the given auxiliary store.
func New(aux *auxdata.Store) *Pipeline {
	return &Pipeline{Aux: aux}
}

// Classify runs the full detection on a reflectance scene and returns the
// classification grid: clear=0, cloud=1, shadow=2. Cloud takes precedence
// wherever both cloud and shadow conditions hold. AddMask and ApplyMask are
// thin projections of this one result, so callers needing both pay the
// pipeline cost once.
func (p *Pipeline) Classify(s *scene.Scene) (*raster.Grid, error) {
	green, err := s.SpectralBand(scene.Green)
	if err != nil {
		return nil, err
	}
	red, err := s.SpectralBand(scene.Red)
	if err != nil {
		return nil, err
	}
	nir, err := s.SpectralBand(scene.NIR)
	if err != nil {
		return nil, err
	}
	sunAz, sunElev, err := s.Meta.SunGeometry()
	if err != nil {
		return nil, err
	}

	cloud := clouds.Mask(green, red)

	tm, err := terrain.New(p.Aux.Elevation(), s.Def)
	if err != nil {
		return nil, err
	}
	illum := topo.Illumination(tm.Slope, tm.Aspect, sunAz, sunElev)
	corrected := topo.CorrectNIR(nir, tm.Slope, illum, sunElev)

	extent, err := p.Aux.WaterExtent().ResampleTo(s.Def, raster.Nearest)
	if err != nil {
		return nil, err
	}
	water := clouds.Water(nir, red, extent.Gt(0))

	shadow := shadows.Mask(corrected, cloud, water, sunAz)

	class := raster.NewGrid(s.Def, Clear)
	for i := range class.Data {
		switch {
		case cloud.Data[i]:
			class.Data[i] = Cloud
		case shadow.Data[i]:
			class.Data[i] = Shadow
		}
	}
	return class, nil
}

// AddMask derives a new scene with the classification attached as an extra
// categorical band. All existing bands and metadata are untouched.
func (p *Pipeline) AddMask(s *scene.Scene) (*scene.Scene, error) {
	class, err := p.Classify(s)
	if err != nil {
		return nil, err
	}
	return s.WithBand(MaskBand, class), nil
}

// ApplyMask derives a new scene with every cloud or shadow cell nulled out
// of the spectral bands. The quality band is carried forward unmasked.
func (p *Pipeline) ApplyMask(s *scene.Scene) (*scene.Scene, error) {
	class, err := p.Classify(s)
	if err != nil {
		return nil, err
	}

	keep := raster.NewBool(s.Def)
	for i, v := range class.Data {
		keep.Data[i] = v == Clear
	}

	bands := make(map[scene.Band]*raster.Grid, len(s.Bands))
	for name, g := range s.Bands {
		if name == scene.QA {
			bands[name] = g
			continue
		}
		bands[name] = g.Mask(keep)
	}
	return s.WithBands(bands), nil
}
