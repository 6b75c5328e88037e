// Package radiometry converts raw digital numbers to at-sensor radiance or
// top-of-atmosphere reflectance using the per-band linear calibration
// carried in the scene metadata.
package radiometry

import (
	"fmt"
	"strings"

	"github.com/project-spencer/msscvm/pkg/raster"
	"github.com/project-spencer/msscvm/pkg/scene"
)

// Unit selects the target of the conversion.
type Unit string

const (
	Radiance    Unit = "radiance"
	Reflectance Unit = "reflectance"
)

// Calibration holds one gain and one bias per spectral band, indexed in
// sensor band order. Building it from metadata validates that all eight
// coefficients are present, so a band can never silently pick up another
// band's coefficients.
type Calibration struct {
	Gain [4]float64
	Bias [4]float64
}

// NewCalibration reads the calibration coefficients for the given unit from
// the acquisition metadata. Property names follow the product convention
// <UNIT>_MULT_BAND_<n> / <UNIT>_ADD_BAND_<n> with n in 1..4 matching
// scene.SpectralBands. A missing coefficient is a hard error.
func NewCalibration(meta scene.Metadata, u Unit) (Calibration, error) {
	var c Calibration
	prefix := strings.ToUpper(string(u))
	for i := range scene.SpectralBands {
		gain, err := meta.Property(fmt.Sprintf("%s_MULT_BAND_%d", prefix, i+1))
		if err != nil {
			return Calibration{}, err
		}
		bias, err := meta.Property(fmt.Sprintf("%s_ADD_BAND_%d", prefix, i+1))
		if err != nil {
			return Calibration{}, err
		}
		c.Gain[i] = gain
		c.Bias[i] = bias
	}
	return c, nil
}

// Convert derives a new scene with the four spectral bands converted from DN
// to the requested unit. The quality band and all metadata are carried
// forward unchanged.
func Convert(s *scene.Scene, u Unit) (*scene.Scene, error) {
	cal, err := NewCalibration(s.Meta, u)
	if err != nil {
		return nil, err
	}

	bands := make(map[scene.Band]*raster.Grid, len(s.Bands))
	for i, name := range scene.SpectralBands {
		dn, err := s.Band(name)
		if err != nil {
			return nil, err
		}
		bands[name] = dn.Scale(cal.Gain[i]).AddScalar(cal.Bias[i])
	}
	if qa, err := s.Band(scene.QA); err == nil {
		bands[scene.QA] = qa
	}

	return s.WithBands(bands), nil
}

// ToRadiance converts DN bands to at-sensor radiance.
func ToRadiance(s *scene.Scene) (*scene.Scene, error) {
	return Convert(s, Radiance)
}

// ToReflectance converts DN bands to top-of-atmosphere reflectance.
func ToReflectance(s *scene.Scene) (*scene.Scene, error) {
	return Convert(s, Reflectance)
}
