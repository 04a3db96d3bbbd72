package instrument

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"xrdkit/internal/assert"
)

// modelTol is the angular and scalar tolerance used by model equality.
const modelTol = 1e-6

// angleBetween returns the opening angle between two vectors in radians.
func angleBetween(a, b r3.Vec) float64 {
	return math.Acos(math.Max(-1, math.Min(1, r3.Cos(a, b))))
}

// Beam models the incident monochromatic X-ray beam. The stored direction
// is the unit vector from the sample toward the source, so the incident
// wavevector s0 runs opposite to it.
type Beam struct {
	direction  r3.Vec
	wavelength float64
}

// NewBeam returns a beam from the sample-to-source direction and the
// wavelength in Angstroms. The direction is normalized and must be
// non-zero; the wavelength must be positive.
func NewBeam(direction r3.Vec, wavelength float64) *Beam {
	assert.That(r3.Norm(direction) > 0, "beam direction must be a non-zero vector")
	assert.That(wavelength > 0, "beam wavelength must be positive, got %g", wavelength)
	return &Beam{direction: r3.Unit(direction), wavelength: wavelength}
}

// Direction returns the unit sample-to-source direction.
func (b *Beam) Direction() r3.Vec { return b.direction }

// Wavelength returns the wavelength in Angstroms.
func (b *Beam) Wavelength() float64 { return b.wavelength }

// S0 returns the incident beam vector with magnitude 1/wavelength, pointing
// along the direction of travel.
func (b *Beam) S0() r3.Vec {
	return r3.Scale(-1/b.wavelength, b.direction)
}

// Clone returns an independent copy of the beam.
func (b *Beam) Clone() *Beam {
	c := *b
	return &c
}

// Equal reports whether two beams agree within a 1e-6 tolerance on the
// direction angle and the wavelength.
func (b *Beam) Equal(other *Beam) bool {
	if b == nil || other == nil {
		return b == other
	}
	return angleBetween(b.direction, other.direction) <= modelTol &&
		math.Abs(b.wavelength-other.wavelength) <= modelTol
}

// String returns a printable description of the beam.
func (b *Beam) String() string {
	return fmt.Sprintf("Beam:\n    wavelength:    %g\n    direction:     (%g, %g, %g)\n",
		b.wavelength, b.direction.X, b.direction.Y, b.direction.Z)
}
