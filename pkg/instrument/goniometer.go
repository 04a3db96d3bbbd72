package instrument

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"xrdkit/internal/assert"
)

// identity is the default fixed-rotation matrix, row-major.
var identity = [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Goniometer models the rotation hardware: a unit rotation axis in the lab
// frame and a fixed rotation applied before the scan rotation.
type Goniometer struct {
	rotationAxis  r3.Vec
	fixedRotation [9]float64
}

// NewGoniometer returns a goniometer rotating about the given axis. The
// axis is normalized and must be non-zero; the fixed rotation starts as
// the identity.
func NewGoniometer(axis r3.Vec) *Goniometer {
	assert.That(r3.Norm(axis) > 0, "goniometer rotation axis must be a non-zero vector")
	return &Goniometer{rotationAxis: r3.Unit(axis), fixedRotation: identity}
}

// RotationAxis returns the unit rotation axis.
func (g *Goniometer) RotationAxis() r3.Vec { return g.rotationAxis }

// FixedRotation returns the row-major fixed-rotation matrix.
func (g *Goniometer) FixedRotation() [9]float64 { return g.fixedRotation }

// SetFixedRotation replaces the fixed-rotation matrix.
func (g *Goniometer) SetFixedRotation(m [9]float64) { g.fixedRotation = m }

// Clone returns an independent copy of the goniometer.
func (g *Goniometer) Clone() *Goniometer {
	c := *g
	return &c
}

// Equal reports whether two goniometers agree within a 1e-6 tolerance on
// the axis angle and the fixed-rotation elements.
func (g *Goniometer) Equal(other *Goniometer) bool {
	if g == nil || other == nil {
		return g == other
	}
	if angleBetween(g.rotationAxis, other.rotationAxis) > modelTol {
		return false
	}
	for i := range g.fixedRotation {
		if math.Abs(g.fixedRotation[i]-other.fixedRotation[i]) > modelTol {
			return false
		}
	}
	return true
}

// String returns a printable description of the goniometer.
func (g *Goniometer) String() string {
	return fmt.Sprintf("Goniometer:\n    rotation axis: (%g, %g, %g)\n    fixed rotation: %v\n",
		g.rotationAxis.X, g.rotationAxis.Y, g.rotationAxis.Z, g.fixedRotation)
}
