package instrument

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// TestGoniometerDefaults verifies axis normalization and the identity
// fixed rotation.
func TestGoniometerDefaults(t *testing.T) {
	g := NewGoniometer(r3.Vec{X: 3})

	if axis := g.RotationAxis(); axis != (r3.Vec{X: 1}) {
		t.Errorf("Expected normalized axis (1,0,0), got %v", axis)
	}
	if g.FixedRotation() != identity {
		t.Errorf("Expected identity fixed rotation, got %v", g.FixedRotation())
	}

	mustViolate(t, "zero axis", func() { NewGoniometer(r3.Vec{}) })
}

// TestGoniometerEquality verifies tolerant comparison over axis and fixed
// rotation.
func TestGoniometerEquality(t *testing.T) {
	g := NewGoniometer(r3.Vec{X: 1})

	same := NewGoniometer(r3.Vec{X: 2})
	if !g.Equal(same) {
		t.Error("Expected goniometers with the same axis to be equal")
	}

	tilted := NewGoniometer(r3.Vec{X: 1, Y: 1e-3})
	if g.Equal(tilted) {
		t.Error("Expected a tilted axis to break equality")
	}

	rotated := NewGoniometer(r3.Vec{X: 1})
	rotated.SetFixedRotation([9]float64{0, -1, 0, 1, 0, 0, 0, 0, 1})
	if g.Equal(rotated) {
		t.Error("Expected a different fixed rotation to break equality")
	}
}
