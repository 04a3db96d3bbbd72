package instrument

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"xrdkit/internal/assert"
)

// mustViolate asserts that fn breaks a contract.
func mustViolate(t *testing.T, msg string, fn func()) {
	t.Helper()
	if err := assert.Maybe(fn); err == nil {
		t.Errorf("%s: expected a contract violation", msg)
	}
}

// TestBeamS0 verifies normalization and the incident wavevector convention:
// the direction points sample to source, s0 runs the other way with
// magnitude 1/wavelength.
func TestBeamS0(t *testing.T) {
	b := NewBeam(r3.Vec{Z: -2}, 0.5)

	if d := b.Direction(); d != (r3.Vec{Z: -1}) {
		t.Errorf("Expected normalized direction (0,0,-1), got %v", d)
	}
	s0 := b.S0()
	if s0.X != 0 || s0.Y != 0 || math.Abs(s0.Z-2) > 1e-12 {
		t.Errorf("Expected s0 (0,0,2), got %v", s0)
	}
}

// TestBeamEquality verifies the direction-angle and wavelength tolerances.
func TestBeamEquality(t *testing.T) {
	b := NewBeam(r3.Vec{Z: -1}, 1.0)

	cases := []struct {
		name  string
		other *Beam
		want  bool
	}{
		{"identical", NewBeam(r3.Vec{Z: -1}, 1.0), true},
		{"direction within tolerance", NewBeam(r3.Vec{X: 5e-7, Z: -1}, 1.0), true},
		{"direction beyond tolerance", NewBeam(r3.Vec{X: 1e-3, Z: -1}, 1.0), false},
		{"wavelength differs", NewBeam(r3.Vec{Z: -1}, 1.5), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Equal(tc.other); got != tc.want {
				t.Errorf("Expected Equal=%v, got %v", tc.want, got)
			}
		})
	}
}

// TestBeamContracts verifies the constructor preconditions.
func TestBeamContracts(t *testing.T) {
	mustViolate(t, "zero direction", func() { NewBeam(r3.Vec{}, 1.0) })
	mustViolate(t, "zero wavelength", func() { NewBeam(r3.Vec{Z: -1}, 0) })
	mustViolate(t, "negative wavelength", func() { NewBeam(r3.Vec{Z: -1}, -1) })
}

// TestBeamClone verifies that clones are independent values.
func TestBeamClone(t *testing.T) {
	b := NewBeam(r3.Vec{Z: -1}, 1.0)
	c := b.Clone()
	if c == b {
		t.Fatal("Expected a distinct beam instance")
	}
	if !c.Equal(b) {
		t.Error("Expected the clone to equal its source")
	}
}
