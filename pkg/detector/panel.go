// Package detector implements the geometric model of an area detector: a
// list of flat rectangular panels positioned in the lab frame. Each panel
// carries the coordinate frame that maps pixel coordinates to lab-space
// positions, together with the pixel bookkeeping (trusted range, gain,
// masked regions) the image-collection layer consumes.
package detector

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"xrdkit/internal/assert"
	"xrdkit/pkg/tiled"
)

// axisTol is the angular tolerance, in radians, for panel equality.
const axisTol = 1e-6

// angleBetween returns the opening angle between two vectors in radians.
func angleBetween(a, b r3.Vec) float64 {
	return math.Acos(math.Max(-1, math.Min(1, r3.Cos(a, b))))
}

// Region is a rectangular pixel-space exclusion zone on a panel, spanning
// [F0,F1) along the fast axis and [S0,S1) along the slow axis.
type Region struct {
	F0, F1, S0, S1 int
}

// Panel describes one flat rectangular detector module. Its position and
// orientation live in the frame matrix d, whose columns are the unit fast
// axis, the unit slow axis and the origin (in mm from the sample). The
// inverse D is cached so that ray intersections are a single multiply.
//
// Panels are plain values and copy freely; use Clone when an independent
// masked-region list is needed.
type Panel struct {
	typ          string
	d            [9]float64 // row-major; columns are fast, slow, origin
	dInv         [9]float64 // cached inverse of d
	pixelSize    r2.Vec     // mm along fast, slow
	imageSize    [2]int     // pixels along fast, slow
	trustedRange [2]float64 // half-open [lo, hi)
	gain         float64
	masked       []Region
}

// NewPanel returns a fully positioned panel.
//
// Parameters:
//   - typ: the sensor type tag, e.g. "SENSOR_PAD"; empty becomes "Unknown"
//   - fast, slow: the detector axes in the lab frame; normalized here
//   - origin: the outer corner of pixel (0,0), in mm from the sample
//   - pixelSize: pixel extents in mm along fast and slow; must be positive
//   - imageSize: panel extents in pixels along fast and slow; must be positive
//   - trustedRange: half-open [lo, hi) interval of reliable pixel values
//
// The frame must be invertible. The panel gain starts at 1.
func NewPanel(typ string, fast, slow, origin r3.Vec, pixelSize r2.Vec,
	imageSize [2]int, trustedRange [2]float64) Panel {

	assert.That(pixelSize.X > 0 && pixelSize.Y > 0,
		"panel pixel size must be positive, got (%g,%g)", pixelSize.X, pixelSize.Y)
	assert.That(imageSize[0] > 0 && imageSize[1] > 0,
		"panel image size must be positive, got (%d,%d)", imageSize[0], imageSize[1])

	if typ == "" {
		typ = "Unknown"
	}
	p := Panel{
		typ:          typ,
		pixelSize:    pixelSize,
		imageSize:    imageSize,
		trustedRange: trustedRange,
		gain:         1,
	}
	p.SetFrame(fast, slow, origin)
	return p
}

// SetFrame rebuilds the coordinate frame from the given axes and origin.
// The axes are normalized and must be non-zero; the resulting matrix must
// be invertible, so the axes may not be parallel. The cached inverse is
// recomputed immediately.
func (p *Panel) SetFrame(fast, slow, origin r3.Vec) {
	assert.That(r3.Norm(fast) > 0 && r3.Norm(slow) > 0,
		"panel axes must be non-zero vectors")
	f, s := r3.Unit(fast), r3.Unit(slow)
	p.d = [9]float64{
		f.X, s.X, origin.X,
		f.Y, s.Y, origin.Y,
		f.Z, s.Z, origin.Z,
	}

	d := mat.NewDense(3, 3, p.d[:])
	assert.That(mat.Det(d) != 0,
		"panel frame is singular: fast %v slow %v origin %v", fast, slow, origin)
	var inv mat.Dense
	if err := inv.Inverse(d); err != nil {
		// An ill-conditioned frame still yields a usable inverse; only a
		// hard failure breaks the contract.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			assert.Failf("panel frame cannot be inverted: %v", err)
		}
	}
	copy(p.dInv[:], inv.RawMatrix().Data)
}

// Type returns the sensor type tag.
func (p *Panel) Type() string { return p.typ }

// SetType replaces the sensor type tag.
func (p *Panel) SetType(typ string) { p.typ = typ }

// FastAxis returns the unit vector along the fast pixel direction.
func (p *Panel) FastAxis() r3.Vec { return r3.Vec{X: p.d[0], Y: p.d[3], Z: p.d[6]} }

// SlowAxis returns the unit vector along the slow pixel direction.
func (p *Panel) SlowAxis() r3.Vec { return r3.Vec{X: p.d[1], Y: p.d[4], Z: p.d[7]} }

// Origin returns the lab position of the outer corner of pixel (0,0) in mm.
func (p *Panel) Origin() r3.Vec { return r3.Vec{X: p.d[2], Y: p.d[5], Z: p.d[8]} }

// Normal returns the plane normal, fast cross slow. For the usual
// orthogonal axes this is a unit vector.
func (p *Panel) Normal() r3.Vec { return r3.Cross(p.FastAxis(), p.SlowAxis()) }

// PixelSize returns the pixel extents in mm along fast and slow.
func (p *Panel) PixelSize() r2.Vec { return p.pixelSize }

// SetPixelSize replaces the pixel extents.
func (p *Panel) SetPixelSize(size r2.Vec) { p.pixelSize = size }

// ImageSize returns the panel extents in pixels along fast and slow.
func (p *Panel) ImageSize() [2]int { return p.imageSize }

// SetImageSize replaces the panel extents.
func (p *Panel) SetImageSize(size [2]int) { p.imageSize = size }

// TrustedRange returns the half-open [lo, hi) interval of reliable values.
func (p *Panel) TrustedRange() [2]float64 { return p.trustedRange }

// SetTrustedRange replaces the trusted value interval.
func (p *Panel) SetTrustedRange(trusted [2]float64) { p.trustedRange = trusted }

// Gain returns the scalar gain applied to this panel's pixels.
func (p *Panel) Gain() float64 { return p.gain }

// SetGain replaces the scalar gain. A non-positive gain is representable
// and disables gain-map synthesis in the collection layer.
func (p *Panel) SetGain(gain float64) { p.gain = gain }

// Mask returns the masked regions on this panel.
func (p *Panel) Mask() []Region { return p.masked }

// SetMask replaces the masked-region list.
func (p *Panel) SetMask(regions []Region) { p.masked = regions }

// AddMask appends a masked region given as fast and slow bounds.
func (p *Panel) AddMask(f0, s0, f1, s1 int) {
	p.masked = append(p.masked, Region{F0: f0, F1: f1, S0: s0, S1: s1})
}

// DMatrix returns the row-major frame matrix d.
func (p *Panel) DMatrix() [9]float64 { return p.d }

// InverseDMatrix returns the row-major cached inverse D.
func (p *Panel) InverseDMatrix() [9]float64 { return p.dInv }

// Distance returns the origin projected onto the plane normal: the
// sample-to-plane distance in mm.
func (p *Panel) Distance() float64 {
	return r3.Dot(p.Origin(), p.Normal())
}

// PixelToMillimeter scales a pixel-space coordinate into mm on the panel.
func (p *Panel) PixelToMillimeter(xy r2.Vec) r2.Vec {
	return r2.Vec{X: xy.X * p.pixelSize.X, Y: xy.Y * p.pixelSize.Y}
}

// MillimeterToPixel scales a mm coordinate on the panel into pixel space.
func (p *Panel) MillimeterToPixel(xy r2.Vec) r2.Vec {
	return r2.Vec{X: xy.X / p.pixelSize.X, Y: xy.Y / p.pixelSize.Y}
}

// ImageSizeMM returns the panel extents in mm.
func (p *Panel) ImageSizeMM() r2.Vec {
	return p.PixelToMillimeter(r2.Vec{X: float64(p.imageSize[0]), Y: float64(p.imageSize[1])})
}

// LabCoord maps a mm coordinate on the panel into the lab frame: d * (x,y,1).
func (p *Panel) LabCoord(xy r2.Vec) r3.Vec {
	return r3.Vec{
		X: p.d[0]*xy.X + p.d[1]*xy.Y + p.d[2],
		Y: p.d[3]*xy.X + p.d[4]*xy.Y + p.d[5],
		Z: p.d[6]*xy.X + p.d[7]*xy.Y + p.d[8],
	}
}

// PixelLabCoord maps a pixel-space coordinate into the lab frame.
func (p *Panel) PixelLabCoord(xy r2.Vec) r3.Vec {
	return p.LabCoord(p.PixelToMillimeter(xy))
}

// RayIntersection returns the mm coordinate at which the scattered ray s1
// meets the panel plane. The ray must approach the plane from the front:
// the transformed direction must have a positive normal component.
func (p *Panel) RayIntersection(s1 r3.Vec) r2.Vec {
	v := p.applyInverse(s1)
	assert.That(v.Z > 0, "ray %v does not intersect the panel from the front", s1)
	return r2.Vec{X: v.X / v.Z, Y: v.Y / v.Z}
}

// BeamCentre returns the mm coordinate at which the incident beam vector
// s0 meets the panel plane.
func (p *Panel) BeamCentre(s0 r3.Vec) r2.Vec {
	return p.RayIntersection(s0)
}

// BeamCentreLab returns the lab-frame point at which the incident beam
// vector s0 meets the panel plane. The beam must point toward the panel:
// s0 dotted with the plane normal must be positive.
func (p *Panel) BeamCentreLab(s0 r3.Vec) r3.Vec {
	d := r3.Dot(s0, p.Normal())
	assert.That(d > 0, "beam %v does not point toward the panel", s0)
	return r3.Scale(p.Distance()/d, s0)
}

// applyInverse multiplies the cached inverse frame matrix with u.
func (p *Panel) applyInverse(u r3.Vec) r3.Vec {
	return r3.Vec{
		X: p.dInv[0]*u.X + p.dInv[1]*u.Y + p.dInv[2]*u.Z,
		Y: p.dInv[3]*u.X + p.dInv[4]*u.Y + p.dInv[5]*u.Z,
		Z: p.dInv[6]*u.X + p.dInv[7]*u.Y + p.dInv[8]*u.Z,
	}
}

// ResolutionAtPixel returns the d-spacing, in Angstroms, diffracting onto
// the given pixel: lambda / (2 sin theta), with 2 theta the angle between
// the beam centre and the pixel as seen from the sample. The pixel may not
// coincide with the beam centre.
func (p *Panel) ResolutionAtPixel(s0 r3.Vec, wavelength float64, xy r2.Vec) float64 {
	beamCentre := p.BeamCentreLab(s0)
	sinTheta := math.Sin(0.5 * angleBetween(beamCentre, p.PixelLabCoord(xy)))
	assert.That(sinTheta != 0, "resolution is undefined at the beam centre")
	return wavelength / (2 * sinTheta)
}

// MaxResolutionAtCorners returns the smallest d-spacing recorded anywhere
// on the panel, probed at the four pixel-space corners.
func (p *Panel) MaxResolutionAtCorners(s0 r3.Vec, wavelength float64) float64 {
	fast, slow := float64(p.imageSize[0]), float64(p.imageSize[1])
	beamCentre := p.BeamCentreLab(s0)

	theta := angleBetween(beamCentre, p.Origin())
	theta = math.Max(theta, angleBetween(beamCentre, p.PixelLabCoord(r2.Vec{X: 0, Y: slow})))
	theta = math.Max(theta, angleBetween(beamCentre, p.PixelLabCoord(r2.Vec{X: fast, Y: 0})))
	theta = math.Max(theta, angleBetween(beamCentre, p.PixelLabCoord(r2.Vec{X: fast, Y: slow})))

	sinTheta := math.Sin(0.5 * theta)
	assert.That(sinTheta != 0, "resolution is undefined at the beam centre")
	return wavelength / (2 * sinTheta)
}

// MaxResolutionEllipse returns the smallest d-spacing for which a full
// diffraction ring fits on the panel, probed where a crosshair through the
// beam centre meets the panel edges.
func (p *Panel) MaxResolutionEllipse(s0 r3.Vec, wavelength float64) float64 {
	fast, slow := float64(p.imageSize[0]), float64(p.imageSize[1])
	c := p.MillimeterToPixel(p.BeamCentre(s0))
	beamCentre := p.BeamCentreLab(s0)

	theta := angleBetween(beamCentre, p.PixelLabCoord(r2.Vec{X: 0, Y: c.Y}))
	theta = math.Min(theta, angleBetween(beamCentre, p.PixelLabCoord(r2.Vec{X: c.X, Y: 0})))
	theta = math.Min(theta, angleBetween(beamCentre, p.PixelLabCoord(r2.Vec{X: fast, Y: c.Y})))
	theta = math.Min(theta, angleBetween(beamCentre, p.PixelLabCoord(r2.Vec{X: c.X, Y: slow})))

	return wavelength / (2 * math.Sin(0.5*theta))
}

// IsValueInTrustedRange reports whether a pixel value lies in [lo, hi).
func (p *Panel) IsValueInTrustedRange(value float64) bool {
	return p.trustedRange[0] <= value && value < p.trustedRange[1]
}

// IsCoordValid reports whether a pixel-space coordinate lies on the panel.
func (p *Panel) IsCoordValid(xy r2.Vec) bool {
	return 0 <= xy.X && xy.X < float64(p.imageSize[0]) &&
		0 <= xy.Y && xy.Y < float64(p.imageSize[1])
}

// IsCoordValidMM reports whether a mm coordinate lies on the panel.
func (p *Panel) IsCoordValidMM(xy r2.Vec) bool {
	size := p.ImageSizeMM()
	return 0 <= xy.X && xy.X < size.X && 0 <= xy.Y && xy.Y < size.Y
}

// TrustedRangeMask returns a boolean tile of the same shape as data, true
// where the sample lies in the trusted range.
func (p *Panel) TrustedRangeMask(data tiled.Tile[float64]) tiled.Tile[bool] {
	mask := tiled.NewTile[bool](data.Width(), data.Height())
	src, dst := data.Data(), mask.Data()
	for i, v := range src {
		dst[i] = p.IsValueInTrustedRange(v)
	}
	return mask
}

// Clone returns an independent copy of the panel, including its
// masked-region list.
func (p *Panel) Clone() Panel {
	c := *p
	c.masked = append([]Region(nil), p.masked...)
	return c
}

// Equal reports whether two panels describe the same geometry: the fast
// axes, slow axes and origins agree within 1e-6 radians and the image
// sizes match. Pixel size, trusted range, gain, mask and type are
// deliberately not compared.
func (p *Panel) Equal(other *Panel) bool {
	return angleBetween(p.FastAxis(), other.FastAxis()) <= axisTol &&
		angleBetween(p.SlowAxis(), other.SlowAxis()) <= axisTol &&
		angleBetween(p.Origin(), other.Origin()) <= axisTol &&
		p.imageSize == other.imageSize
}

// String returns a printable description of the panel.
func (p *Panel) String() string {
	f, s, o, n := p.FastAxis(), p.SlowAxis(), p.Origin(), p.Normal()
	return fmt.Sprintf("Panel:\n"+
		"    type:          %s\n"+
		"    fast axis:     (%g, %g, %g)\n"+
		"    slow axis:     (%g, %g, %g)\n"+
		"    origin:        (%g, %g, %g)\n"+
		"    normal:        (%g, %g, %g)\n"+
		"    pixel size:    (%g, %g)\n"+
		"    image size:    (%d, %d)\n"+
		"    trusted range: (%g, %g)\n",
		p.typ, f.X, f.Y, f.Z, s.X, s.Y, s.Z, o.X, o.Y, o.Z, n.X, n.Y, n.Z,
		p.pixelSize.X, p.pixelSize.Y, p.imageSize[0], p.imageSize[1],
		p.trustedRange[0], p.trustedRange[1])
}
