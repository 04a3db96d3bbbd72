package instrument

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"xrdkit/internal/assert"
)

// appendTol is the tolerance, in degrees, for the oscillation continuity
// checks when concatenating scans. It absorbs file-header rounding while
// still catching genuinely disjoint sweeps.
const appendTol = 0.01

// Scan models one rotation scan: a contiguous 1-based inclusive image
// range, an oscillation (start angle and per-image width, both in degrees)
// and per-image exposure times and epochs.
type Scan struct {
	imageRange    [2]int
	oscillation   [2]float64
	exposureTimes []float64
	epochs        []float64
}

// NewScan returns a scan over the given image range.
//
// Parameters:
//   - imageRange: first and last image number, 1-based and inclusive; the
//     range must be non-decreasing
//   - oscillation: start angle and per-image oscillation width in degrees
//   - exposureTimes: per-image exposure time in seconds, one per image
//   - epochs: per-image timestamp, one per image
//
// The exposure and epoch slices are copied.
func NewScan(imageRange [2]int, oscillation [2]float64, exposureTimes, epochs []float64) *Scan {
	assert.That(imageRange[1] >= imageRange[0],
		"scan image range [%d,%d] must be non-decreasing", imageRange[0], imageRange[1])
	n := imageRange[1] - imageRange[0] + 1
	assert.That(len(exposureTimes) == n,
		"scan covers %d images but has %d exposure times", n, len(exposureTimes))
	assert.That(len(epochs) == n,
		"scan covers %d images but has %d epochs", n, len(epochs))
	return &Scan{
		imageRange:    imageRange,
		oscillation:   oscillation,
		exposureTimes: append([]float64(nil), exposureTimes...),
		epochs:        append([]float64(nil), epochs...),
	}
}

// NewUniformScan returns a scan whose images all share one exposure time
// and carry zero epochs.
func NewUniformScan(imageRange [2]int, oscillation [2]float64, exposureTime float64) *Scan {
	assert.That(imageRange[1] >= imageRange[0],
		"scan image range [%d,%d] must be non-decreasing", imageRange[0], imageRange[1])
	n := imageRange[1] - imageRange[0] + 1
	exposures := make([]float64, n)
	for i := range exposures {
		exposures[i] = exposureTime
	}
	return NewScan(imageRange, oscillation, exposures, make([]float64, n))
}

// NumImages returns the number of images in the scan.
func (s *Scan) NumImages() int {
	return s.imageRange[1] - s.imageRange[0] + 1
}

// ImageRange returns the 1-based inclusive image range.
func (s *Scan) ImageRange() [2]int { return s.imageRange }

// ArrayRange returns the scan extent as a 0-based half-open range.
func (s *Scan) ArrayRange() [2]int {
	return [2]int{s.imageRange[0] - 1, s.imageRange[1]}
}

// Oscillation returns the start angle and per-image width in degrees.
func (s *Scan) Oscillation() [2]float64 { return s.oscillation }

// OscillationRange returns the total angular interval covered by the scan.
func (s *Scan) OscillationRange() [2]float64 {
	return [2]float64{
		s.oscillation[0],
		s.oscillation[0] + s.oscillation[1]*float64(s.NumImages()),
	}
}

// ExposureTimes returns a copy of the per-image exposure times.
func (s *Scan) ExposureTimes() []float64 {
	return append([]float64(nil), s.exposureTimes...)
}

// Epochs returns a copy of the per-image epochs.
func (s *Scan) Epochs() []float64 {
	return append([]float64(nil), s.epochs...)
}

// At returns a single-image scan for the image at 0-based offset i: the
// i-th image number, the oscillation advanced by i widths, and the i-th
// exposure time and epoch.
func (s *Scan) At(i int) *Scan {
	assert.That(0 <= i && i < s.NumImages(),
		"scan offset %d out of range for %d images", i, s.NumImages())
	image := s.imageRange[0] + i
	return &Scan{
		imageRange:    [2]int{image, image},
		oscillation:   [2]float64{s.oscillation[0] + float64(i)*s.oscillation[1], s.oscillation[1]},
		exposureTimes: []float64{s.exposureTimes[i]},
		epochs:        []float64{s.epochs[i]},
	}
}

// Clone returns an independent copy of the scan.
func (s *Scan) Clone() *Scan {
	c := *s
	c.exposureTimes = append([]float64(nil), s.exposureTimes...)
	c.epochs = append([]float64(nil), s.epochs...)
	return &c
}

// Append extends the scan with other, which must continue it: other's
// first image directly follows the current last image, the oscillation
// widths agree, and other's start angle matches the current oscillation
// end, all within 0.01 degrees.
func (s *Scan) Append(other *Scan) {
	assert.That(other != nil, "cannot append a nil scan")
	assert.That(other.imageRange[0] == s.imageRange[1]+1,
		"appended scan must start at image %d, got %d", s.imageRange[1]+1, other.imageRange[0])
	assert.That(math.Abs(other.oscillation[1]-s.oscillation[1]) <= appendTol,
		"oscillation widths differ: %g vs %g", s.oscillation[1], other.oscillation[1])
	end := s.OscillationRange()[1]
	assert.That(math.Abs(other.oscillation[0]-end) <= appendTol,
		"appended scan oscillation starts at %g, expected %g", other.oscillation[0], end)

	s.imageRange[1] = other.imageRange[1]
	s.exposureTimes = append(s.exposureTimes, other.exposureTimes...)
	s.epochs = append(s.epochs, other.epochs...)
}

// Equal reports whether two scans cover the same images with matching
// oscillation, exposure times and epochs within a 1e-6 tolerance.
func (s *Scan) Equal(other *Scan) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.imageRange != other.imageRange {
		return false
	}
	if !scalar.EqualWithinAbs(s.oscillation[0], other.oscillation[0], modelTol) ||
		!scalar.EqualWithinAbs(s.oscillation[1], other.oscillation[1], modelTol) {
		return false
	}
	for i := range s.exposureTimes {
		if !scalar.EqualWithinAbs(s.exposureTimes[i], other.exposureTimes[i], modelTol) {
			return false
		}
	}
	for i := range s.epochs {
		if !scalar.EqualWithinAbs(s.epochs[i], other.epochs[i], modelTol) {
			return false
		}
	}
	return true
}

// String returns a printable description of the scan.
func (s *Scan) String() string {
	return fmt.Sprintf("Scan:\n    image range:   [%d,%d]\n    oscillation:   [%g,%g]\n    exposure time: %g\n",
		s.imageRange[0], s.imageRange[1], s.oscillation[0], s.oscillation[1], s.exposureTimes[0])
}
