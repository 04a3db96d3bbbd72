package imageset

import (
	"xrdkit/internal/assert"
	"xrdkit/pkg/detector"
	"xrdkit/pkg/instrument"
)

// ImageSweep is an image set over one contiguous rotation series. Every
// image shares a single beam, detector and goniometer, and the shared scan
// assigns each image its own oscillation slice. The shared models are
// broadcast into the collection data, so mixed access through a plain view
// of the same data observes them too.
type ImageSweep struct {
	ImageSet
	beam       *instrument.Beam
	detector   *detector.Detector
	goniometer *instrument.Goniometer
	scan       *instrument.Scan
}

// NewSweep returns a sweep over every physical image in order.
//
// Parameters:
//   - data: the shared collection data
//   - beam, det, gonio: the models shared by every image; copied in
//   - scan: the rotation scan, covering exactly one image per position;
//     copied in
func NewSweep(data *Data, beam *instrument.Beam, det *detector.Detector, gonio *instrument.Goniometer, scan *instrument.Scan) *ImageSweep {
	return newSweep(newView(data, allIndices(data), sweepVariant), beam, det, gonio, scan)
}

// NewSweepWithIndices returns a sweep over the given physical indices,
// which must ascend without gaps and are copied.
func NewSweepWithIndices(data *Data, indices []int, beam *instrument.Beam, det *detector.Detector, gonio *instrument.Goniometer, scan *instrument.Scan) *ImageSweep {
	copied := append([]int(nil), indices...)
	for i := 1; i < len(copied); i++ {
		assert.That(copied[i] == copied[i-1]+1,
			"sweep indices must be contiguous, got %d after %d", copied[i], copied[i-1])
	}
	return newSweep(newView(data, copied, sweepVariant), beam, det, gonio, scan)
}

func newSweep(base ImageSet, beam *instrument.Beam, det *detector.Detector, gonio *instrument.Goniometer, scan *instrument.Scan) *ImageSweep {
	assert.That(beam != nil, "image sweep needs a beam")
	assert.That(det != nil, "image sweep needs a detector")
	assert.That(gonio != nil, "image sweep needs a goniometer")
	assert.That(scan != nil, "image sweep needs a scan")
	assert.That(scan.NumImages() == len(base.indices),
		"scan covers %d images but the sweep has %d", scan.NumImages(), len(base.indices))
	w := &ImageSweep{
		ImageSet:   base,
		beam:       beam.Clone(),
		detector:   det.Clone(),
		goniometer: gonio.Clone(),
		scan:       scan.Clone(),
	}
	w.broadcast()
	return w
}

// broadcast writes the shared models into every image slot of the backing
// data: the same beam, detector and goniometer pointers everywhere, and a
// fresh single-image slice of the scan per position.
func (w *ImageSweep) broadcast() {
	for i := range w.indices {
		w.setBeamAt(i, w.beam)
		w.setDetectorAt(i, w.detector)
		w.setGoniometerAt(i, w.goniometer)
		w.setScanAt(i, w.scan.At(i))
	}
}

// Beam returns the beam shared by every image in the sweep.
func (w *ImageSweep) Beam() *instrument.Beam {
	w.backing()
	return w.beam
}

// Detector returns the detector shared by every image in the sweep.
func (w *ImageSweep) Detector() *detector.Detector {
	w.backing()
	return w.detector
}

// Goniometer returns the goniometer shared by every image in the sweep.
func (w *ImageSweep) Goniometer() *instrument.Goniometer {
	w.backing()
	return w.goniometer
}

// Scan returns the scan covering the whole sweep.
func (w *ImageSweep) Scan() *instrument.Scan {
	w.backing()
	return w.scan
}

// ArrayRange returns the scan extent as a 0-based half-open range.
func (w *ImageSweep) ArrayRange() [2]int {
	w.backing()
	return w.scan.ArrayRange()
}

// SetBeam replaces the shared beam across the whole sweep.
func (w *ImageSweep) SetBeam(b *instrument.Beam) {
	assert.That(b != nil, "image sweep needs a beam")
	w.backing()
	w.beam = b.Clone()
	for i := range w.indices {
		w.setBeamAt(i, w.beam)
	}
}

// SetDetector replaces the shared detector across the whole sweep.
func (w *ImageSweep) SetDetector(det *detector.Detector) {
	assert.That(det != nil, "image sweep needs a detector")
	w.backing()
	w.detector = det.Clone()
	for i := range w.indices {
		w.setDetectorAt(i, w.detector)
	}
}

// SetGoniometer replaces the shared goniometer across the whole sweep.
func (w *ImageSweep) SetGoniometer(g *instrument.Goniometer) {
	assert.That(g != nil, "image sweep needs a goniometer")
	w.backing()
	w.goniometer = g.Clone()
	for i := range w.indices {
		w.setGoniometerAt(i, w.goniometer)
	}
}

// SetScan replaces the shared scan; it must cover every image in the
// sweep. Each image slot receives its fresh single-image slice.
func (w *ImageSweep) SetScan(sc *instrument.Scan) {
	assert.That(sc != nil, "image sweep needs a scan")
	w.backing()
	assert.That(sc.NumImages() == len(w.indices),
		"scan covers %d images but the sweep has %d", sc.NumImages(), len(w.indices))
	w.scan = sc.Clone()
	for i := range w.indices {
		w.setScanAt(i, w.scan.At(i))
	}
}

// CompleteSweep returns a sweep over every physical image in the data,
// with a scan merged from the per-image scans in physical order. Every
// image must carry a scan.
func (w *ImageSweep) CompleteSweep() *ImageSweep {
	data := w.backing()
	var merged *instrument.Scan
	for i := 0; i < data.Size(); i++ {
		sc := data.Scan(i)
		assert.That(sc != nil, "image %d has no scan", i)
		if merged == nil {
			merged = sc.Clone()
		} else {
			merged.Append(sc)
		}
	}
	return NewSweep(data, w.beam, w.detector, w.goniometer, merged)
}

// PartialSweep returns a sweep over the logical positions [first, last),
// which must be a non-empty range, with a scan merged from the per-image
// scans of those positions.
func (w *ImageSweep) PartialSweep(first, last int) *ImageSweep {
	w.backing()
	assert.That(0 <= first && first < last && last <= len(w.indices),
		"partial sweep range [%d,%d) is invalid for %d images", first, last, len(w.indices))
	var merged *instrument.Scan
	for i := first; i < last; i++ {
		sc := w.ScanForImage(i)
		assert.That(sc != nil, "image %d has no scan", i)
		if merged == nil {
			merged = sc.Clone()
		} else {
			merged.Append(sc)
		}
	}
	return NewSweepWithIndices(w.data, w.indices[first:last], w.beam, w.detector, w.goniometer, merged)
}
