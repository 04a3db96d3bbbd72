package imageset

import (
	"xrdkit/internal/assert"
	"xrdkit/pkg/detector"
	"xrdkit/pkg/instrument"
	"xrdkit/pkg/tiled"
)

// Data holds everything a collection shares between its views: the reader
// and masker handles, one model slot per physical image for the beam,
// detector, goniometer and scan, free-form string properties, and the
// external lookup. Views reference a Data by pointer and never copy it.
type Data struct {
	reader      Reader
	masker      Masker
	beams       []*instrument.Beam
	detectors   []*detector.Detector
	goniometers []*instrument.Goniometer
	scans       []*instrument.Scan
	properties  map[string]string
	lookup      Lookup
}

// NewData returns collection data over the given reader and masker, with
// every model slot empty. The two handles must agree on the image count;
// one object may serve as both.
func NewData(reader Reader, masker Masker) *Data {
	assert.That(reader != nil, "collection data needs a reader")
	assert.That(masker != nil, "collection data needs a masker")
	assert.That(reader.Len() == masker.Len(),
		"reader covers %d images but masker covers %d", reader.Len(), masker.Len())

	n := reader.Len()
	return &Data{
		reader:      reader,
		masker:      masker,
		beams:       make([]*instrument.Beam, n),
		detectors:   make([]*detector.Detector, n),
		goniometers: make([]*instrument.Goniometer, n),
		scans:       make([]*instrument.Scan, n),
		properties:  make(map[string]string),
	}
}

// Size returns the number of physical images.
func (d *Data) Size() int { return d.reader.Len() }

func (d *Data) checkIndex(index int) {
	assert.That(0 <= index && index < d.Size(),
		"physical index %d out of range for %d images", index, d.Size())
}

// RawData returns the raw image at the given physical index.
func (d *Data) RawData(index int) tiled.Image[int32] {
	d.checkIndex(index)
	return d.reader.Read(index)
}

// DynamicMask returns the acquisition-time mask at the given physical
// index; an empty image means none.
func (d *Data) DynamicMask(index int) tiled.Image[bool] {
	d.checkIndex(index)
	return d.masker.Mask(index)
}

// Path returns the file path backing the given physical index.
func (d *Data) Path(index int) string {
	d.checkIndex(index)
	return d.reader.Path(index)
}

// MasterPath returns the path of the first physical image, which for a
// single-file reader is the master file.
func (d *Data) MasterPath() string { return d.reader.Path(0) }

// Identifier returns the identifier of the given physical index.
func (d *Data) Identifier(index int) string {
	d.checkIndex(index)
	return d.reader.Identifier(index)
}

// SingleFileReader reports whether all images live in one master file.
func (d *Data) SingleFileReader() bool { return d.reader.SingleFile() }

// Beam returns the beam slot at the given physical index; nil means unset.
func (d *Data) Beam(index int) *instrument.Beam {
	d.checkIndex(index)
	return d.beams[index]
}

// SetBeam fills the beam slot at the given physical index.
func (d *Data) SetBeam(index int, b *instrument.Beam) {
	d.checkIndex(index)
	d.beams[index] = b
}

// Detector returns the detector slot at the given physical index; nil
// means unset.
func (d *Data) Detector(index int) *detector.Detector {
	d.checkIndex(index)
	return d.detectors[index]
}

// SetDetector fills the detector slot at the given physical index.
func (d *Data) SetDetector(index int, det *detector.Detector) {
	d.checkIndex(index)
	d.detectors[index] = det
}

// Goniometer returns the goniometer slot at the given physical index; nil
// means unset.
func (d *Data) Goniometer(index int) *instrument.Goniometer {
	d.checkIndex(index)
	return d.goniometers[index]
}

// SetGoniometer fills the goniometer slot at the given physical index.
func (d *Data) SetGoniometer(index int, g *instrument.Goniometer) {
	d.checkIndex(index)
	d.goniometers[index] = g
}

// Scan returns the scan slot at the given physical index; nil means unset.
func (d *Data) Scan(index int) *instrument.Scan {
	d.checkIndex(index)
	return d.scans[index]
}

// SetScan fills the scan slot at the given physical index.
func (d *Data) SetScan(index int, s *instrument.Scan) {
	d.checkIndex(index)
	d.scans[index] = s
}

// Property returns the named property. The property must exist; reading an
// unset name is a contract violation, not an empty string.
func (d *Data) Property(name string) string {
	value, ok := d.properties[name]
	assert.That(ok, "collection has no property named %q", name)
	return value
}

// SetProperty stores a named property.
func (d *Data) SetProperty(name, value string) {
	d.properties[name] = value
}

// Properties returns a copy of the property table.
func (d *Data) Properties() map[string]string {
	out := make(map[string]string, len(d.properties))
	for k, v := range d.properties {
		out[k] = v
	}
	return out
}

// Lookup returns the external lookup shared by every view of this data.
func (d *Data) Lookup() *Lookup { return &d.lookup }
