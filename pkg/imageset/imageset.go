package imageset

import (
	"log/slog"

	"github.com/hashicorp/golang-lru/v2"

	"xrdkit/internal/assert"
	"xrdkit/pkg/detector"
	"xrdkit/pkg/instrument"
	"xrdkit/pkg/tiled"
)

// variant tags the closed set of view kinds so the shared methods can
// enforce the structural restrictions of grids and sweeps.
type variant uint8

const (
	plainVariant variant = iota
	gridVariant
	sweepVariant
)

// String returns the view kind for contract messages.
func (v variant) String() string {
	switch v {
	case gridVariant:
		return "image grid"
	case sweepVariant:
		return "image sweep"
	default:
		return "image set"
	}
}

// newRawCache returns the one-slot raw-image cache: holding on to the last
// logical index read, and evicting it as soon as a different one arrives.
func newRawCache() *lru.Cache[int, tiled.Image[int32]] {
	cache, err := lru.New[int, tiled.Image[int32]](1)
	if err != nil {
		panic(err)
	}
	return cache
}

// ImageSet is a view over shared collection data: an ordered list of
// logical image positions, each mapping to a physical index in the Data.
// Plain sets allow duplicates and arbitrary order; ImageGrid and ImageSweep
// restrict the shape further.
//
// The zero value has no backing data and fails on first use; construct
// views with New, NewWithIndices, or the grid and sweep constructors.
type ImageSet struct {
	data    *Data
	indices []int
	cache   *lru.Cache[int, tiled.Image[int32]]
	kind    variant
}

// newView builds a view after validating each index against the data size.
func newView(data *Data, indices []int, kind variant) ImageSet {
	assert.That(data != nil, "image set needs collection data")
	for _, idx := range indices {
		assert.That(0 <= idx && idx < data.Size(),
			"physical index %d out of range for %d images", idx, data.Size())
	}
	return ImageSet{data: data, indices: indices, cache: newRawCache(), kind: kind}
}

// allIndices returns the identity mapping over every physical image.
func allIndices(data *Data) []int {
	assert.That(data != nil, "image set needs collection data")
	indices := make([]int, data.Size())
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// New returns a plain view over every physical image in order.
func New(data *Data) *ImageSet {
	s := newView(data, allIndices(data), plainVariant)
	return &s
}

// NewWithIndices returns a plain view over the given physical indices,
// which are copied. Every index must lie inside the data; duplicates and
// arbitrary order are allowed.
func NewWithIndices(data *Data, indices []int) *ImageSet {
	s := newView(data, append([]int(nil), indices...), plainVariant)
	return &s
}

// backing returns the shared data, failing loudly on a zero-value view.
func (s *ImageSet) backing() *Data {
	assert.That(s.data != nil, "image set has no backing data")
	return s.data
}

// physical maps a logical position to its physical index.
func (s *ImageSet) physical(index int) int {
	s.backing()
	assert.That(0 <= index && index < len(s.indices),
		"image %d out of range for %d images", index, len(s.indices))
	return s.indices[index]
}

// Size returns the number of images in the view.
func (s *ImageSet) Size() int {
	s.backing()
	return len(s.indices)
}

// Indices returns a copy of the logical-to-physical index list.
func (s *ImageSet) Indices() []int {
	s.backing()
	return append([]int(nil), s.indices...)
}

// Data returns the shared collection data.
func (s *ImageSet) Data() *Data { return s.backing() }

// ExternalLookup returns the lookup shared by every view of this data.
func (s *ImageSet) ExternalLookup() *Lookup { return s.backing().Lookup() }

// RawData returns the raw image at a logical position. The last answer is
// kept in a single cache slot, so sequential access rereads nothing and
// any other pattern falls through to the reader.
func (s *ImageSet) RawData(index int) tiled.Image[int32] {
	phys := s.physical(index)
	if img, ok := s.cache.Get(index); ok {
		return img
	}
	img := s.backing().RawData(phys)
	s.cache.Add(index, img)
	return img
}

// CorrectedData returns (raw - pedestal) / gain as a fresh float64 image.
// Absent maps skip their stage; present maps must match the raw layout
// tile for tile, and every gain sample must be positive.
func (s *ImageSet) CorrectedData(index int) tiled.Image[float64] {
	data := tiled.AsFloat64(s.RawData(index))
	gain := s.Gain(index)
	pedestal := s.Pedestal(index)

	if !pedestal.Empty() {
		assert.That(tiled.SameShape(data, pedestal),
			"pedestal map layout does not match the raw data")
	}
	if !gain.Empty() {
		assert.That(tiled.SameShape(data, gain),
			"gain map layout does not match the raw data")
	}

	for i := 0; i < data.Tiles(); i++ {
		out := data.Tile(i).Data()
		if !pedestal.Empty() {
			ped := pedestal.Tile(i).Data()
			for j := range out {
				out[j] -= ped[j]
			}
		}
		if !gain.Empty() {
			g := gain.Tile(i).Data()
			for j := range out {
				assert.That(g[j] > 0, "gain must be positive, got %g in tile %d", g[j], i)
				out[j] /= g[j]
			}
		}
	}
	return data
}

// Gain returns the gain map. When the external lookup is empty it is
// synthesized once from the per-panel scalar gains, provided every gain is
// positive, and cached into the lookup for the whole collection; later
// panel edits do not refresh it.
func (s *ImageSet) Gain(index int) tiled.Image[float64] {
	item := s.ExternalLookup().Gain()
	if item.Data().Empty() {
		det := s.DetectorForImage(index)
		assert.That(det != nil, "no detector is set for image %d", index)

		usable := true
		gains := make([]float64, det.Len())
		for i := range gains {
			gains[i] = det.Panel(i).Gain()
			if gains[i] <= 0 {
				usable = false
				break
			}
		}

		if usable {
			var img tiled.Image[float64]
			for i, g := range gains {
				size := det.Panel(i).ImageSize()
				img.Append(tiled.NewTileFilled(size[0], size[1], g))
			}
			item.SetFilename("")
			item.SetData(img)
			slog.Debug("synthesized flat gain map from panel gains", "panels", det.Len())
		}
	}
	return item.Data()
}

// Pedestal returns the external pedestal map; there is no synthesis.
func (s *ImageSet) Pedestal(index int) tiled.Image[float64] {
	s.physical(index)
	return s.ExternalLookup().Pedestal().Data()
}

// Mask returns the usable-pixel mask at a logical position: the per-panel
// trusted-range mask of the raw data, combined under AND with the dynamic
// mask and the external mask where present.
func (s *ImageSet) Mask(index int) tiled.Image[bool] {
	data := tiled.AsFloat64(s.RawData(index))
	det := s.DetectorForImage(index)
	assert.That(det != nil, "no detector is set for image %d", index)
	assert.That(data.Tiles() == det.Len(),
		"raw data has %d tiles for a %d-panel detector", data.Tiles(), det.Len())

	var mask tiled.Image[bool]
	for i := 0; i < det.Len(); i++ {
		mask.Append(det.Panel(i).TrustedRangeMask(data.Tile(i)))
	}

	combineMasks(mask, s.backing().DynamicMask(s.physical(index)), "dynamic")
	combineMasks(mask, s.ExternalLookup().Mask().Data(), "external")
	return mask
}

// combineMasks folds src into dst under AND. An empty src is a no-op; a
// non-empty src must match dst tile for tile.
func combineMasks(dst, src tiled.Image[bool], source string) {
	if src.Empty() {
		return
	}
	assert.That(tiled.SameShape(dst, src),
		"%s mask layout does not match the detector", source)
	for i := 0; i < dst.Tiles(); i++ {
		d := dst.Tile(i).Data()
		m := src.Tile(i).Data()
		for j := range d {
			d[j] = d[j] && m[j]
		}
	}
}

// Property returns the named collection property; the name must be set.
func (s *ImageSet) Property(name string) string {
	return s.backing().Property(name)
}

// SetProperty stores a collection property, visible through every view.
func (s *ImageSet) SetProperty(name, value string) {
	s.backing().SetProperty(name, value)
}

// BeamForImage returns the beam of the image at a logical position.
func (s *ImageSet) BeamForImage(index int) *instrument.Beam {
	return s.backing().Beam(s.physical(index))
}

// DetectorForImage returns the detector of the image at a logical position.
func (s *ImageSet) DetectorForImage(index int) *detector.Detector {
	return s.backing().Detector(s.physical(index))
}

// GoniometerForImage returns the goniometer of the image at a logical
// position.
func (s *ImageSet) GoniometerForImage(index int) *instrument.Goniometer {
	return s.backing().Goniometer(s.physical(index))
}

// ScanForImage returns the scan of the image at a logical position.
func (s *ImageSet) ScanForImage(index int) *instrument.Scan {
	return s.backing().Scan(s.physical(index))
}

// requirePerImageModels gates the per-image setters: a sweep shares one
// model across all images and refuses per-image writes.
func (s *ImageSet) requirePerImageModels(model string) {
	assert.That(s.kind != sweepVariant,
		"cannot set a per-image %s on an image sweep", model)
}

// SetBeamForImage sets the beam of the image at a logical position.
func (s *ImageSet) SetBeamForImage(index int, b *instrument.Beam) {
	s.requirePerImageModels("beam")
	s.setBeamAt(index, b)
}

// SetDetectorForImage sets the detector of the image at a logical position.
func (s *ImageSet) SetDetectorForImage(index int, det *detector.Detector) {
	s.requirePerImageModels("detector")
	s.setDetectorAt(index, det)
}

// SetGoniometerForImage sets the goniometer of the image at a logical
// position.
func (s *ImageSet) SetGoniometerForImage(index int, g *instrument.Goniometer) {
	s.requirePerImageModels("goniometer")
	s.setGoniometerAt(index, g)
}

// SetScanForImage sets the scan of the image at a logical position. A
// per-image scan must cover exactly one image.
func (s *ImageSet) SetScanForImage(index int, sc *instrument.Scan) {
	s.requirePerImageModels("scan")
	s.setScanAt(index, sc)
}

func (s *ImageSet) setBeamAt(index int, b *instrument.Beam) {
	s.backing().SetBeam(s.physical(index), b)
}

func (s *ImageSet) setDetectorAt(index int, det *detector.Detector) {
	s.backing().SetDetector(s.physical(index), det)
}

func (s *ImageSet) setGoniometerAt(index int, g *instrument.Goniometer) {
	s.backing().SetGoniometer(s.physical(index), g)
}

func (s *ImageSet) setScanAt(index int, sc *instrument.Scan) {
	assert.That(sc == nil || sc.NumImages() == 1,
		"per-image scan must cover exactly one image, got %d", numImagesOrZero(sc))
	s.backing().SetScan(s.physical(index), sc)
}

func numImagesOrZero(sc *instrument.Scan) int {
	if sc == nil {
		return 0
	}
	return sc.NumImages()
}

// Path returns the file path of the image at a logical position. With a
// single-file reader every image reports the master path.
func (s *ImageSet) Path(index int) string {
	phys := s.physical(index)
	if s.backing().SingleFileReader() {
		return s.backing().MasterPath()
	}
	return s.backing().Path(phys)
}

// Identifier returns the identifier of the image at a logical position.
func (s *ImageSet) Identifier(index int) string {
	return s.backing().Identifier(s.physical(index))
}

// AsImageSet returns this view as a plain image set over the same data and
// indices.
func (s *ImageSet) AsImageSet() *ImageSet {
	s.backing()
	if s.kind == plainVariant {
		return s
	}
	return NewWithIndices(s.data, s.indices)
}

// CompleteSet returns a plain view over every physical image. Grids and
// sweeps refuse: their structure does not survive re-indexing.
func (s *ImageSet) CompleteSet() *ImageSet {
	s.backing()
	assert.That(s.kind == plainVariant, "cannot take the complete set of an %s", s.kind)
	return New(s.data)
}

// PartialSet returns a plain view over the logical positions [first, last).
// Grids and sweeps refuse: their structure does not survive re-indexing.
func (s *ImageSet) PartialSet(first, last int) *ImageSet {
	s.backing()
	assert.That(s.kind == plainVariant, "cannot take a partial set of an %s", s.kind)
	assert.That(0 <= first && first < last && last <= len(s.indices),
		"partial set range [%d,%d) is invalid for %d images", first, last, len(s.indices))
	return NewWithIndices(s.data, s.indices[first:last])
}

// Equal reports whether two views resolve the same paths in the same
// order. The backing data may differ; only size and path sequence count.
func (s *ImageSet) Equal(other *ImageSet) bool {
	if s.Size() != other.Size() {
		return false
	}
	for i := 0; i < s.Size(); i++ {
		if s.Path(i) != other.Path(i) {
			return false
		}
	}
	return true
}
