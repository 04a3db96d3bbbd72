// Package imageset implements the image-collection model that ties raw
// detector frames to the experimental geometry describing them. A Data
// value owns the reader/masker handles, the per-image model slots and the
// shared external lookup; ImageSet, ImageGrid and ImageSweep are views over
// one shared Data, differing in which structural guarantees they enforce.
//
// The correction pipeline is fixed: raw counts are promoted to float64,
// the pedestal is subtracted, then the gain divides, and masks combine the
// per-panel trusted ranges with the dynamic and external masks. Precondition
// violations panic with an assert.Violation; absent maps and masks are a
// normal state and are skipped silently.
package imageset
