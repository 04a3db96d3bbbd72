package imageset

import "xrdkit/pkg/tiled"

// LookupItem pairs an on-disk source name with its decoded payload. An
// empty payload means the item is absent; the filename may be set ahead of
// the data, or left empty for synthesized payloads.
type LookupItem[T any] struct {
	filename string
	data     tiled.Image[T]
}

// Filename returns the source filename, or "" when none is recorded.
func (li *LookupItem[T]) Filename() string { return li.filename }

// SetFilename records the source filename.
func (li *LookupItem[T]) SetFilename(name string) { li.filename = name }

// Data returns the payload; an empty image means absent.
func (li *LookupItem[T]) Data() tiled.Image[T] { return li.data }

// SetData replaces the payload.
func (li *LookupItem[T]) SetData(img tiled.Image[T]) { li.data = img }

// Lookup groups the external correction images shared by every view of a
// collection: the static mask, the gain map and the pedestal map. The
// accessors return internal references so each slot can be set in place.
type Lookup struct {
	mask     LookupItem[bool]
	gain     LookupItem[float64]
	pedestal LookupItem[float64]
}

// Mask returns the external static-mask slot.
func (l *Lookup) Mask() *LookupItem[bool] { return &l.mask }

// Gain returns the external gain-map slot.
func (l *Lookup) Gain() *LookupItem[float64] { return &l.gain }

// Pedestal returns the external pedestal-map slot.
func (l *Lookup) Pedestal() *LookupItem[float64] { return &l.pedestal }
