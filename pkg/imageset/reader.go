package imageset

import "xrdkit/pkg/tiled"

// Reader is the handle to decoded image data. Implementations live with the
// format layer; this package only ever delegates to them. The contract is
// total: a reader that cannot satisfy a call has no error channel here and
// must fail on its own terms.
type Reader interface {
	// Len returns the number of physical images.
	Len() int
	// Read returns the raw image at the given physical index, one tile per
	// detector panel.
	Read(index int) tiled.Image[int32]
	// Path returns the file path backing the given physical index.
	Path(index int) string
	// Identifier returns the unique identifier of the given physical index.
	Identifier(index int) string
	// SingleFile reports whether all images live in one master file.
	SingleFile() bool
}

// Masker supplies per-image dynamic masks, such as shadowed or disabled
// pixels known at acquisition time. An empty image means no dynamic mask.
type Masker interface {
	// Len returns the number of physical images.
	Len() int
	// Mask returns the dynamic mask at the given physical index.
	Mask(index int) tiled.Image[bool]
}
