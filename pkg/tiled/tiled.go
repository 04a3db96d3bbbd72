// Package tiled implements the tile-structured 2D arrays that carry
// detector data through the collection layer. An image holds one tile per
// detector panel; each tile is a rectangular pixel array addressed by
// (fast, slow) coordinates with the fast axis contiguous in memory.
package tiled

import (
	"golang.org/x/exp/constraints"

	"xrdkit/internal/assert"
)

// Value constrains the element types eligible for arithmetic promotion.
// Mask images use bool and stay outside this constraint.
type Value interface {
	constraints.Integer | constraints.Float
}

// Tile is one rectangular pixel array, stored row-major so that the fast
// axis is contiguous. Copying a Tile shares its backing data, matching the
// reference semantics of the arrays it ferries between pipeline stages.
type Tile[T any] struct {
	data   []T
	width  int
	height int
}

// NewTile returns a zeroed tile with the given extents along the fast
// (width) and slow (height) axes.
func NewTile[T any](width, height int) Tile[T] {
	assert.That(width >= 0 && height >= 0,
		"tile dimensions must be non-negative, got %dx%d", width, height)
	return Tile[T]{data: make([]T, width*height), width: width, height: height}
}

// NewTileFilled returns a tile with every pixel set to value.
func NewTileFilled[T any](width, height int, value T) Tile[T] {
	t := NewTile[T](width, height)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// NewTileFrom wraps an existing slice as a width x height tile. The slice is
// used directly, not copied, and its length must match the extents.
func NewTileFrom[T any](width, height int, data []T) Tile[T] {
	assert.That(width >= 0 && height >= 0,
		"tile dimensions must be non-negative, got %dx%d", width, height)
	assert.That(len(data) == width*height,
		"tile data length %d does not match %dx%d", len(data), width, height)
	return Tile[T]{data: data, width: width, height: height}
}

// Width returns the extent along the fast axis.
func (t Tile[T]) Width() int { return t.width }

// Height returns the extent along the slow axis.
func (t Tile[T]) Height() int { return t.height }

// Len returns the number of pixels in the tile.
func (t Tile[T]) Len() int { return len(t.data) }

// At returns the pixel at (fast, slow).
func (t Tile[T]) At(fast, slow int) T {
	t.checkBounds(fast, slow)
	return t.data[slow*t.width+fast]
}

// Set stores a pixel at (fast, slow). The write is visible through every
// copy of the tile.
func (t Tile[T]) Set(fast, slow int, value T) {
	t.checkBounds(fast, slow)
	t.data[slow*t.width+fast] = value
}

// Data returns the backing slice in row-major order.
func (t Tile[T]) Data() []T { return t.data }

func (t Tile[T]) checkBounds(fast, slow int) {
	assert.That(0 <= fast && fast < t.width && 0 <= slow && slow < t.height,
		"pixel (%d,%d) out of range for %dx%d tile", fast, slow, t.width, t.height)
}

// SameTileShape reports whether two tiles have identical extents. The
// element types may differ; only the layout is compared.
func SameTileShape[A, B any](a Tile[A], b Tile[B]) bool {
	return a.width == b.width && a.height == b.height
}

// Image is an ordered sequence of tiles, one per detector panel. The zero
// value is the empty image, which the collection layer treats as the
// canonical "no data" state.
type Image[T any] struct {
	tiles []Tile[T]
}

// NewImage returns an image over the given tiles.
func NewImage[T any](tiles ...Tile[T]) Image[T] {
	return Image[T]{tiles: tiles}
}

// Append adds a tile to the end of the image.
func (m *Image[T]) Append(tile Tile[T]) {
	m.tiles = append(m.tiles, tile)
}

// Tiles returns the number of tiles in the image.
func (m Image[T]) Tiles() int { return len(m.tiles) }

// Tile returns the i-th tile. The returned tile shares its backing data
// with the image, so pixel writes through it are visible here.
func (m Image[T]) Tile(i int) Tile[T] {
	assert.That(0 <= i && i < len(m.tiles),
		"tile %d out of range for image with %d tiles", i, len(m.tiles))
	return m.tiles[i]
}

// Empty reports whether the image holds no tiles.
func (m Image[T]) Empty() bool { return len(m.tiles) == 0 }

// SameShape reports whether a and b hold the same number of tiles with
// identical per-tile extents. Element types may differ; only the layout is
// compared.
func SameShape[A, B any](a Image[A], b Image[B]) bool {
	if len(a.tiles) != len(b.tiles) {
		return false
	}
	for i := range a.tiles {
		if !SameTileShape(a.tiles[i], b.tiles[i]) {
			return false
		}
	}
	return true
}

// AsFloat64 returns a copy of img with every sample promoted to float64.
func AsFloat64[T Value](img Image[T]) Image[float64] {
	out := Image[float64]{tiles: make([]Tile[float64], 0, len(img.tiles))}
	for _, src := range img.tiles {
		dst := NewTile[float64](src.width, src.height)
		for i, v := range src.data {
			dst.data[i] = float64(v)
		}
		out.tiles = append(out.tiles, dst)
	}
	return out
}
