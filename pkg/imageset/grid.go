package imageset

import "xrdkit/internal/assert"

// ImageGrid is an image set whose images tile a rectangular grid, such as
// the windows of a multi-exposure still collection. The grid adds a shape
// on top of the view; the per-image models stay independent.
type ImageGrid struct {
	ImageSet
	gridSize [2]int
}

// newGrid builds a grid view after checking that the grid shape accounts
// for every image exactly.
func newGrid(data *Data, indices []int, width, height int) *ImageGrid {
	base := newView(data, indices, gridVariant)
	assert.That(width > 0 && height > 0,
		"grid dimensions must be positive, got %dx%d", width, height)
	assert.That(width*height == len(indices),
		"a %dx%d grid covers %d images, got %d", width, height, width*height, len(indices))
	return &ImageGrid{ImageSet: base, gridSize: [2]int{width, height}}
}

// NewGrid returns a width x height grid over every physical image.
func NewGrid(data *Data, width, height int) *ImageGrid {
	return newGrid(data, allIndices(data), width, height)
}

// NewGridWithIndices returns a width x height grid over the given physical
// indices, which are copied.
func NewGridWithIndices(data *Data, indices []int, width, height int) *ImageGrid {
	return newGrid(data, append([]int(nil), indices...), width, height)
}

// GridFromImageSet reshapes an existing view into a width x height grid
// over the same data and indices.
func GridFromImageSet(set *ImageSet, width, height int) *ImageGrid {
	return newGrid(set.backing(), set.Indices(), width, height)
}

// GridSize returns the grid extents as {width, height}.
func (g *ImageGrid) GridSize() [2]int {
	g.backing()
	return g.gridSize
}
