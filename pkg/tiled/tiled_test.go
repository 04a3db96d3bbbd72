package tiled

import (
	"testing"

	"xrdkit/internal/assert"
)

// mustViolate asserts that fn breaks a contract.
func mustViolate(t *testing.T, msg string, fn func()) {
	t.Helper()
	if err := assert.Maybe(fn); err == nil {
		t.Errorf("%s: expected a contract violation", msg)
	}
}

// TestTileAccess verifies construction, addressing and shared backing data.
func TestTileAccess(t *testing.T) {
	tile := NewTile[int32](4, 3)
	if tile.Width() != 4 || tile.Height() != 3 || tile.Len() != 12 {
		t.Fatalf("Expected 4x3 tile with 12 pixels, got %dx%d with %d",
			tile.Width(), tile.Height(), tile.Len())
	}

	tile.Set(3, 2, 42)
	if got := tile.At(3, 2); got != 42 {
		t.Errorf("Expected 42 at (3,2), got %d", got)
	}
	// Row-major with the fast axis contiguous: (3,2) is the last pixel.
	if got := tile.Data()[11]; got != 42 {
		t.Errorf("Expected 42 at backing index 11, got %d", got)
	}

	// Copies share backing data.
	other := tile
	other.Set(0, 0, 7)
	if got := tile.At(0, 0); got != 7 {
		t.Errorf("Expected copy write to be visible, got %d", got)
	}
}

// TestTileFilled verifies the filled constructor.
func TestTileFilled(t *testing.T) {
	tile := NewTileFilled(2, 2, 2.5)
	for _, v := range tile.Data() {
		if v != 2.5 {
			t.Fatalf("Expected uniform 2.5, got %v", v)
		}
	}
}

// TestTileFrom verifies slice wrapping and the length contract.
func TestTileFrom(t *testing.T) {
	tile := NewTileFrom(2, 2, []int32{1, 2, 3, 4})
	if tile.At(1, 1) != 4 {
		t.Errorf("Expected 4 at (1,1), got %d", tile.At(1, 1))
	}

	mustViolate(t, "length mismatch", func() {
		NewTileFrom(2, 2, []int32{1, 2, 3})
	})
	mustViolate(t, "negative dimension", func() {
		NewTile[int32](-1, 2)
	})
}

// TestTileBounds verifies the pixel addressing contract.
func TestTileBounds(t *testing.T) {
	tile := NewTile[float64](3, 2)
	mustViolate(t, "fast overflow", func() { tile.At(3, 0) })
	mustViolate(t, "slow overflow", func() { tile.At(0, 2) })
	mustViolate(t, "negative fast", func() { tile.Set(-1, 0, 0) })
}

// TestImageShapeCompatibility verifies the cross-type layout comparison.
func TestImageShapeCompatibility(t *testing.T) {
	raw := NewImage(NewTile[int32](4, 3), NewTile[int32](4, 3))
	gain := NewImage(NewTile[float64](4, 3), NewTile[float64](4, 3))
	mask := NewImage(NewTile[bool](4, 3))

	if !SameShape(raw, gain) {
		t.Error("Expected int32 and float64 images of equal layout to match")
	}
	if SameShape(raw, mask) {
		t.Error("Expected differing tile counts to mismatch")
	}

	short := NewImage(NewTile[float64](4, 2), NewTile[float64](4, 3))
	if SameShape(raw, short) {
		t.Error("Expected differing tile extents to mismatch")
	}

	var a, b Image[int32]
	if !SameShape(a, b) {
		t.Error("Expected two empty images to match")
	}
}

// TestImageAppendAndEmpty verifies the empty state and growth.
func TestImageAppendAndEmpty(t *testing.T) {
	var img Image[bool]
	if !img.Empty() {
		t.Fatal("Expected zero-value image to be empty")
	}

	img.Append(NewTile[bool](2, 2))
	if img.Empty() || img.Tiles() != 1 {
		t.Errorf("Expected one tile after append, got %d", img.Tiles())
	}

	mustViolate(t, "tile index", func() { img.Tile(1) })
}

// TestAsFloat64 verifies sample promotion.
func TestAsFloat64(t *testing.T) {
	raw := NewImage(NewTileFrom(2, 1, []int32{3, -7}))
	got := AsFloat64(raw)

	if !SameShape(raw, got) {
		t.Fatal("Expected promotion to preserve layout")
	}
	if got.Tile(0).At(0, 0) != 3.0 || got.Tile(0).At(1, 0) != -7.0 {
		t.Errorf("Expected promoted samples [3 -7], got %v", got.Tile(0).Data())
	}

	// Promotion copies: writes to the result must not touch the source.
	got.Tile(0).Set(0, 0, 99)
	if raw.Tile(0).At(0, 0) != 3 {
		t.Error("Expected the source image to be untouched by promoted writes")
	}
}
