package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"xrdkit/internal/assert"
	"xrdkit/pkg/imageset"
	"xrdkit/pkg/tiled"
)

// sliceReader serves fixed in-memory frames.
type sliceReader struct {
	frames []tiled.Image[int32]
	paths  []string
}

func (r *sliceReader) Len() int { return len(r.frames) }

func (r *sliceReader) Read(index int) tiled.Image[int32] { return r.frames[index] }

func (r *sliceReader) Path(index int) string { return r.paths[index] }

func (r *sliceReader) Identifier(index int) string { return r.paths[index] }

func (r *sliceReader) SingleFile() bool { return false }

// sliceMasker serves no dynamic masks.
type sliceMasker struct {
	n int
}

func (m *sliceMasker) Len() int { return m.n }

func (m *sliceMasker) Mask(index int) tiled.Image[bool] { return tiled.Image[bool]{} }

// newCollectionData returns collection data over n tiny in-memory frames.
func newCollectionData(n int) *imageset.Data {
	r := &sliceReader{}
	for i := 0; i < n; i++ {
		r.frames = append(r.frames, tiled.NewImage(tiled.NewTileFilled(2, 2, int32(i))))
		r.paths = append(r.paths, fmt.Sprintf("image_%02d.cbf", i))
	}
	return imageset.NewData(r, &sliceMasker{n: n})
}

// TestLoadMissingFile verifies that a missing file yields the defaults.
func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error: %v", err)
	}
	if cfg.HasGrid() {
		t.Errorf("Expected no grid by default")
	}
	if len(cfg.Properties) != 0 {
		t.Errorf("Expected no properties by default, got %d", len(cfg.Properties))
	}
	if cfg.Lookup.Mask != "" || cfg.Lookup.Gain != "" || cfg.Lookup.Pedestal != "" {
		t.Errorf("Expected no lookup files by default")
	}
}

// TestLoadParsesYAML verifies field mapping from a description file.
func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.yaml")
	doc := `lookup:
  mask: pixelmask.h5
  gain: gain.h5
properties:
  beamline: I04
grid:
  width: 3
  height: 2
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Lookup.Mask != "pixelmask.h5" || cfg.Lookup.Gain != "gain.h5" {
		t.Errorf("Expected the lookup files to load, got %+v", cfg.Lookup)
	}
	if cfg.Lookup.Pedestal != "" {
		t.Errorf("Expected no pedestal file, got %q", cfg.Lookup.Pedestal)
	}
	if got := cfg.Properties["beamline"]; got != "I04" {
		t.Errorf("Expected beamline I04, got %q", got)
	}
	if !cfg.HasGrid() || cfg.Grid.Width != 3 || cfg.Grid.Height != 2 {
		t.Errorf("Expected a 3x2 grid, got %+v", cfg.Grid)
	}
}

// TestLoadRejectsMalformedYAML verifies the parse error path.
func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("lookup: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("Expected a parse error for malformed YAML")
	}
}

// TestSaveRoundTrip verifies saving into a nested directory and reloading.
func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Lookup.Pedestal = "pedestal.h5"
	cfg.Properties["exposure_mode"] = "shutterless"
	cfg.Grid.Width, cfg.Grid.Height = 2, 2

	path := filepath.Join(t.TempDir(), "nested", "collection.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Lookup.Pedestal != "pedestal.h5" {
		t.Errorf("Expected pedestal.h5, got %q", loaded.Lookup.Pedestal)
	}
	if got := loaded.Properties["exposure_mode"]; got != "shutterless" {
		t.Errorf("Expected shutterless, got %q", got)
	}
	if loaded.Grid != cfg.Grid {
		t.Errorf("Expected the grid to round-trip, got %+v", loaded.Grid)
	}
}

// TestApply verifies that the description lands on collection data.
func TestApply(t *testing.T) {
	data := newCollectionData(4)
	cfg := Default()
	cfg.Lookup.Mask = "pixelmask.h5"
	cfg.Properties["beamline"] = "I04"

	cfg.Apply(data)
	if got := data.Property("beamline"); got != "I04" {
		t.Errorf("Expected beamline I04, got %q", got)
	}
	if got := data.Lookup().Mask().Filename(); got != "pixelmask.h5" {
		t.Errorf("Expected the mask filename to be recorded, got %q", got)
	}
	if got := data.Lookup().Gain().Filename(); got != "" {
		t.Errorf("Expected no gain filename, got %q", got)
	}
}

// TestNewCollection verifies the view each description declares.
func TestNewCollection(t *testing.T) {
	cfg := Default()
	cfg.Properties["beamline"] = "I04"
	set := cfg.NewCollection(newCollectionData(4))
	if set.Size() != 4 {
		t.Fatalf("Expected 4 images, got %d", set.Size())
	}
	if got := set.Property("beamline"); got != "I04" {
		t.Errorf("Expected the description to be applied, got %q", got)
	}
	if sub := set.PartialSet(0, 2); sub.Size() != 2 {
		t.Errorf("Expected a plain view to allow partial sets, got %d", sub.Size())
	}

	grid := Default()
	grid.Grid.Width, grid.Grid.Height = 2, 2
	gv := grid.NewCollection(newCollectionData(4))
	if gv.Size() != 4 {
		t.Fatalf("Expected 4 images, got %d", gv.Size())
	}
	// Grid-shaped views refuse re-indexing.
	if err := assert.Maybe(func() { gv.PartialSet(0, 2) }); err == nil {
		t.Errorf("Expected a grid-shaped view to refuse partial sets")
	}
	// The grid shape must cover the images exactly.
	if err := assert.Maybe(func() { grid.NewCollection(newCollectionData(3)) }); err == nil {
		t.Errorf("Expected a shape violation for 3 images in a 2x2 grid")
	}
}
