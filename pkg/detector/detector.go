package detector

import (
	"strings"

	"xrdkit/internal/assert"
)

// Detector is an ordered list of panels making up one area detector.
type Detector struct {
	panels []Panel
}

// NewDetector returns a detector over the given panels.
func NewDetector(panels ...Panel) *Detector {
	return &Detector{panels: panels}
}

// AddPanel appends a panel to the detector.
func (d *Detector) AddPanel(p Panel) {
	d.panels = append(d.panels, p)
}

// RemovePanel deletes the panel at the given position.
func (d *Detector) RemovePanel(i int) {
	d.checkIndex(i)
	d.panels = append(d.panels[:i], d.panels[i+1:]...)
}

// Len returns the number of panels.
func (d *Detector) Len() int { return len(d.panels) }

// Panel returns the panel at the given position. The pointer refers into
// the detector, so panel mutations are visible here.
func (d *Detector) Panel(i int) *Panel {
	d.checkIndex(i)
	return &d.panels[i]
}

func (d *Detector) checkIndex(i int) {
	assert.That(0 <= i && i < len(d.panels),
		"panel %d out of range for detector with %d panels", i, len(d.panels))
}

// Clone returns an independent deep copy of the detector.
func (d *Detector) Clone() *Detector {
	panels := make([]Panel, len(d.panels))
	for i := range d.panels {
		panels[i] = d.panels[i].Clone()
	}
	return &Detector{panels: panels}
}

// Equal reports whether two detectors hold pairwise-equal panels in the
// same order, using the geometric panel comparison.
func (d *Detector) Equal(other *Detector) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.panels) != len(other.panels) {
		return false
	}
	for i := range d.panels {
		if !d.panels[i].Equal(&other.panels[i]) {
			return false
		}
	}
	return true
}

// String returns a printable description of the detector.
func (d *Detector) String() string {
	var b strings.Builder
	b.WriteString("Detector:\n")
	for i := range d.panels {
		b.WriteString(d.panels[i].String())
	}
	return b.String()
}
