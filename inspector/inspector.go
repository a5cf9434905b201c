// Package inspector tracks the selected grid cell and extracts its state
// for display.
package inspector

import (
	"github.com/pthm-cable/evolenia/components"
	"github.com/pthm-cable/evolenia/systems"
)

// CellProbe is the state of one cell. Tags drive the probe panel layout.
type CellProbe struct {
	X        int                `inspect:"label"`
	Y        int                `inspect:"label"`
	Mass     float32            `inspect:"bar,fmt:%.3f"`
	Energy   float32            `inspect:"bar,fmt:%.3f"`
	Resource float32            `inspect:"bar,fmt:%.3f"`
	Genome   components.GenomeA `inspect:"group"`
	Mut      float32            `inspect:"label,fmt:%.4f"`
	Velocity [2]float32         `inspect:"label,fmt:%+.3f"`
}

// Sample reads the committed state of cell (x, y). Coordinates wrap.
func Sample(f *systems.Field, x, y int) CellProbe {
	i := f.Index(x, y)
	vx, vy := f.Velocity()
	x, y = i%f.W, i/f.W
	return CellProbe{
		X:        x,
		Y:        y,
		Mass:     f.Mass()[i],
		Energy:   f.Energy()[i],
		Resource: f.Resource()[i],
		Genome:   f.GenomeA()[i],
		Mut:      f.GenomeB()[i],
		Velocity: [2]float32{vx[i], vy[i]},
	}
}

// Inspector manages cell selection.
type Inspector struct {
	x, y        int
	hasSelected bool
}

// NewInspector creates an inspector with nothing selected.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Select marks cell (x, y).
func (ins *Inspector) Select(x, y int) {
	ins.x, ins.y = x, y
	ins.hasSelected = true
}

// Deselect clears the selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected cell.
func (ins *Inspector) Selected() (x, y int, ok bool) {
	return ins.x, ins.y, ins.hasSelected
}

// Probe samples the selected cell of f.
func (ins *Inspector) Probe(f *systems.Field) (CellProbe, bool) {
	if !ins.hasSelected {
		return CellProbe{}, false
	}
	return Sample(f, ins.x, ins.y), true
}
