package systems

import (
	"github.com/pthm-cable/evolenia/components"
)

// Field is the toroidal grid state. Every per-cell array except velocity
// is ping-pong buffered: stages read the committed side and write the
// next side, and Swap commits the tick.
type Field struct {
	W, H int

	mass   [2][]float32
	energy [2][]float32
	genome [2][]components.GenomeA
	mut    [2][]float32
	res    [2][]float32

	// Single buffer, rewritten every tick by the velocity stage.
	vx, vy []float32

	cur int
}

// NewField allocates a w×h grid with every cell empty: zero mass, the
// default genome, and the given energy and resource levels.
func NewField(w, h int, energy, resource float32) *Field {
	n := w * h
	f := &Field{W: w, H: h, vx: make([]float32, n), vy: make([]float32, n)}
	for b := 0; b < 2; b++ {
		f.mass[b] = make([]float32, n)
		f.energy[b] = make([]float32, n)
		f.genome[b] = make([]components.GenomeA, n)
		f.mut[b] = make([]float32, n)
		f.res[b] = make([]float32, n)
	}
	f.Clear(energy, resource)
	return f
}

// Clear resets the committed side to empty cells.
func (f *Field) Clear(energy, resource float32) {
	c := f.cur
	for i := range f.mass[c] {
		f.mass[c][i] = 0
		f.energy[c][i] = energy
		f.genome[c][i] = components.DefaultGenome
		f.mut[c][i] = components.DefaultMut
		f.res[c][i] = resource
		f.vx[i] = 0
		f.vy[i] = 0
	}
}

// Len returns the number of cells.
func (f *Field) Len() int { return f.W * f.H }

// Width returns the grid width.
func (f *Field) Width() int { return f.W }

// Height returns the grid height.
func (f *Field) Height() int { return f.H }

// Index returns the flat index of (x, y), wrapping both coordinates.
func (f *Field) Index(x, y int) int {
	return wrap(y, f.H)*f.W + wrap(x, f.W)
}

// Committed buffers. Callers outside a tick may write through these
// slices to seed or edit state.

func (f *Field) Mass() []float32 { return f.mass[f.cur] }
func (f *Field) Energy() []float32 { return f.energy[f.cur] }
func (f *Field) GenomeA() []components.GenomeA { return f.genome[f.cur] }
func (f *Field) GenomeB() []float32 { return f.mut[f.cur] }
func (f *Field) Resource() []float32 { return f.res[f.cur] }
func (f *Field) Velocity() (vx, vy []float32) { return f.vx, f.vy }
func (f *Field) MassNext() []float32 { return f.mass[1-f.cur] }
func (f *Field) EnergyNext() []float32 { return f.energy[1-f.cur] }
func (f *Field) GenomeANext() []components.GenomeA { return f.genome[1-f.cur] }
func (f *Field) GenomeBNext() []float32 { return f.mut[1-f.cur] }
func (f *Field) ResourceNext() []float32 { return f.res[1-f.cur] }

// Swap commits the next buffers.
func (f *Field) Swap() {
	f.cur = 1 - f.cur
}

// Clone returns a deep copy of the committed state.
func (f *Field) Clone() *Field {
	out := NewField(f.W, f.H, 0, 0)
	out.CopyFrom(f)
	return out
}

// CopyFrom overwrites the committed state with src's committed state.
// Dimensions must match.
func (f *Field) CopyFrom(src *Field) {
	copy(f.Mass(), src.Mass())
	copy(f.Energy(), src.Energy())
	copy(f.GenomeA(), src.GenomeA())
	copy(f.GenomeB(), src.GenomeB())
	copy(f.Resource(), src.Resource())
	copy(f.vx, src.vx)
	copy(f.vy, src.vy)
}

// TotalMass sums committed mass in float64.
func (f *Field) TotalMass() float64 {
	var s float64
	for _, m := range f.Mass() {
		s += float64(m)
	}
	return s
}
