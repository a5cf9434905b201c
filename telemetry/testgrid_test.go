package telemetry

import (
	"math/rand"

	"github.com/pthm-cable/evolenia/components"
	"github.com/pthm-cable/evolenia/config"
)

func init() {
	config.MustInit("")
}

// testGrid is an in-memory Grid.
type testGrid struct {
	w, h     int
	mass     []float32
	energy   []float32
	genome   []components.GenomeA
	mut      []float32
	resource []float32
}

func newTestGrid(w, h int) *testGrid {
	n := w * h
	g := &testGrid{
		w:        w,
		h:        h,
		mass:     make([]float32, n),
		energy:   make([]float32, n),
		genome:   make([]components.GenomeA, n),
		mut:      make([]float32, n),
		resource: make([]float32, n),
	}
	for i := range g.genome {
		g.genome[i] = components.DefaultGenome
		g.mut[i] = components.DefaultMut
		g.energy[i] = 0.5
		g.resource[i] = 1
	}
	return g
}

func randomGrid(seed int64, w, h int) *testGrid {
	rng := rand.New(rand.NewSource(seed))
	g := newTestGrid(w, h)
	for i := range g.mass {
		g.mass[i] = rng.Float32()
		g.energy[i] = rng.Float32()
		g.resource[i] = rng.Float32()
		g.mut[i] = 0.001 + rng.Float32()*0.049
		g.genome[i] = components.GenomeA{
			R:     2 + rng.Float32()*7,
			Mu:    0.05 + rng.Float32()*0.45,
			Sigma: 0.005 + rng.Float32()*0.295,
			Agg:   rng.Float32(),
		}
	}
	return g
}

func (g *testGrid) Width() int { return g.w }
func (g *testGrid) Height() int { return g.h }
func (g *testGrid) Mass() []float32 { return g.mass }
func (g *testGrid) Energy() []float32 { return g.energy }
func (g *testGrid) GenomeA() []components.GenomeA { return g.genome }
func (g *testGrid) GenomeB() []float32 { return g.mut }
func (g *testGrid) Resource() []float32 { return g.resource }
