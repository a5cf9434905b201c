package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/evolenia/components"
	"github.com/pthm-cable/evolenia/config"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func testParams() Params {
	return NewParams(config.Cfg(), 7)
}

func testKernel() *Kernel {
	k := config.Cfg().Kernel
	return NewKernel(k.ReferenceRadii, k.MaxRadius, k.RingWidth)
}

// randomField fills every buffer with in-bounds random values.
func randomField(rng *rand.Rand, w, h int, p *Params) *Field {
	f := NewField(w, h, 0.5, 1)
	mass, energy := f.Mass(), f.Energy()
	genome, mut, res := f.GenomeA(), f.GenomeB(), f.Resource()
	for i := range mass {
		if rng.Float32() < 0.4 {
			mass[i] = rng.Float32()
		}
		energy[i] = rng.Float32()
		res[i] = rng.Float32()
		genome[i] = components.GenomeA{
			R:     p.RMin + rng.Float32()*(p.RMax-p.RMin),
			Mu:    p.MuMin + rng.Float32()*(p.MuMax-p.MuMin),
			Sigma: p.SigmaMin + rng.Float32()*(p.SigmaMax-p.SigmaMin),
			Agg:   rng.Float32(),
		}
		mut[i] = p.MutMin + rng.Float32()*(p.MutMax-p.MutMin)
	}
	return f
}

// step runs one full tick single-threaded.
func step(f *Field, k *Kernel, p *Params, acc *MassAccumulator, frame uint32) {
	VelocityStage(f, p, 0, f.H)
	EvolutionStage(f, k, p, frame, 0, f.H)
	ResourceStage(f, p, 0, f.H)
	acc.Reset()
	NormalizeSum(f, acc, 0, f.H)
	if c, ok := Correction(acc.Total(), p); ok {
		NormalizeStage(f, c, 0, f.H)
	}
	f.Swap()
}

func checkBounds(t *testing.T, f *Field, p *Params) {
	t.Helper()
	vx, vy := f.Velocity()
	genome, mut := f.GenomeA(), f.GenomeB()
	for i, m := range f.Mass() {
		e, r := f.Energy()[i], f.Resource()[i]
		if m < 0 || m > 1 || m != m {
			t.Fatalf("cell %d: mass %v out of [0,1]", i, m)
		}
		if e < 0 || e > 1 || e != e {
			t.Fatalf("cell %d: energy %v out of [0,1]", i, e)
		}
		if r < 0 || r > 1 || r != r {
			t.Fatalf("cell %d: resource %v out of [0,1]", i, r)
		}
		if vx[i] < -1 || vx[i] > 1 || vy[i] < -1 || vy[i] > 1 {
			t.Fatalf("cell %d: velocity (%v,%v) out of [-1,1]", i, vx[i], vy[i])
		}
		g := genome[i]
		if g.R < p.RMin || g.R > p.RMax || g.Mu < p.MuMin || g.Mu > p.MuMax ||
			g.Sigma < p.SigmaMin || g.Sigma > p.SigmaMax || g.Agg < p.AggMin || g.Agg > p.AggMax {
			t.Fatalf("cell %d: genome %+v out of bounds", i, g)
		}
		if mut[i] < p.MutMin || mut[i] > p.MutMax {
			t.Fatalf("cell %d: mutation rate %v out of bounds", i, mut[i])
		}
	}
}
