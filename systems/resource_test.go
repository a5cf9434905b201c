package systems

import (
	"math"
	"math/rand"
	"testing"
)

func TestResourceRegrowsTowardCapacity(t *testing.T) {
	p := testParams()
	const w, h = 16, 16
	f := NewField(w, h, 0.5, 0.2)

	before := f.Resource()[0]
	ResourceStage(f, &p, 0, h)
	after := f.ResourceNext()[0]

	// Uniform field: no diffusion, no mass, only logistic feed
	want := before + p.Feed*(1-before)
	if math.Abs(float64(after-want)) > 1e-6 {
		t.Errorf("expected resource %.6f after feed, got %.6f", want, after)
	}
}

func TestResourceConsumption(t *testing.T) {
	p := testParams()
	p.Feed = 0
	const w, h = 16, 16
	f := NewField(w, h, 0.5, 0.8)
	i := f.Index(5, 5)
	f.MassNext()[i] = 1

	ResourceStage(f, &p, 0, h)

	want := 0.8 - 0.8*1*p.Consumption
	if got := f.ResourceNext()[i]; math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("expected consumed resource %.6f, got %.6f", want, got)
	}
	if got := f.ResourceNext()[f.Index(0, 0)]; got != 0.8 {
		t.Errorf("expected untouched cell to stay at 0.8, got %.6f", got)
	}
}

func TestResourceDiffusionConserves(t *testing.T) {
	p := testParams()
	p.Feed = 0
	p.Consumption = 0
	const w, h = 32, 32
	f := NewField(w, h, 0.5, 0)
	rng := rand.New(rand.NewSource(42))
	for i := range f.Resource() {
		f.Resource()[i] = rng.Float32()
	}

	var before float64
	for _, r := range f.Resource() {
		before += float64(r)
	}

	for i := 0; i < 50; i++ {
		ResourceStage(f, &p, 0, h)
		f.Swap()
	}

	var after float64
	var spread float64
	for _, r := range f.Resource() {
		after += float64(r)
		spread = math.Max(spread, math.Abs(float64(r)-before/(w*h)))
	}
	if math.Abs(after-before) > 1e-2 {
		t.Errorf("expected diffusion to conserve total resource: before=%.4f, after=%.4f", before, after)
	}
	if spread > 0.3 {
		t.Errorf("expected diffusion to smooth the field, max deviation %.4f", spread)
	}
}

func TestResourceStaysInBounds(t *testing.T) {
	p := testParams()
	p.Consumption = 5
	p.Feed = 1
	const w, h = 16, 16
	f := NewField(w, h, 0.5, 1)
	rng := rand.New(rand.NewSource(3))
	for i := range f.MassNext() {
		f.MassNext()[i] = rng.Float32()
	}
	ResourceStage(f, &p, 0, h)
	for i, r := range f.ResourceNext() {
		if r < 0 || r > 1 {
			t.Fatalf("cell %d: resource %v outside [0,1]", i, r)
		}
	}
}

func BenchmarkResourceStage(b *testing.B) {
	p := testParams()
	f := NewField(256, 256, 0.5, 0.7)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ResourceStage(f, &p, 0, f.H)
	}
}
