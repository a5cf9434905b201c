package game

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/evolenia/components"
	"github.com/pthm-cable/evolenia/config"
	"github.com/pthm-cable/evolenia/systems"
)

// Factory creates founder entities for the stamp system.
type Factory struct {
	mapper *ecs.Map3[components.Position, components.Shape, components.Lineage]
	rng    *rand.Rand
	params *systems.Params
	order  uint32
}

// NewFactory creates a factory adding founders to world.
func NewFactory(world *ecs.World, rng *rand.Rand, params *systems.Params) *Factory {
	return &Factory{
		mapper: ecs.NewMap3[components.Position, components.Shape, components.Lineage](world),
		rng:    rng,
		params: params,
	}
}

// Spawn creates one founder at (x, y). Founders are stamped in the order
// they were spawned.
func (f *Factory) Spawn(x, y float32, shape components.Shape, lin components.Lineage) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	lin.Order = f.order
	f.order++
	return f.mapper.NewEntity(&pos, &shape, &lin)
}

// scaledCount scales a pattern count by world area, keeping at least one.
func scaledCount(n int, scale float64) int {
	if n <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(n)*scale)))
}

// SpawnFounders scatters every seeding pattern over a w×h world and
// returns the number of founders created.
func (f *Factory) SpawnFounders(w, h int, cfg config.SeedingConfig, areaScale float64) int {
	start := f.order
	at := func() (float32, float32) {
		return float32(f.rng.Intn(w)), float32(f.rng.Intn(h))
	}

	for i := scaledCount(cfg.Clusters, areaScale); i > 0; i-- {
		x, y := at()
		g, mut := f.randomGenome()
		f.Spawn(x, y, components.Shape{
			Kind:   components.ShapeBlob,
			Radius: f.uniform(5, 15),
		}, components.Lineage{Genome: g, Mut: mut, Energy: 0.5, MassScale: 1})
	}

	for i := scaledCount(cfg.Rings, areaScale); i > 0; i-- {
		x, y := at()
		g, mut := f.randomGenome()
		outer := f.uniform(10, 25)
		f.Spawn(x, y, components.Shape{
			Kind:   components.ShapeRing,
			Radius: outer,
			Inner:  outer * f.uniform(0.4, 0.7),
		}, components.Lineage{Genome: g, Mut: mut, Energy: 0.6, MassScale: 0.8})
	}

	for i := scaledCount(cfg.Filaments, areaScale); i > 0; i-- {
		x, y := at()
		g, mut := f.randomGenome()
		f.Spawn(x, y, components.Shape{
			Kind:      components.ShapeFilament,
			Angle:     f.uniform(0, 2*math.Pi),
			Length:    f.uniform(30, 80),
			HalfWidth: f.uniform(1.5, 4),
			Curvature: f.uniform(-0.02, 0.02),
		}, components.Lineage{Genome: g, Mut: mut, Energy: 0.5, MassScale: 0.7})
	}

	for i := scaledCount(cfg.Spirals, areaScale); i > 0; i-- {
		x, y := at()
		g, mut := f.randomGenome()
		f.Spawn(x, y, components.Shape{
			Kind:      components.ShapeSpiral,
			Arms:      2 + f.rng.Intn(3),
			MaxAngle:  f.uniform(3, 6),
			Scale:     f.uniform(15, 35),
			HalfWidth: f.uniform(1.5, 3.5),
		}, components.Lineage{Genome: g, Mut: mut, Energy: 0.55, MassScale: 0.6})
	}

	for i := scaledCount(cfg.Clouds, areaScale); i > 0; i-- {
		x, y := at()
		g, mut := f.randomGenome()
		f.Spawn(x, y, components.Shape{
			Kind:      components.ShapeCloud,
			Radius:    f.uniform(15, 40),
			Density:   f.uniform(0.05, 0.15),
			NoiseSeed: f.rng.Int63(),
		}, components.Lineage{Genome: g, Mut: mut, Energy: 0.4, MassScale: f.uniform(0.1, 0.5)})
	}

	for i := scaledCount(cfg.PredatorNests, areaScale); i > 0; i-- {
		x, y := at()
		g, mut := f.nestGenome()
		f.Spawn(x, y, components.Shape{
			Kind:   components.ShapePredatorNest,
			Radius: f.uniform(3, 7),
		}, components.Lineage{Genome: g, Mut: mut, Energy: 0.8, MassScale: 0.9})
	}

	return int(f.order - start)
}

func (f *Factory) uniform(lo, hi float32) float32 {
	return lo + f.rng.Float32()*(hi-lo)
}

// randomGenome draws a founder genome from the viable band of each gene.
func (f *Factory) randomGenome() (components.GenomeA, float32) {
	g := components.GenomeA{
		R:     f.uniform(3, 9),
		Mu:    f.uniform(0.12, 0.30),
		Sigma: f.uniform(0.04, 0.18),
		Agg:   f.uniform(0, 0.6),
	}
	return f.params.ClampGenome(g), f.clampMut(f.uniform(0.0005, 0.008))
}

// nestGenome draws a predator genome: high aggressivity, mid radius.
func (f *Factory) nestGenome() (components.GenomeA, float32) {
	g := components.GenomeA{
		R:     f.uniform(4, 7),
		Mu:    f.uniform(0.15, 0.25),
		Sigma: f.uniform(0.06, 0.12),
		Agg:   f.uniform(0.7, 1),
	}
	return f.params.ClampGenome(g), f.clampMut(f.uniform(0.001, 0.005))
}

func (f *Factory) clampMut(m float32) float32 {
	return min(max(m, f.params.MutMin), f.params.MutMax)
}
