package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/evolenia/config"
	"github.com/pthm-cable/evolenia/systems"
	"github.com/pthm-cable/evolenia/telemetry"
)

// Simulation owns the grid and advances it one tick at a time.
type Simulation struct {
	cfg    *config.Config
	field  *systems.Field
	kernel *systems.Kernel
	params systems.Params
	acc    systems.MassAccumulator
	pool   *workerPool
	perf   *telemetry.PerfCollector

	seed     int64
	frame    uint32
	founders int

	// Stage closures, built once so Step does not allocate
	velocity, evolution, resource, sum, apply rowFunc
	correction float32
}

// NewSimulation builds a seeded world from cfg. Worker count and the
// inline threshold come from cfg.Parallel.
func NewSimulation(cfg *config.Config, seed int64) *Simulation {
	k := cfg.Kernel
	s := &Simulation{
		cfg:    cfg,
		field:  systems.NewField(cfg.World.Width, cfg.World.Height, float32(cfg.Seeding.BackgroundEnergy), 0),
		kernel: systems.NewKernel(k.ReferenceRadii, k.MaxRadius, k.RingWidth),
		params: systems.NewParams(cfg, foldSeed(seed)),
		pool:   newWorkerPool(cfg.Parallel.Workers, cfg.Parallel.ThresholdRows),
	}

	f, p := s.field, &s.params
	s.velocity = func(y0, y1 int) { systems.VelocityStage(f, p, y0, y1) }
	s.evolution = func(y0, y1 int) { systems.EvolutionStage(f, s.kernel, p, s.frame, y0, y1) }
	s.resource = func(y0, y1 int) { systems.ResourceStage(f, p, y0, y1) }
	s.sum = func(y0, y1 int) { systems.NormalizeSum(f, &s.acc, y0, y1) }
	s.apply = func(y0, y1 int) { systems.NormalizeStage(f, s.correction, y0, y1) }

	s.Reseed(seed)
	return s
}

// foldSeed reduces a run seed to the 32-bit seed of the per-cell hash.
func foldSeed(seed int64) uint32 {
	return uint32(seed) ^ uint32(uint64(seed)>>32)
}

// Reseed rebuilds the world from seed: landscape, empty background and
// founders. The frame counter restarts at zero.
func (s *Simulation) Reseed(seed int64) {
	s.seed = seed
	s.params.Seed = foldSeed(seed)
	s.frame = 0
	s.correction = 1

	f := s.field
	f.Clear(float32(s.cfg.Seeding.BackgroundEnergy), 0)

	rng := rand.New(rand.NewSource(seed))
	systems.Landscape(f.Resource(), f.W, f.H, s.cfg.Landscape, rng)

	world := ecs.NewWorld()
	NewFactory(world, rng, &s.params).SpawnFounders(f.W, f.H, s.cfg.Seeding, s.cfg.Derived.AreaScale)
	s.founders = systems.NewStampSystem(world).Update(f)
}

// SetPerf attaches a collector that times each stage. nil disables timing.
func (s *Simulation) SetPerf(pc *telemetry.PerfCollector) {
	s.perf = pc
}

func (s *Simulation) stage(st telemetry.Stage) {
	if s.perf != nil {
		s.perf.Begin(st)
	}
}

// Step advances the world one tick. Each stage finishes on every row
// before the next starts; the buffers swap only after the last stage.
func (s *Simulation) Step() {
	h := s.field.H

	s.stage(telemetry.StageVelocity)
	s.pool.run(h, s.velocity)

	s.stage(telemetry.StageEvolution)
	s.pool.run(h, s.evolution)

	s.stage(telemetry.StageResource)
	s.pool.run(h, s.resource)

	s.stage(telemetry.StageNormalizeSum)
	s.acc.Reset()
	s.pool.run(h, s.sum)

	s.stage(telemetry.StageNormalizeApply)
	total := s.acc.Total()
	c, ok := systems.Correction(total, &s.params)
	s.correction = c
	if s.perf != nil {
		s.perf.Normalized(total, s.params.TargetMass, c)
	}
	if ok {
		s.pool.run(h, s.apply)
	}

	s.field.Swap()
	s.frame++
}

// Field returns the grid. Callers must not hold buffer slices across Step.
func (s *Simulation) Field() *systems.Field { return s.field }

// Frame returns the number of completed ticks.
func (s *Simulation) Frame() uint32 { return s.frame }

// Seed returns the run seed.
func (s *Simulation) Seed() int64 { return s.seed }

// Founders returns how many founders the last seeding stamped.
func (s *Simulation) Founders() int { return s.founders }

// Params returns the live stage parameters. Changes take effect on the
// next Step.
func (s *Simulation) Params() *systems.Params { return &s.params }

// TargetMass returns the normalization target.
func (s *Simulation) TargetMass() float64 { return s.params.TargetMass }

// LastCorrection returns the scale factor applied by the latest tick's
// normalization, or 1 if none was applied.
func (s *Simulation) LastCorrection() float32 {
	return s.correction
}

// Snapshot copies the committed state.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	return telemetry.NewSnapshot(s.field, s.frame, s.seed)
}

// LoadSnapshot replaces the committed state with snap. The snapshot must
// match the grid dimensions. Values are clamped into their valid ranges
// as they are copied in; NaN becomes the lower bound.
func (s *Simulation) LoadSnapshot(snap *telemetry.Snapshot) error {
	if err := snap.CheckDimensions(s.field.W, s.field.H); err != nil {
		return err
	}
	f, p := s.field, &s.params
	mass, energy, res := f.Mass(), f.Energy(), f.Resource()
	genome, mut := f.GenomeA(), f.GenomeB()
	for i := range mass {
		mass[i] = clampRange(snap.Mass[i], 0, 1)
		energy[i] = clampRange(snap.Energy[i], 0, 1)
		res[i] = clampRange(snap.Resource[i], 0, 1)
		genome[i] = p.ClampGenome(snap.Genome[i])
		mut[i] = clampRange(snap.Mut[i], p.MutMin, p.MutMax)
	}
	vx, vy := f.Velocity()
	clear(vx)
	clear(vy)

	s.frame = snap.Frame
	s.correction = 1
	if snap.Seed != 0 {
		s.seed = snap.Seed
		s.params.Seed = foldSeed(snap.Seed)
	}
	return nil
}

func clampRange(v, lo, hi float32) float32 {
	switch {
	case v != v || v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// Close stops the worker goroutines.
func (s *Simulation) Close() {
	s.pool.stop()
}
