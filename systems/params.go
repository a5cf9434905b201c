package systems

import (
	"github.com/pthm-cable/evolenia/components"
	"github.com/pthm-cable/evolenia/config"
)

// Params holds every constant read by the tick stages, converted to
// float32 once so the hot loops never touch the config tree.
type Params struct {
	Seed uint32
	DT   float32

	LiveEpsilon float32
	EarlyExit   bool

	// Gene bounds
	RMin, RMax         float32
	MuMin, MuMax       float32
	SigmaMin, SigmaMax float32
	AggMin, AggMax     float32
	MutMin, MutMax     float32

	// Velocity
	PredationThreshold float32
	PredationMass      float32
	KPred              float32

	// Metabolism
	PredationFactor float32
	KComplexity     float32
	KRadius         float32
	KAgg            float32
	KInterference   float32
	KBase           float32
	KPreyBonus      float32

	StarvationThreshold float32
	StarvationDecay     float32

	AdvectionCap float32

	// Genetics
	SegregationEpsilon    float32
	MutationMultiplier    float32
	MutationLiveThreshold float32
	GeneScale             [4]float32 // r, mu, sigma, agg
	MutStep               float32
	MutMargin             float32

	// Resource
	Diffusion   float32
	Feed        float32
	Consumption float32

	// Normalization
	NormalizeEnabled bool
	TargetMass       float64
	Damping          float64
}

// NewParams converts a validated config into stage parameters.
func NewParams(cfg *config.Config, seed uint32) Params {
	g := cfg.Genes
	gen := cfg.Genetics
	met := cfg.Metabolism
	return Params{
		Seed: seed,
		DT:   float32(cfg.Physics.DT),

		LiveEpsilon: float32(cfg.Kernel.LiveEpsilon),
		EarlyExit:   cfg.Kernel.EarlyExit,

		RMin: float32(g.RadiusMin), RMax: float32(g.RadiusMax),
		MuMin: float32(g.MuMin), MuMax: float32(g.MuMax),
		SigmaMin: float32(g.SigmaMin), SigmaMax: float32(g.SigmaMax),
		AggMin: float32(g.AggMin), AggMax: float32(g.AggMax),
		MutMin: float32(g.MutMin), MutMax: float32(g.MutMax),

		PredationThreshold: float32(cfg.Velocity.PredationThreshold),
		PredationMass:      float32(cfg.Velocity.PredationMass),
		KPred:              float32(cfg.Velocity.KPred),

		PredationFactor: float32(met.PredationFactor),
		KComplexity:     float32(met.KComplexity),
		KRadius:         float32(met.KRadius),
		KAgg:            float32(met.KAgg),
		KInterference:   float32(met.KInterference),
		KBase:           float32(met.KBase),
		KPreyBonus:      float32(met.KPreyBonus),

		StarvationThreshold: float32(cfg.Starvation.Threshold),
		StarvationDecay:     float32(cfg.Starvation.Decay),

		AdvectionCap: float32(cfg.Advection.Cap),

		SegregationEpsilon:    float32(gen.SegregationEpsilon),
		MutationMultiplier:    float32(gen.MutationMultiplier),
		MutationLiveThreshold: float32(gen.MutationLiveThreshold),
		GeneScale: [4]float32{
			float32(gen.RadiusScale),
			float32(gen.MuScale),
			float32(gen.SigmaScale),
			float32(gen.AggScale),
		},
		MutStep:   float32(gen.MutStep),
		MutMargin: float32(gen.MutMargin),

		Diffusion:   float32(cfg.Resource.Diffusion),
		Feed:        float32(cfg.Resource.Feed),
		Consumption: float32(cfg.Resource.Consumption),

		NormalizeEnabled: cfg.Normalization.Enabled,
		TargetMass:       cfg.Derived.TargetMass,
		Damping:          cfg.Normalization.Damping,
	}
}

// ClampGenome clamps every gene into its bounds.
func (p *Params) ClampGenome(g components.GenomeA) components.GenomeA {
	return components.GenomeA{
		R:     clampFloat(g.R, p.RMin, p.RMax),
		Mu:    clampFloat(g.Mu, p.MuMin, p.MuMax),
		Sigma: clampFloat(g.Sigma, p.SigmaMin, p.SigmaMax),
		Agg:   clampFloat(g.Agg, p.AggMin, p.AggMax),
	}
}
