package main

import (
	"github.com/pthm-cable/evolenia/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Defaults are read from base so a tuned config can be refined further.
func NewParamVector(base *config.Config) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "mutation_multiplier", Path: "genetics.mutation_multiplier", Min: 0.1, Max: 3.0},
			{Name: "predation_factor", Path: "metabolism.predation_factor", Min: 0.0, Max: 2.0},
			{Name: "k_pred", Path: "velocity.k_pred", Min: 0.0, Max: 2.0},
			{Name: "starvation_threshold", Path: "starvation.threshold", Min: 0.01, Max: 0.3},
			{Name: "starvation_decay", Path: "starvation.decay", Min: 0.0, Max: 0.5},
			{Name: "feed", Path: "resource.feed", Min: 0.0005, Max: 0.05},
			{Name: "consumption", Path: "resource.consumption", Min: 0.001, Max: 0.2},
			{Name: "diffusion", Path: "resource.diffusion", Min: 0.0, Max: 0.25},
			{Name: "damping", Path: "normalization.damping", Min: 0.0, Max: 1.0},
		},
	}
	defaults := pv.ExtractFromConfig(base)
	for i := range pv.Specs {
		pv.Specs[i].Default = defaults[i]
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	cfg.Genetics.MutationMultiplier = c[0]
	cfg.Metabolism.PredationFactor = c[1]
	cfg.Velocity.KPred = c[2]
	cfg.Starvation.Threshold = c[3]
	cfg.Starvation.Decay = c[4]
	cfg.Resource.Feed = c[5]
	cfg.Resource.Consumption = c[6]
	cfg.Resource.Diffusion = c[7]
	cfg.Normalization.Damping = c[8]

	cfg.Refresh()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Genetics.MutationMultiplier,
		cfg.Metabolism.PredationFactor,
		cfg.Velocity.KPred,
		cfg.Starvation.Threshold,
		cfg.Starvation.Decay,
		cfg.Resource.Feed,
		cfg.Resource.Consumption,
		cfg.Resource.Diffusion,
		cfg.Normalization.Damping,
	}
}
