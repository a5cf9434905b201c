package telemetry

import (
	"log/slog"
)

// MetricsRecord is one row of metrics.csv.
type MetricsRecord struct {
	Frame      uint32  `csv:"frame"`
	SimTime    float64 `csv:"sim_time"`
	TotalMass  float64 `csv:"total_mass"`
	TargetMass float64 `csv:"target_mass"`
	MassPct    float64 `csv:"mass_pct"`

	LiveCells   int     `csv:"live"`
	LiveFrac    float64 `csv:"live_frac"`
	MaxMass     float64 `csv:"max_mass"`
	AvgMassLive float64 `csv:"avg_mass_live"`
	MassStdDev  float64 `csv:"mass_stddev"`

	TotalEnergy   float64 `csv:"total_energy"`
	AvgEnergy     float64 `csv:"avg_energy"`
	MinEnergyLive float64 `csv:"min_energy_live"`
	EnergyP10     float64 `csv:"energy_p10"`
	EnergyP50     float64 `csv:"energy_p50"`
	EnergyP90     float64 `csv:"energy_p90"`
	StarvingFrac  float64 `csv:"starving_frac"`

	AvgResource  float64 `csv:"avg_resource"`
	MinResource  float64 `csv:"min_resource"`
	DepletedFrac float64 `csv:"depleted_frac"`

	Entropy      float64 `csv:"entropy_bits"`
	Species      int     `csv:"species"`
	AvgR         float64 `csv:"avg_r"`
	AvgMu        float64 `csv:"avg_mu"`
	AvgSigma     float64 `csv:"avg_sigma"`
	AvgAgg       float64 `csv:"avg_agg"`
	AvgMut       float64 `csv:"avg_mut"`
	PredatorFrac float64 `csv:"predator_frac"`
	PreyFrac     float64 `csv:"prey_frac"`

	// Change since the previous sample
	DeltaMass    float64 `csv:"d_mass"`
	DeltaLive    int     `csv:"d_live"`
	DeltaMu      float64 `csv:"d_mu"`
	DeltaAgg     float64 `csv:"d_agg"`
	DeltaEntropy float64 `csv:"d_entropy"`
}

// NewMetricsRecord flattens d into a CSV row. prev may be nil for the first
// sample, in which case all deltas are zero.
func NewMetricsRecord(frame uint32, simTime, targetMass float64, d Diagnostics, prev *Diagnostics) MetricsRecord {
	r := MetricsRecord{
		Frame:         frame,
		SimTime:       simTime,
		TotalMass:     d.TotalMass,
		TargetMass:    targetMass,
		LiveCells:     d.LiveCells,
		LiveFrac:      d.LiveFrac,
		MaxMass:       d.MaxMass,
		AvgMassLive:   d.AvgMassLive,
		MassStdDev:    d.MassStdDev,
		TotalEnergy:   d.TotalEnergy,
		AvgEnergy:     d.AvgEnergy,
		MinEnergyLive: d.MinEnergyLive,
		EnergyP10:     d.EnergyP10,
		EnergyP50:     d.EnergyP50,
		EnergyP90:     d.EnergyP90,
		StarvingFrac:  d.StarvingFrac,
		AvgResource:   d.AvgResource,
		MinResource:   d.MinResource,
		DepletedFrac:  d.DepletedFrac,
		Entropy:       d.Entropy,
		Species:       d.Species,
		AvgR:          d.Genome.AvgR,
		AvgMu:         d.Genome.AvgMu,
		AvgSigma:      d.Genome.AvgSigma,
		AvgAgg:        d.Genome.AvgAgg,
		AvgMut:        d.Genome.AvgMut,
		PredatorFrac:  d.Genome.PredatorFrac,
		PreyFrac:      d.Genome.PreyFrac,
	}
	if targetMass > 0 {
		r.MassPct = d.TotalMass / targetMass * 100
	}
	if prev != nil {
		r.DeltaMass = d.TotalMass - prev.TotalMass
		r.DeltaLive = d.LiveCells - prev.LiveCells
		r.DeltaMu = d.Genome.AvgMu - prev.Genome.AvgMu
		r.DeltaAgg = d.Genome.AvgAgg - prev.Genome.AvgAgg
		r.DeltaEntropy = d.Entropy - prev.Entropy
	}
	return r
}

// LogValue implements slog.LogValuer for structured logging.
func (r MetricsRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", int(r.Frame)),
		slog.Float64("total_mass", r.TotalMass),
		slog.Float64("mass_pct", r.MassPct),
		slog.Int("live", r.LiveCells),
		slog.Float64("entropy", r.Entropy),
		slog.Int("species", r.Species),
	)
}

// LogStats logs the record as grouped population, energy, resource and
// genetics lines.
func (r MetricsRecord) LogStats() {
	slog.Info("trends",
		"frame", r.Frame,
		"d_mass", r.DeltaMass,
		"d_live", r.DeltaLive,
		"d_mu", r.DeltaMu,
		"d_agg", r.DeltaAgg,
		"d_entropy", r.DeltaEntropy,
	)
	slog.Info("population",
		"frame", r.Frame,
		"mass", r.TotalMass,
		"target", r.TargetMass,
		"mass_pct", r.MassPct,
		"live", r.LiveCells,
		"live_frac", r.LiveFrac,
		"max_mass", r.MaxMass,
		"avg_mass_live", r.AvgMassLive,
		"mass_stddev", r.MassStdDev,
	)
	slog.Info("energy",
		"frame", r.Frame,
		"avg", r.AvgEnergy,
		"min_live", r.MinEnergyLive,
		"p10", r.EnergyP10,
		"p50", r.EnergyP50,
		"p90", r.EnergyP90,
		"starving_frac", r.StarvingFrac,
	)
	slog.Info("resources",
		"frame", r.Frame,
		"avg", r.AvgResource,
		"min", r.MinResource,
		"depleted_frac", r.DepletedFrac,
	)
	slog.Info("genetics",
		"frame", r.Frame,
		"entropy_bits", r.Entropy,
		"species", r.Species,
		"predator_frac", r.PredatorFrac,
		"prey_frac", r.PreyFrac,
		"r", r.AvgR,
		"mu", r.AvgMu,
		"sigma", r.AvgSigma,
		"agg", r.AvgAgg,
		"mut", r.AvgMut,
	)
}
