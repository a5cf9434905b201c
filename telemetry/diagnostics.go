package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/evolenia/components"
)

// Thresholds used when classifying cells.
const (
	LiveMass         = 0.01 // cells above this count as alive
	SpeciesMass      = 0.05 // cells above this take part in species clustering
	StarvingEnergy   = 0.01
	DepletedResource = 0.1
	PredatorAgg      = 0.7
	PreyAgg          = 0.3

	EntropyBins       = 10
	SpeciesThreshold  = 0.15
	MaxSpeciesTracked = 20
)

// Grid is the committed world state diagnostics and snapshots read from.
type Grid interface {
	Width() int
	Height() int
	Mass() []float32
	Energy() []float32
	GenomeA() []components.GenomeA
	GenomeB() []float32
	Resource() []float32
}

// Diagnostics is a summary of one frame of the world.
type Diagnostics struct {
	// Population
	TotalMass   float64
	LiveCells   int
	LiveFrac    float64
	MaxMass     float64
	AvgMassLive float64
	MassStdDev  float64

	// Energy, over live cells
	TotalEnergy   float64
	AvgEnergy     float64
	MinEnergyLive float64
	EnergyP10     float64
	EnergyP50     float64
	EnergyP90     float64
	StarvingFrac  float64

	// Resources
	AvgResource  float64
	MinResource  float64
	DepletedFrac float64

	// Genetics
	Entropy float64 // bits
	Species int
	Genome  GenomeStats
}

// GenomeStats holds mass-weighted genome averages over live cells.
type GenomeStats struct {
	AvgR         float64
	AvgMu        float64
	AvgSigma     float64
	AvgAgg       float64
	AvgMut       float64
	PredatorFrac float64
	PreyFrac     float64
}

// ComputeDiagnostics summarises the committed state of g.
func ComputeDiagnostics(g Grid) Diagnostics {
	mass, energy, res := g.Mass(), g.Energy(), g.Resource()
	genome, mut := g.GenomeA(), g.GenomeB()
	n := len(mass)
	var d Diagnostics
	if n == 0 {
		return d
	}

	m64 := make([]float64, n)
	r64 := make([]float64, n)
	for i := range mass {
		m64[i] = float64(mass[i])
		r64[i] = float64(res[i])
	}

	d.TotalMass = floats.Sum(m64)
	d.MaxMass = floats.Max(m64)
	_, d.MassStdDev = stat.PopMeanStdDev(m64, nil)

	d.AvgResource = stat.Mean(r64, nil)
	d.MinResource = floats.Min(r64)
	depleted := 0
	for _, r := range r64 {
		if r < DepletedResource {
			depleted++
		}
	}
	d.DepletedFrac = float64(depleted) / float64(n)

	var liveEnergy []float64
	var liveMass float64
	starving := 0
	for i, m := range mass {
		e := float64(energy[i])
		d.TotalEnergy += e
		if m <= LiveMass {
			continue
		}
		liveMass += float64(m)
		liveEnergy = append(liveEnergy, e)
		if e <= StarvingEnergy {
			starving++
		}
	}

	d.LiveCells = len(liveEnergy)
	d.LiveFrac = float64(d.LiveCells) / float64(n)
	if d.LiveCells > 0 {
		d.AvgMassLive = liveMass / float64(d.LiveCells)
		d.AvgEnergy = stat.Mean(liveEnergy, nil)
		d.StarvingFrac = float64(starving) / float64(d.LiveCells)

		sort.Float64s(liveEnergy)
		d.MinEnergyLive = liveEnergy[0]
		d.EnergyP10 = stat.Quantile(0.10, stat.Empirical, liveEnergy, nil)
		d.EnergyP50 = stat.Quantile(0.50, stat.Empirical, liveEnergy, nil)
		d.EnergyP90 = stat.Quantile(0.90, stat.Empirical, liveEnergy, nil)
	}

	d.Entropy = GeneticEntropy(genome, mass, EntropyBins)
	d.Species = CountSpecies(genome, mass, MaxSpeciesTracked)
	d.Genome = ComputeGenomeStats(genome, mut, mass)
	return d
}

// GeneticEntropy returns the Shannon entropy in bits of the mass-weighted
// histogram of (r/16, mu, sigma/0.3) over live cells.
func GeneticEntropy(genome []components.GenomeA, mass []float32, bins int) float64 {
	hist := make(map[[3]int]float64)
	var total float64
	for i, m := range mass {
		if m < LiveMass {
			continue
		}
		g := genome[i]
		key := [3]int{
			bin(g.R/16, bins),
			bin(g.Mu, bins),
			bin(g.Sigma/0.3, bins),
		}
		hist[key] += float64(m)
		total += float64(m)
	}
	if total < 1e-6 {
		return 0
	}
	p := make([]float64, 0, len(hist))
	for _, w := range hist {
		p = append(p, w/total)
	}
	return stat.Entropy(p) / math.Ln2
}

func bin(v float32, bins int) int {
	b := int(v * float32(bins))
	if b < 0 {
		return 0
	}
	if b > bins-1 {
		return bins - 1
	}
	return b
}

// CountSpecies greedily clusters the genomes of cells heavier than
// SpeciesMass: a genome further than SpeciesThreshold from every known
// representative founds a new species. Counting stops at limit.
func CountSpecies(genome []components.GenomeA, mass []float32, limit int) int {
	var reps []components.GenomeA
	for i, m := range mass {
		if m <= SpeciesMass {
			continue
		}
		g := genome[i]
		unique := true
		for _, r := range reps {
			if g.Distance(r) < SpeciesThreshold {
				unique = false
				break
			}
		}
		if !unique {
			continue
		}
		reps = append(reps, g)
		if len(reps) >= limit {
			break
		}
	}
	return len(reps)
}

// ComputeGenomeStats returns mass-weighted genome averages over live cells.
func ComputeGenomeStats(genome []components.GenomeA, mut, mass []float32) GenomeStats {
	var r, mu, sigma, agg, rate, weights []float64
	var pred, prey float64
	for i, m := range mass {
		if m < LiveMass {
			continue
		}
		g := genome[i]
		r = append(r, float64(g.R))
		mu = append(mu, float64(g.Mu))
		sigma = append(sigma, float64(g.Sigma))
		agg = append(agg, float64(g.Agg))
		rate = append(rate, float64(mut[i]))
		weights = append(weights, float64(m))
		switch {
		case g.Agg > PredatorAgg:
			pred += float64(m)
		case g.Agg < PreyAgg:
			prey += float64(m)
		}
	}
	total := floats.Sum(weights)
	if total < 1e-6 {
		return GenomeStats{}
	}
	return GenomeStats{
		AvgR:         stat.Mean(r, weights),
		AvgMu:        stat.Mean(mu, weights),
		AvgSigma:     stat.Mean(sigma, weights),
		AvgAgg:       stat.Mean(agg, weights),
		AvgMut:       stat.Mean(rate, weights),
		PredatorFrac: pred / total,
		PreyFrac:     prey / total,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (d Diagnostics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("total_mass", d.TotalMass),
		slog.Int("live", d.LiveCells),
		slog.Float64("live_frac", d.LiveFrac),
		slog.Float64("max_mass", d.MaxMass),
		slog.Float64("avg_energy", d.AvgEnergy),
		slog.Float64("starving_frac", d.StarvingFrac),
		slog.Float64("avg_resource", d.AvgResource),
		slog.Float64("depleted_frac", d.DepletedFrac),
		slog.Float64("entropy", d.Entropy),
		slog.Int("species", d.Species),
		slog.Float64("predator_frac", d.Genome.PredatorFrac),
	)
}
