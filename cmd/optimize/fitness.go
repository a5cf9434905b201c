package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/evolenia/config"
	"github.com/pthm-cable/evolenia/game"
	"github.com/pthm-cable/evolenia/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxFrames  int
	interval   int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	last        runScore // averaged over seeds for the latest Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. interval is the number of
// frames between diagnostics samples.
func NewFitnessEvaluator(params *ParamVector, maxFrames, interval int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		interval:    max(interval, 1),
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the seed-averaged score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() runScore {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// A world counts as collapsed once the live fraction stays below
// minLiveFrac for collapseGraceSamples consecutive samples.
const (
	minLiveFrac          = 0.005
	collapseGraceSamples = 5
	warmupSamples        = 3

	// Coexistence needs both roles above this share of live mass.
	minRoleFrac = 0.05

	weightEntropy  = 0.5
	weightSpecies  = 0.5
	maxEntropyBits = 8.0
)

// runScore holds the per-seed components of fitness, each in [0,1].
type runScore struct {
	Survival float64
	Entropy  float64
	Species  float64
}

// fitness folds the components into a scalar (lower = better).
func (s runScore) fitness() float64 {
	return -(s.Survival + weightEntropy*s.Entropy + weightSpecies*s.Species)
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	scores := make([]runScore, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	survival := make([]float64, len(scores))
	entropy := make([]float64, len(scores))
	species := make([]float64, len(scores))
	for i, s := range scores {
		survival[i] = s.Survival
		entropy[i] = s.Entropy
		species[i] = s.Species
	}
	avg := runScore{
		Survival: stat.Mean(survival, nil),
		Entropy:  stat.Mean(entropy, nil),
		Species:  stat.Mean(species, nil),
	}
	fitness := avg.fitness()

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, fitness)
	fe.last = avg
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run and scores it. The run
// stops early when the world collapses.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runScore {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	// Seeds run concurrently, so each world gets one worker.
	cfg.Parallel.Workers = 1

	g, err := game.NewGameWithConfig(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 1,
		DiagInterval:   fe.interval,
	})
	if err != nil {
		slog.Error("failed to create game", "seed", seed, "error", err)
		return runScore{}
	}
	defer g.Unload()

	var samples []telemetry.MetricsRecord
	belowFor := 0
	collapsed := false
	g.SetStatsCallback(func(r telemetry.MetricsRecord) {
		samples = append(samples, r)
		if r.LiveFrac < minLiveFrac {
			belowFor++
		} else {
			belowFor = 0
		}
		collapsed = len(samples) > warmupSamples && belowFor >= collapseGraceSamples
	})

	for int(g.Frame()) < fe.maxFrames && !collapsed {
		g.UpdateHeadless()
	}

	return scoreRun(samples, int(g.Frame()), fe.maxFrames)
}

// scoreRun converts the sample series of one run into score components.
func scoreRun(samples []telemetry.MetricsRecord, frames, maxFrames int) runScore {
	var s runScore
	if maxFrames > 0 {
		s.Survival = math.Min(float64(frames)/float64(maxFrames), 1)
	}
	if len(samples) <= warmupSamples {
		return s
	}

	var entropy, species []float64
	for _, r := range samples[warmupSamples:] {
		if r.LiveFrac < minLiveFrac {
			continue
		}
		entropy = append(entropy, math.Min(r.Entropy/maxEntropyBits, 1))
		sp := math.Min(float64(r.Species)/telemetry.MaxSpeciesTracked, 1)
		// Species only count while predators and prey coexist.
		if r.PredatorFrac < minRoleFrac || r.PreyFrac < minRoleFrac {
			sp = 0
		}
		species = append(species, sp)
	}
	if len(entropy) == 0 {
		return s
	}
	s.Entropy = stat.Mean(entropy, nil)
	s.Species = stat.Mean(species, nil)
	return s
}
