// Package main tunes EvoLenia parameters with CMA-ES, searching for worlds
// that stay alive and keep predators, prey and genetic diversity around.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/evolenia/config"
)

// EvalRecord is one row of optimize_log.csv.
type EvalRecord struct {
	Eval     int     `csv:"eval"`
	Fitness  float64 `csv:"fitness"`
	Survival float64 `csv:"survival"`
	Entropy  float64 `csv:"entropy"`
	Species  float64 `csv:"species"`

	MutationMultiplier  float64 `csv:"mutation_multiplier"`
	PredationFactor     float64 `csv:"predation_factor"`
	KPred               float64 `csv:"k_pred"`
	StarvationThreshold float64 `csv:"starvation_threshold"`
	StarvationDecay     float64 `csv:"starvation_decay"`
	Feed                float64 `csv:"feed"`
	Consumption         float64 `csv:"consumption"`
	Diffusion           float64 `csv:"diffusion"`
	Damping             float64 `csv:"damping"`
}

func newEvalRecord(eval int, fitness float64, s runScore, v []float64) EvalRecord {
	return EvalRecord{
		Eval:                eval,
		Fitness:             fitness,
		Survival:            s.Survival,
		Entropy:             s.Entropy,
		Species:             s.Species,
		MutationMultiplier:  v[0],
		PredationFactor:     v[1],
		KPred:               v[2],
		StarvationThreshold: v[3],
		StarvationDecay:     v[4],
		Feed:                v[5],
		Consumption:         v[6],
		Diffusion:           v[7],
		Damping:             v[8],
	}
}

// formatDuration formats a duration as 1h02m03s, or 2m03s for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxFrames := flag.Int("max-frames", 20000, "Frames per run (cap)")
	interval := flag.Int("interval", 200, "Frames between diagnostics samples")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(*configPath, *outputDir, *maxFrames, *interval, *seeds, *maxEvals, *population); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, maxFrames, interval, seeds, maxEvals, population int) error {
	if outputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, maxFrames, interval, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0,
	}

	logPath := filepath.Join(outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	start := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append(bestParams[:0], raw...)
			}

			rows := []EvalRecord{newEvalRecord(evalCount, fitness, evaluator.LastScore(), raw)}
			var werr error
			if evalCount == 1 {
				werr = gocsv.Marshal(rows, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(rows, logFile)
			}
			if werr != nil {
				slog.Error("failed to write log row", "eval", evalCount, "error", werr)
			}

			elapsed := time.Since(start)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			score := evaluator.LastScore()
			fmt.Printf("Eval %d/%d: survival=%.2f entropy=%.2f species=%.2f fitness=%.3f (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, maxEvals, score.Survival, score.Entropy, score.Species, fitness, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, maxEvals)
	fmt.Printf("Seeds per evaluation: %d, frames per run: %d\n", seeds, maxFrames)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(start)))
	fmt.Printf("Best fitness: %.3f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	return nil
}
