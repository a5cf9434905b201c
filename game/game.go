package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/evolenia/config"
	"github.com/pthm-cable/evolenia/telemetry"
)

// maxStepsPerUpdate bounds the speed control.
const maxStepsPerUpdate = 64

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool   // log every diagnostics sample via slog
	SnapshotDir    string // directory for event snapshots (empty = disabled)
	OutputDir      string // directory for CSV output (empty = disabled)
	Headless       bool
	StepsPerUpdate int    // ticks per Update call (0 = config)
	DiagInterval   int    // frames between diagnostics samples (0 = config)
	LoadPath       string // snapshot to resume from
}

// Game wires the simulation to its telemetry. It has no window; the
// viewer drives it for graphical runs.
type Game struct {
	cfg *config.Config
	sim *Simulation

	paused         bool
	stepsPerUpdate int

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	events        *telemetry.EventDetector
	outputManager *telemetry.OutputManager
	snapshotDir   string
	logStats      bool

	latest        telemetry.Diagnostics
	latestFrame   uint32
	hasLatest     bool
	statsCallback func(telemetry.MetricsRecord)
}

// NewGameWithOptions builds a game from the global config.
func NewGameWithOptions(opts Options) (*Game, error) {
	return NewGameWithConfig(config.Cfg(), opts)
}

// NewGameWithConfig builds a game from an explicit config.
func NewGameWithConfig(cfg *config.Config, opts Options) (*Game, error) {
	steps := opts.StepsPerUpdate
	if steps <= 0 {
		steps = cfg.Physics.StepsPerUpdate
	}
	interval := opts.DiagInterval
	if interval <= 0 {
		interval = cfg.Telemetry.DiagInterval
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	g := &Game{
		cfg:            cfg,
		sim:            NewSimulation(cfg, opts.Seed),
		stepsPerUpdate: min(max(steps, 1), maxStepsPerUpdate),
		collector:      telemetry.NewCollector(interval, cfg.Physics.DT, cfg.Derived.TargetMass),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		events:         telemetry.NewEventDetector(cfg.Telemetry.EventHistory),
		outputManager:  om,
		snapshotDir:    opts.SnapshotDir,
		logStats:       opts.LogStats,
	}
	g.sim.SetPerf(g.perfCollector)

	if opts.LoadPath != "" {
		if err := g.LoadSnapshot(opts.LoadPath); err != nil {
			g.Unload()
			return nil, err
		}
	}

	slog.Info("world seeded",
		"seed", g.sim.Seed(),
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"founders", g.sim.Founders(),
		"frame", g.sim.Frame(),
		"headless", opts.Headless,
	)
	return g, nil
}

// SetStatsCallback registers a function called with every metrics record.
func (g *Game) SetStatsCallback(fn func(telemetry.MetricsRecord)) {
	g.statsCallback = fn
}

// Update runs StepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// UpdateHeadless runs StepsPerUpdate ticks regardless of the pause flag.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// Step runs exactly one tick followed by any due telemetry.
func (g *Game) Step() {
	g.perfCollector.StartTick()
	g.sim.Step()
	g.perfCollector.Begin(telemetry.StageTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// Reseed rebuilds the world from a new seed and resets telemetry history.
func (g *Game) Reseed(seed int64) {
	g.sim.Reseed(seed)
	g.resetTelemetry()
	slog.Info("world reseeded", "seed", seed, "founders", g.sim.Founders())
}

// SaveSnapshot writes the current state to path.
func (g *Game) SaveSnapshot(path string) error {
	if err := telemetry.SaveSnapshot(path, g.sim.Snapshot()); err != nil {
		return err
	}
	slog.Info("snapshot saved", "path", path, "frame", g.sim.Frame())
	return nil
}

// SaveSnapshotToDir writes the current state into the snapshot directory,
// falling back to the working directory, and returns the path.
func (g *Game) SaveSnapshotToDir() (string, error) {
	dir := g.snapshotDir
	if dir == "" {
		dir = "."
	}
	path, err := telemetry.SaveSnapshotToDir(dir, g.sim.Snapshot())
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "frame", g.sim.Frame())
	return path, nil
}

// LoadSnapshot replaces the world with the snapshot at path.
func (g *Game) LoadSnapshot(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := g.sim.LoadSnapshot(snap); err != nil {
		return fmt.Errorf("applying %s: %w", path, err)
	}
	g.resetTelemetry()
	slog.Info("snapshot loaded", "path", path, "frame", snap.Frame, "seed", snap.Seed)
	return nil
}

func (g *Game) resetTelemetry() {
	g.collector = telemetry.NewCollector(int(g.collector.Interval()), g.cfg.Physics.DT, g.sim.TargetMass())
	g.events = telemetry.NewEventDetector(g.cfg.Telemetry.EventHistory)
	g.hasLatest = false
}

// Unload stops the workers and closes output files.
func (g *Game) Unload() {
	g.sim.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Sim returns the underlying simulation.
func (g *Game) Sim() *Simulation { return g.sim }

// Config returns the config the game was built from.
func (g *Game) Config() *config.Config { return g.cfg }

// Frame returns the number of completed ticks.
func (g *Game) Frame() uint32 { return g.sim.Frame() }

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool { return g.paused }

// TogglePause flips the pause flag.
func (g *Game) TogglePause() { g.paused = !g.paused }

// StepsPerUpdate returns the ticks run per Update.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate sets the ticks per Update, clamped to a sane range.
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = min(max(n, 1), maxStepsPerUpdate)
}

// Perf returns the stage timing collector.
func (g *Game) Perf() *telemetry.PerfCollector { return g.perfCollector }

// Latest returns the most recent diagnostics sample and its frame, if any.
func (g *Game) Latest() (telemetry.Diagnostics, uint32, bool) {
	return g.latest, g.latestFrame, g.hasLatest
}
