package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/evolenia/config"
	"github.com/pthm-cable/evolenia/game"
	"github.com/pthm-cable/evolenia/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	headlessThenGUI := flag.Bool("headless-then-gui", false, "Run -frames headless, then open the viewer on the result")
	frames := flag.Int("frames", 0, "Frames to run headless (0 = use config)")
	loadPath := flag.String("load", "", "Snapshot to resume from")
	savePath := flag.String("save", "", "Write a snapshot here after the headless run")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	logStats := flag.Bool("log-stats", false, "Output diagnostics via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	diagInterval := flag.Int("diag-interval", 0, "Frames between diagnostics samples (0 = use config)")
	progressInterval := flag.Int("progress-interval", 0, "Frames between headless progress lines (0 = use config)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.World.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	headlessFrames := *frames
	if headlessFrames <= 0 {
		headlessFrames = cfg.Headless.Frames
	}
	progress := *progressInterval
	if progress <= 0 {
		progress = cfg.Headless.ProgressInterval
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		DiagInterval:   *diagInterval,
		LoadPath:       *loadPath,
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	if *headless || *headlessThenGUI {
		err := runHeadless(g, headlessFrames, progress, *savePath)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			slog.Error("headless run failed", "error", err)
			g.Unload()
			os.Exit(1)
		}
		if !*headlessThenGUI {
			return
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "EvoLenia")
	defer rl.CloseWindow()
	rl.SetExitKey(0) // Escape deselects instead of quitting
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	app := viewer.New(g)
	defer app.Unload()

	for !rl.WindowShouldClose() {
		app.Update()
		app.Draw()
	}
}

// runHeadless advances the game until frames are done or the process is
// interrupted, then writes the final state to savePath if set. An
// interrupted run still saves and returns context.Canceled.
func runHeadless(g *game.Game, frames, progressInterval int, savePath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := g.RunHeadless(ctx, frames, progressInterval)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if savePath != "" {
		if serr := g.SaveSnapshot(savePath); serr != nil {
			return serr
		}
	}
	return err
}
