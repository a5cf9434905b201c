package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/evolenia/telemetry"
)

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	g, err := NewGameWithConfig(testConfig(32, 32, 2), opts)
	if err != nil {
		t.Fatalf("NewGameWithConfig: %v", err)
	}
	return g
}

func TestGameHeadlessWritesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	g := newTestGame(t, Options{Seed: 1, OutputDir: dir, DiagInterval: 5, StepsPerUpdate: 3, Headless: true})

	var records []telemetry.MetricsRecord
	g.SetStatsCallback(func(r telemetry.MetricsRecord) { records = append(records, r) })

	if err := g.RunHeadless(context.Background(), 20, 0); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if g.Frame() != 20 {
		t.Errorf("Frame = %d, want 20", g.Frame())
	}
	g.Unload()

	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	for i, r := range records {
		if want := uint32(5 * (i + 1)); r.Frame != want {
			t.Errorf("record %d at frame %d, want %d", i, r.Frame, want)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "metrics.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("metrics.csv has %d lines, want header + 4", len(lines))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestGameRunHeadlessCancelled(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1})
	defer g.Unload()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.RunHeadless(ctx, 100, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunHeadless error = %v, want context.Canceled", err)
	}
	if g.Frame() != 0 {
		t.Errorf("Frame = %d after cancelled run, want 0", g.Frame())
	}
}

func TestGamePauseAndSpeed(t *testing.T) {
	g := newTestGame(t, Options{Seed: 2, StepsPerUpdate: 2})
	defer g.Unload()

	g.Update()
	if g.Frame() != 2 {
		t.Fatalf("Frame = %d after Update, want 2", g.Frame())
	}

	g.TogglePause()
	g.Update()
	if g.Frame() != 2 {
		t.Errorf("paused Update advanced to frame %d", g.Frame())
	}
	g.Step()
	if g.Frame() != 3 {
		t.Errorf("Step while paused: frame %d, want 3", g.Frame())
	}
	g.UpdateHeadless()
	if g.Frame() != 5 {
		t.Errorf("UpdateHeadless while paused: frame %d, want 5", g.Frame())
	}

	g.SetStepsPerUpdate(0)
	if g.StepsPerUpdate() != 1 {
		t.Errorf("StepsPerUpdate = %d, want clamp to 1", g.StepsPerUpdate())
	}
	g.SetStepsPerUpdate(1000)
	if g.StepsPerUpdate() != maxStepsPerUpdate {
		t.Errorf("StepsPerUpdate = %d, want clamp to %d", g.StepsPerUpdate(), maxStepsPerUpdate)
	}
}

func TestGameSnapshotResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.snap")

	a := newTestGame(t, Options{Seed: 4})
	defer a.Unload()
	for i := 0; i < 7; i++ {
		a.Step()
	}
	if err := a.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	b := newTestGame(t, Options{Seed: 5, LoadPath: path})
	defer b.Unload()
	if b.Frame() != 7 || b.Sim().Seed() != 4 {
		t.Fatalf("resumed at frame %d seed %d, want 7 and 4", b.Frame(), b.Sim().Seed())
	}

	a.Step()
	b.Step()
	sameState(t, a.Sim(), b.Sim())
}

func TestGameLoadMissingSnapshot(t *testing.T) {
	_, err := NewGameWithConfig(testConfig(16, 16, 1), Options{LoadPath: filepath.Join(t.TempDir(), "missing.snap")})
	if err == nil {
		t.Error("NewGameWithConfig succeeded with a missing snapshot")
	}
}

func TestGameSaveSnapshotToDir(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, Options{Seed: 3, SnapshotDir: dir})
	defer g.Unload()
	g.Step()

	path, err := g.SaveSnapshotToDir()
	if err != nil {
		t.Fatalf("SaveSnapshotToDir: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("snapshot written to %s, want inside %s", path, dir)
	}
	if _, err := telemetry.LoadSnapshot(path); err != nil {
		t.Errorf("LoadSnapshot(%s): %v", path, err)
	}
}

func TestGameReseedClearsLatest(t *testing.T) {
	g := newTestGame(t, Options{Seed: 6, DiagInterval: 1})
	defer g.Unload()

	g.Step()
	if _, frame, ok := g.Latest(); !ok || frame != 1 {
		t.Fatalf("Latest = frame %d ok %v, want 1 true", frame, ok)
	}
	g.Reseed(7)
	if _, _, ok := g.Latest(); ok {
		t.Error("Latest still set after Reseed")
	}
	if g.Frame() != 0 {
		t.Errorf("Frame = %d after Reseed, want 0", g.Frame())
	}
}
