package game

import (
	"log/slog"

	"github.com/pthm-cable/evolenia/telemetry"
)

// flushTelemetry samples diagnostics when due and handles events.
func (g *Game) flushTelemetry() {
	frame := g.sim.Frame()
	if !g.collector.ShouldFlush(frame) {
		return
	}

	g.collector.SetTargetMass(g.sim.TargetMass())
	diag, rec := g.collector.Flush(frame, g.sim.Field())
	g.latest, g.latestFrame, g.hasLatest = diag, frame, true
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(rec)
	}

	if g.logStats {
		rec.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteMetrics(rec); err != nil {
			slog.Error("failed to write metrics", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, frame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, ev := range g.events.Check(frame, diag) {
		ev.LogEvent()

		if g.outputManager != nil {
			if err := g.outputManager.WriteEvent(ev); err != nil {
				slog.Error("failed to write event", "error", err)
			}
		}

		if g.snapshotDir != "" {
			g.saveEventSnapshot(ev)
		}
	}
}

// saveEventSnapshot writes a snapshot tagged with the event that triggered it.
func (g *Game) saveEventSnapshot(ev telemetry.Event) {
	snap := g.sim.Snapshot()
	snap.Event = &ev

	path, err := telemetry.SaveSnapshotToDir(g.snapshotDir, snap)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", snap.Frame, "event", ev.Type)
}
