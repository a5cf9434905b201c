package game

import (
	"context"
	"log/slog"
	"time"
)

// progressLogger reports headless throughput at a fixed frame interval.
type progressLogger struct {
	total    int
	interval int

	start     time.Time
	lastTime  time.Time
	lastFrame int
}

func newProgressLogger(total, interval int) *progressLogger {
	now := time.Now()
	return &progressLogger{
		total:    total,
		interval: interval,
		start:    now,
		lastTime: now,
	}
}

// maybeLog logs a progress line when done has crossed the next interval.
func (p *progressLogger) maybeLog(done int) {
	if p.interval <= 0 || done-p.lastFrame < p.interval {
		return
	}
	now := time.Now()
	elapsed := now.Sub(p.start).Seconds()
	window := now.Sub(p.lastTime).Seconds()

	var fps, windowFPS, etaMin float64
	if elapsed > 0 {
		fps = float64(done) / elapsed
	}
	if window > 0 {
		windowFPS = float64(done-p.lastFrame) / window
	}
	if fps > 0 && p.total > done {
		etaMin = float64(p.total-done) / fps / 60
	}

	slog.Info("headless progress",
		"done", done,
		"total", p.total,
		"fps", fps,
		"window_fps", windowFPS,
		"eta_min", etaMin,
	)
	p.lastTime = now
	p.lastFrame = done
}

// RunHeadless advances frames ticks, logging progress every
// progressInterval ticks. It stops early when ctx is cancelled.
func (g *Game) RunHeadless(ctx context.Context, frames, progressInterval int) error {
	slog.Info("starting headless simulation",
		"seed", g.sim.Seed(),
		"frames", frames,
		"steps_per_update", g.stepsPerUpdate,
		"workers", g.sim.pool.numWorkers,
	)

	progress := newProgressLogger(frames, progressInterval)
	start := time.Now()
	for done := 0; done < frames; {
		if err := ctx.Err(); err != nil {
			slog.Warn("headless run interrupted", "done", done, "frame", g.Frame())
			return err
		}
		n := min(g.stepsPerUpdate, frames-done)
		for i := 0; i < n; i++ {
			g.Step()
		}
		done += n
		progress.maybeLog(done)
	}

	elapsed := time.Since(start)
	attrs := []any{
		"frame", g.Frame(),
		"elapsed", elapsed.Round(time.Millisecond).String(),
	}
	if elapsed > 0 {
		attrs = append(attrs, "fps", float64(frames)/elapsed.Seconds())
	}
	slog.Info("headless run complete", attrs...)
	return nil
}
