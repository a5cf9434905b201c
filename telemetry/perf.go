package telemetry

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stage is one timed section of a tick, in pipeline order.
type Stage uint8

const (
	StageVelocity Stage = iota
	StageEvolution
	StageResource
	StageNormalizeSum
	StageNormalizeApply
	StageTelemetry
	NumStages
)

var stageNames = [NumStages]string{
	"velocity", "evolution", "resource", "normalize_sum", "normalize_apply", "telemetry",
}

func (s Stage) String() string {
	if s < NumStages {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// tickRecord is one entry of the window.
type tickRecord struct {
	total  time.Duration
	stages [NumStages]time.Duration

	// Pre-normalization mass over target, 0 when not reported.
	massRatio  float64
	correction float64
}

// PerfCollector keeps the last N ticks in a ring. Stages are timed back
// to back: beginning one closes the stage before it, and EndTick closes
// the last.
type PerfCollector struct {
	ring  []tickRecord
	next  int
	count int

	cur     tickRecord
	start   time.Time
	mark    time.Time
	stage   Stage
	running bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector keeps a window of the last window ticks (60 if < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickRecord, window)}
}

// StartTick opens a new record.
func (p *PerfCollector) StartTick() {
	p.cur = tickRecord{correction: 1}
	p.start = time.Now()
	p.running = false
}

// Begin closes the running stage, if any, and starts timing s.
func (p *PerfCollector) Begin(s Stage) {
	now := time.Now()
	p.closeStage(now)
	p.stage, p.mark, p.running = s, now, true
}

func (p *PerfCollector) closeStage(now time.Time) {
	if p.running {
		p.cur.stages[p.stage] += now.Sub(p.mark)
	}
}

// Normalized records what the sum pass measured and the factor the
// apply pass used (1 when it was skipped).
func (p *PerfCollector) Normalized(total, target float64, correction float32) {
	if target > 0 {
		p.cur.massRatio = total / target
	}
	p.cur.correction = float64(correction)
}

// EndTick closes the record and pushes it into the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closeStage(now)
	p.running = false
	p.cur.total = now.Sub(p.start)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// RecordFrame marks a rendered frame. Only the viewer calls it.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the ticks in the window.
type PerfStats struct {
	Ticks int

	TickMean   time.Duration
	TickStdDev time.Duration
	TickMin    time.Duration
	TickMax    time.Duration

	// Mean wall time per stage and its percentage of the mean tick
	StageMean  [NumStages]time.Duration
	StageShare [NumStages]float64

	TicksPerSecond float64

	// Normalization drift. MassRatio is the mean pre-normalization mass
	// over target; CorrectionMaxDev the largest |factor - 1|.
	MassRatio        float64
	CorrectionMean   float64
	CorrectionMaxDev float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes the window summary.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.count, FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	window := p.ring[:p.count]
	totals := make([]float64, len(window))
	corrections := make([]float64, len(window))
	ratios := make([]float64, 0, len(window))
	var stageSum [NumStages]float64
	for i, t := range window {
		totals[i] = float64(t.total)
		corrections[i] = t.correction
		if t.massRatio > 0 {
			ratios = append(ratios, t.massRatio)
		}
		for st, d := range t.stages {
			stageSum[st] += float64(d)
		}
	}

	mean, std := stat.PopMeanStdDev(totals, nil)
	s.TickMean = time.Duration(mean)
	s.TickStdDev = time.Duration(std)
	s.TickMin = time.Duration(floats.Min(totals))
	s.TickMax = time.Duration(floats.Max(totals))
	if mean > 0 {
		s.TicksPerSecond = float64(time.Second) / mean
	}

	n := float64(len(window))
	for st, sum := range stageSum {
		s.StageMean[st] = time.Duration(sum / n)
		if mean > 0 {
			s.StageShare[st] = sum / n / mean * 100
		}
	}

	s.CorrectionMean = stat.Mean(corrections, nil)
	for _, c := range corrections {
		s.CorrectionMaxDev = math.Max(s.CorrectionMaxDev, math.Abs(c-1))
	}
	if len(ratios) > 0 {
		s.MassRatio = stat.Mean(ratios, nil)
	}
	return s
}

// LogStats logs the summary, skipping stages under 0.1% of the tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"ticks", s.Ticks,
		"tick_mean_us", s.TickMean.Microseconds(),
		"tick_std_us", s.TickStdDev.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"mass_ratio", s.MassRatio,
		"correction_max_dev", s.CorrectionMaxDev,
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for st, pct := range s.StageShare {
		if pct > 0.1 {
			attrs = append(attrs, Stage(st).String()+"_pct", math.Round(pct*10)/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd         uint32  `csv:"window_end"`
	Ticks             int     `csv:"ticks"`
	TickMeanUS        int64   `csv:"tick_mean_us"`
	TickStdUS         int64   `csv:"tick_std_us"`
	TickMinUS         int64   `csv:"tick_min_us"`
	TickMaxUS         int64   `csv:"tick_max_us"`
	TicksPerSec       float64 `csv:"ticks_per_sec"`
	FPS               float64 `csv:"fps"`
	VelocityPct       float64 `csv:"velocity_pct"`
	EvolutionPct      float64 `csv:"evolution_pct"`
	ResourcePct       float64 `csv:"resource_pct"`
	NormalizeSumPct   float64 `csv:"normalize_sum_pct"`
	NormalizeApplyPct float64 `csv:"normalize_apply_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
	MassRatio         float64 `csv:"mass_ratio"`
	CorrectionMean    float64 `csv:"correction_mean"`
	CorrectionMaxDev  float64 `csv:"correction_max_dev"`
}

// ToCSV flattens the summary for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd uint32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:         windowEnd,
		Ticks:             s.Ticks,
		TickMeanUS:        s.TickMean.Microseconds(),
		TickStdUS:         s.TickStdDev.Microseconds(),
		TickMinUS:         s.TickMin.Microseconds(),
		TickMaxUS:         s.TickMax.Microseconds(),
		TicksPerSec:       s.TicksPerSecond,
		FPS:               s.FPS,
		VelocityPct:       s.StageShare[StageVelocity],
		EvolutionPct:      s.StageShare[StageEvolution],
		ResourcePct:       s.StageShare[StageResource],
		NormalizeSumPct:   s.StageShare[StageNormalizeSum],
		NormalizeApplyPct: s.StageShare[StageNormalizeApply],
		TelemetryPct:      s.StageShare[StageTelemetry],
		MassRatio:         s.MassRatio,
		CorrectionMean:    s.CorrectionMean,
		CorrectionMaxDev:  s.CorrectionMaxDev,
	}
}
