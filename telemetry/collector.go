package telemetry

// Collector samples diagnostics at a fixed frame interval and remembers the
// previous sample so each record carries trend deltas.
type Collector struct {
	interval   uint32
	dt         float64
	targetMass float64

	lastFrame uint32
	sampled   bool
	prev      *Diagnostics
}

// NewCollector creates a collector sampling every interval frames.
// dt converts frames to simulation time.
func NewCollector(interval int, dt, targetMass float64) *Collector {
	if interval < 1 {
		interval = 1
	}
	return &Collector{
		interval:   uint32(interval),
		dt:         dt,
		targetMass: targetMass,
	}
}

// ShouldFlush reports whether frame is due for a sample.
func (c *Collector) ShouldFlush(frame uint32) bool {
	if !c.sampled {
		return frame >= c.interval
	}
	return frame-c.lastFrame >= c.interval
}

// Flush computes diagnostics for g at frame and returns both the raw
// diagnostics and the flattened record.
func (c *Collector) Flush(frame uint32, g Grid) (Diagnostics, MetricsRecord) {
	d := ComputeDiagnostics(g)
	rec := NewMetricsRecord(frame, float64(frame)*c.dt, c.targetMass, d, c.prev)
	c.prev = &d
	c.lastFrame = frame
	c.sampled = true
	return d, rec
}

// Previous returns the last sampled diagnostics, or nil before the first.
func (c *Collector) Previous() *Diagnostics {
	return c.prev
}

// SetTargetMass updates the mass target reported in records.
func (c *Collector) SetTargetMass(m float64) {
	c.targetMass = m
}

// Interval returns the sampling interval in frames.
func (c *Collector) Interval() uint32 {
	return c.interval
}
