package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/evolenia/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// All methods are safe on a nil manager
	if err := om.WriteMetrics(MetricsRecord{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteEvent(Event{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager reported a directory")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	g := randomGrid(5, 16, 16)
	c := NewCollector(10, 0.1, 100)
	for frame := uint32(10); frame <= 30; frame += 10 {
		_, rec := c.Flush(frame, g)
		if err := om.WriteMetrics(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteEvent(Event{Type: EventExtinction, Frame: 30, Description: "gone"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{TicksPerSecond: 60}, 30); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "metrics.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("metrics.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "frame,sim_time,total_mass") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "20,2,") {
		t.Errorf("second row = %q", lines[2])
	}

	events, _ := os.ReadFile(filepath.Join(dir, "events.csv"))
	if !strings.Contains(string(events), "extinction,30,gone") {
		t.Errorf("events.csv = %q", events)
	}
	for _, name := range []string{"perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector(100, 0.1, 50)
	if c.ShouldFlush(50) {
		t.Error("flush due before the first interval")
	}
	if !c.ShouldFlush(100) {
		t.Error("flush not due at the first interval")
	}

	g := randomGrid(2, 16, 16)
	_, first := c.Flush(100, g)
	if first.DeltaMass != 0 || first.DeltaLive != 0 {
		t.Errorf("first record has deltas %+v", first)
	}
	if c.ShouldFlush(150) || !c.ShouldFlush(200) {
		t.Error("interval not measured from the last flush")
	}

	for i := range g.mass {
		g.mass[i] *= 0.5
	}
	d, second := c.Flush(200, g)
	if c.Previous().TotalMass != d.TotalMass {
		t.Error("Previous not updated to latest sample")
	}
	if second.DeltaMass >= 0 {
		t.Errorf("d_mass = %v, want negative after halving", second.DeltaMass)
	}
	if second.SimTime != 20 {
		t.Errorf("sim time = %v, want 20", second.SimTime)
	}
	if want := d.TotalMass / 50 * 100; second.MassPct != want {
		t.Errorf("mass pct = %v, want %v", second.MassPct, want)
	}
}
