package game

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolCoversEveryRowOnce(t *testing.T) {
	for _, tt := range []struct {
		workers, threshold, rows int
	}{
		{1, 0, 10},
		{3, 0, 37},
		{4, 0, 3},
		{8, 0, 256},
		{4, 64, 16}, // below threshold runs inline
	} {
		p := newWorkerPool(tt.workers, tt.threshold)
		hits := make([]int32, tt.rows)
		for pass := 0; pass < 3; pass++ {
			p.run(tt.rows, func(y0, y1 int) {
				for y := y0; y < y1; y++ {
					atomic.AddInt32(&hits[y], 1)
				}
			})
		}
		p.stop()
		for y, n := range hits {
			if n != 3 {
				t.Errorf("workers=%d rows=%d: row %d visited %d times, want 3", tt.workers, tt.rows, y, n)
			}
		}
	}
}

func TestWorkerPoolRestartsAfterStop(t *testing.T) {
	p := newWorkerPool(2, 0)
	var n atomic.Int32
	count := func(y0, y1 int) { n.Add(int32(y1 - y0)) }

	p.run(20, count)
	p.stop()
	p.stop()
	p.run(20, count)
	p.stop()

	if got := n.Load(); got != 40 {
		t.Errorf("rows processed = %d, want 40", got)
	}
}

func TestWorkerPoolDefaultsToGOMAXPROCS(t *testing.T) {
	if p := newWorkerPool(0, 0); p.numWorkers < 1 {
		t.Errorf("numWorkers = %d, want >= 1", p.numWorkers)
	}
}
