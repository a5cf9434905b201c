package systems

import (
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/blas/blas32"
)

// MassQuantum is the fixed-point scale for mass summation. Each cell
// contributes round(m · MassQuantum) so the total is an integer sum that
// does not depend on how rows are split between workers.
const MassQuantum = 1 << 20

// massEpsilon is the smallest total mass that triggers correction.
const massEpsilon = 1e-6

// MassAccumulator collects per-chunk partial sums of quantized mass.
// Reset before Phase A, Add during Phase A, Total after the barrier.
type MassAccumulator struct {
	sum atomic.Int64
}

// Reset clears the accumulator.
func (a *MassAccumulator) Reset() { a.sum.Store(0) }

// Add folds a partial sum in. Safe for concurrent use.
func (a *MassAccumulator) Add(partial int64) { a.sum.Add(partial) }

// Raw returns the quantized total.
func (a *MassAccumulator) Raw() int64 { return a.sum.Load() }

// Total returns the accumulated mass.
func (a *MassAccumulator) Total() float64 {
	return float64(a.sum.Load()) / MassQuantum
}

// QuantizeMass converts a cell mass to its fixed-point contribution.
func QuantizeMass(m float32) int64 {
	return int64(math.Round(float64(m) * MassQuantum))
}

// NormalizeSum is Phase A: it sums the freshly written mass of rows
// [y0, y1) and adds the partial to acc.
func NormalizeSum(f *Field, acc *MassAccumulator, y0, y1 int) {
	mass := f.MassNext()[y0*f.W : y1*f.W]
	var s int64
	for _, m := range mass {
		s += QuantizeMass(m)
	}
	acc.Add(s)
}

// Correction returns the damped scale factor for a measured total, and
// false when no correction should be applied.
func Correction(total float64, p *Params) (float32, bool) {
	if !p.NormalizeEnabled || total <= massEpsilon {
		return 1, false
	}
	raw := p.TargetMass / total
	return float32(1 + (raw-1)*p.Damping), true
}

// NormalizeStage is Phase B: it scales the freshly written mass of rows
// [y0, y1) by correction and clamps to [0, 1].
func NormalizeStage(f *Field, correction float32, y0, y1 int) {
	mass := f.MassNext()[y0*f.W : y1*f.W]
	if len(mass) == 0 {
		return
	}
	blas32.Scal(correction, blas32.Vector{N: len(mass), Inc: 1, Data: mass})
	for i, m := range mass {
		if m > 1 {
			mass[i] = 1
		} else if m < 0 {
			mass[i] = 0
		}
	}
}
