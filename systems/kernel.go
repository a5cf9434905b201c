package systems

import (
	"cmp"
	"math"
	"slices"
)

// Offset is a sampling offset of the density kernel.
type Offset struct {
	DX, DY int
	D      float32
}

// Kernel is the precomputed multi-radius ring kernel. Offsets cover every
// integer offset within the maximum radius, sorted by distance so each
// reference radius only walks a prefix.
type Kernel struct {
	Offsets []Offset

	radii     [3]float32
	weights   [3][]float32 // ring weight per reference radius, aligned with Offsets
	support   [3]int       // number of offsets inside each reference radius
	maxRadius int
	probe     []Offset // sparse liveness probe
}

// RingWeight is the ring kernel K(d, R) = exp(-((d/R - 0.5)² / (2·width²)))
// for d ≤ R, zero outside.
func RingWeight(d, r, width float32) float32 {
	if r <= 0 || d > r {
		return 0
	}
	x := d/r - 0.5
	return expf(-(x * x) / (2 * width * width))
}

// NewKernel precomputes weights for three ascending reference radii.
func NewKernel(radii []float64, maxRadius int, width float64) *Kernel {
	k := &Kernel{maxRadius: maxRadius}
	for i := 0; i < 3 && i < len(radii); i++ {
		k.radii[i] = float32(radii[i])
	}

	limit := float32(maxRadius)
	for dy := -maxRadius; dy <= maxRadius; dy++ {
		for dx := -maxRadius; dx <= maxRadius; dx++ {
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if d > limit {
				continue
			}
			k.Offsets = append(k.Offsets, Offset{DX: dx, DY: dy, D: d})
		}
	}
	// Stable so equal distances keep row-major order
	slices.SortStableFunc(k.Offsets, func(a, b Offset) int {
		return cmp.Compare(a.D, b.D)
	})

	for r := 0; r < 3; r++ {
		k.weights[r] = make([]float32, len(k.Offsets))
		for i, o := range k.Offsets {
			k.weights[r][i] = RingWeight(o.D, k.radii[r], float32(width))
			if o.D <= k.radii[r] {
				k.support[r] = i + 1
			}
		}
	}

	half := maxRadius / 2
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx != 0 || dy != 0 {
				k.probe = append(k.probe, Offset{DX: dx, DY: dy})
			}
		}
	}
	k.probe = append(k.probe,
		Offset{DX: half, DY: half}, Offset{DX: -half, DY: half},
		Offset{DX: half, DY: -half}, Offset{DX: -half, DY: -half},
		Offset{DX: maxRadius}, Offset{DX: -maxRadius},
		Offset{DY: maxRadius}, Offset{DY: -maxRadius},
	)
	return k
}

// MaxRadius returns the sampling bound in cells.
func (k *Kernel) MaxRadius() int { return k.maxRadius }

// Probe returns the sparse liveness probe offsets.
func (k *Kernel) Probe() []Offset { return k.probe }

// blend selects the two reference kernels bracketing r and the linear
// weight of the larger one.
func (k *Kernel) blend(r float32) (a, b int, t float32) {
	switch {
	case r <= k.radii[0]:
		return 0, 0, 0
	case r >= k.radii[2]:
		return 2, 2, 0
	case r <= k.radii[1]:
		return 0, 1, (r - k.radii[0]) / (k.radii[1] - k.radii[0])
	default:
		return 1, 2, (r - k.radii[1]) / (k.radii[2] - k.radii[1])
	}
}

// Weight returns the blended kernel weight for gene radius r at offset i.
func (k *Kernel) Weight(r float32, i int) float32 {
	a, b, t := k.blend(r)
	return (1-t)*k.weights[a][i] + t*k.weights[b][i]
}

// Density returns the perceived density U = ΣwM / Σw around (x, y) for a
// cell with gene radius r. U is 0 when the kernel has no weight.
func (k *Kernel) Density(mass []float32, w, h, x, y int, r float32) float32 {
	a, b, t := k.blend(r)
	wa, wb := k.weights[a], k.weights[b]
	n := k.support[b]

	R := k.maxRadius
	interior := x >= R && x < w-R && y >= R && y < h-R

	var sw, swm float32
	for i := 0; i < n; i++ {
		o := &k.Offsets[i]
		wt := (1-t)*wa[i] + t*wb[i]
		if wt == 0 {
			continue
		}
		var idx int
		if interior {
			idx = (y+o.DY)*w + x + o.DX
		} else {
			idx = wrap(y+o.DY, h)*w + wrap(x+o.DX, w)
		}
		sw += wt
		swm += wt * mass[idx]
	}
	if sw <= 0 {
		return 0
	}
	return swm / sw
}

// AnyAlive reports whether any probe sample around (x, y) reaches eps.
func (k *Kernel) AnyAlive(mass []float32, w, h, x, y int, eps float32) bool {
	for _, o := range k.probe {
		if mass[wrap(y+o.DY, h)*w+wrap(x+o.DX, w)] >= eps {
			return true
		}
	}
	return false
}
