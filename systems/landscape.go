package systems

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/evolenia/config"
)

// Landscape writes the initial resource field into res: a flat base with
// fertile oases, desert basins, diagonal sinusoidal bands and a tileable
// simplex fertility term, clamped to [floor, 1].
func Landscape(res []float32, w, h int, cfg config.LandscapeConfig, rng *rand.Rand) {
	base := float32(cfg.Base)
	floor := float32(cfg.Floor)
	for i := range res {
		res[i] = base
	}

	for o := 0; o < cfg.Oases; o++ {
		cx, cy := rng.Intn(w), rng.Intn(h)
		radius := float32(20 + rng.Intn(40))
		splat(res, w, h, cx, cy, radius, func(v, g float32) float32 {
			return min(v+0.3*g, 1)
		})
	}

	for d := 0; d < cfg.Deserts; d++ {
		cx, cy := rng.Intn(w), rng.Intn(h)
		radius := float32(25 + rng.Intn(25))
		splat(res, w, h, cx, cy, radius, func(v, g float32) float32 {
			return max(v-0.5*g, floor)
		})
	}

	freqX := (1 + 3*rng.Float64()) * 2 * math.Pi / float64(w)
	freqY := (1 + 3*rng.Float64()) * 2 * math.Pi / float64(h)
	phase := rng.Float64() * 2 * math.Pi
	fertility := NewFertilityNoise(rng.Int63(), w, h, cfg.NoiseScale, cfg.NoiseOctaves)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			wave := math.Sin(float64(x)*freqX+float64(y)*freqY+phase) * cfg.BandAmplitude
			noise := fertility.At(x, y) * cfg.NoiseAmplitude
			res[i] = clampFloat(res[i]+float32(wave+noise), floor, 1)
		}
	}
}

// splat applies fn to every cell within radius of (cx, cy), passing the
// Gaussian profile exp(-d²/(2·R²·0.25)).
func splat(res []float32, w, h, cx, cy int, radius float32, fn func(v, g float32) float32) {
	ir := int(radius) + 1
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			d := sqrtf(float32(dx*dx + dy*dy))
			if d > radius {
				continue
			}
			g := expf(-d * d / (2 * radius * radius * 0.25))
			i := wrap(cy+dy, h)*w + wrap(cx+dx, w)
			res[i] = fn(res[i], g)
		}
	}
}

// FertilityNoise is fractal simplex noise that tiles on the torus. Each
// axis is mapped onto a circle and sampled in 4-D.
type FertilityNoise struct {
	noise   opensimplex.Noise
	w, h    int
	scale   float64
	octaves int
}

// NewFertilityNoise creates a tileable fBm generator. scale is the base
// frequency in cycles per cell.
func NewFertilityNoise(seed int64, w, h int, scale float64, octaves int) *FertilityNoise {
	if octaves < 1 {
		octaves = 1
	}
	return &FertilityNoise{
		noise:   opensimplex.New(seed),
		w:       w,
		h:       h,
		scale:   scale,
		octaves: octaves,
	}
}

// At returns the fBm value at cell (x, y), roughly in [-1, 1].
func (n *FertilityNoise) At(x, y int) float64 {
	ax := 2 * math.Pi * float64(x) / float64(n.w)
	ay := 2 * math.Pi * float64(y) / float64(n.h)
	rx := float64(n.w) * n.scale / (2 * math.Pi)
	ry := float64(n.h) * n.scale / (2 * math.Pi)

	sum, amp, norm, freq := 0.0, 1.0, 0.0, 1.0
	for o := 0; o < n.octaves; o++ {
		sum += amp * n.noise.Eval4(
			math.Cos(ax)*rx*freq, math.Sin(ax)*rx*freq,
			math.Cos(ay)*ry*freq, math.Sin(ay)*ry*freq,
		)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}
