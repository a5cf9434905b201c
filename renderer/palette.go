// Package renderer maps grid state to pixel colours for the viewer.
//
// Colour mapping is pure and works on any View, so it runs without a
// window; the viewer uploads the result into a raylib texture.
package renderer

import (
	"image/color"
	"math"

	"github.com/pthm-cable/evolenia/components"
)

// Mode selects what the field texture shows.
type Mode int

const (
	ModeSpecies Mode = iota
	ModeEnergy
	ModeMass
	ModeDiversity
	ModePredatorPrey
	ModeResource
	numModes
)

var modeNames = [numModes]string{
	"species",
	"energy",
	"mass",
	"diversity",
	"predator/prey",
	"resource",
}

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return "unknown"
	}
	return modeNames[m]
}

// Next returns the following mode, wrapping after the last.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

// View is the read-only grid state needed for colouring.
type View interface {
	Width() int
	Height() int
	Mass() []float32
	Energy() []float32
	GenomeA() []components.GenomeA
	Resource() []float32
}

// Colorize writes one pixel per cell into dst, growing it if needed, and
// returns it. Pixels are row-major, matching the grid.
func Colorize(v View, mode Mode, dst []color.RGBA) []color.RGBA {
	w, h := v.Width(), v.Height()
	n := w * h
	if cap(dst) < n {
		dst = make([]color.RGBA, n)
	}
	dst = dst[:n]

	mass := v.Mass()
	switch mode {
	case ModeEnergy:
		energy := v.Energy()
		for i := range dst {
			dst[i] = EnergyColor(mass[i], energy[i])
		}
	case ModeMass:
		for i := range dst {
			dst[i] = MassColor(mass[i])
		}
	case ModeDiversity:
		genome := v.GenomeA()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				dst[i] = DiversityColor(mass[i], localDivergence(genome, mass, w, h, x, y))
			}
		}
	case ModePredatorPrey:
		genome := v.GenomeA()
		for i := range dst {
			dst[i] = PredatorPreyColor(mass[i], genome[i].Agg)
		}
	case ModeResource:
		res := v.Resource()
		for i := range dst {
			dst[i] = ResourceColor(res[i], mass[i])
		}
	default:
		genome := v.GenomeA()
		for i := range dst {
			dst[i] = SpeciesColor(mass[i], genome[i])
		}
	}
	return dst
}

// SpeciesColor hashes the genome into a hue so related genomes get
// related colours. Brightness follows mass; aggressive genomes are more
// saturated.
func SpeciesColor(m float32, g components.GenomeA) color.RGBA {
	if m <= 0 {
		return color.RGBA{A: 255}
	}
	hue := fract(g.Mu*2.7 + g.Sigma*3.1 + g.R/9*0.45)
	sat := 0.55 + 0.45*clamp01(g.Agg)
	val := float32(math.Sqrt(float64(clamp01(m))))
	return HSV(hue, sat, val)
}

var energyRamp = []color.RGBA{
	{R: 10, G: 10, B: 40, A: 255},
	{R: 40, G: 80, B: 200, A: 255},
	{R: 240, G: 200, B: 40, A: 255},
	{R: 255, G: 255, B: 220, A: 255},
}

// EnergyColor shows energy everywhere, dimmed where there is no mass.
func EnergyColor(m, e float32) color.RGBA {
	c := Ramp(energyRamp, e)
	return scale(c, 0.35+0.65*clamp01(m*4))
}

var massRamp = []color.RGBA{
	{R: 0, G: 0, B: 0, A: 255},
	{R: 60, G: 20, B: 110, A: 255},
	{R: 30, G: 150, B: 140, A: 255},
	{R: 250, G: 230, B: 40, A: 255},
}

// MassColor maps mass onto a dark-to-bright ramp.
func MassColor(m float32) color.RGBA {
	return Ramp(massRamp, m)
}

// DiversityColor highlights cells whose genome differs from their
// neighbours. d is the mean neighbour genome distance.
func DiversityColor(m, d float32) color.RGBA {
	if m <= 0 {
		return color.RGBA{A: 255}
	}
	t := clamp01(d * 4)
	v := 0.25 + 0.75*clamp01(m*4)
	return color.RGBA{
		R: to8(v * (0.2 + 0.8*t)),
		G: to8(v * 0.15),
		B: to8(v * (0.9 - 0.5*t)),
		A: 255,
	}
}

// PredatorPreyColor shows predators in red and prey in green.
func PredatorPreyColor(m, agg float32) color.RGBA {
	m = clamp01(m)
	a := clamp01(agg)
	v := float32(math.Sqrt(float64(m)))
	return color.RGBA{
		R: to8(v * a),
		G: to8(v * (1 - a)),
		B: to8(v * 0.15),
		A: 255,
	}
}

var resourceRamp = []color.RGBA{
	{R: 70, G: 40, B: 20, A: 255},
	{R: 140, G: 120, B: 50, A: 255},
	{R: 40, G: 160, B: 60, A: 255},
}

// ResourceColor maps resource concentration, with live mass drawn as a
// faint white overlay.
func ResourceColor(r, m float32) color.RGBA {
	c := Ramp(resourceRamp, r)
	return mix(c, color.RGBA{R: 255, G: 255, B: 255, A: 255}, clamp01(m)*0.5)
}

// localDivergence is the mean genome distance from (x, y) to its four
// neighbours, counting only neighbours with mass.
func localDivergence(genome []components.GenomeA, mass []float32, w, h, x, y int) float32 {
	g := genome[y*w+x]
	var sum float32
	var n int
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nx := (x + d[0] + w) % w
		ny := (y + d[1] + h) % h
		j := ny*w + nx
		if mass[j] <= 0 {
			continue
		}
		sum += g.Distance(genome[j])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// HSV converts hue, saturation and value in [0, 1] to an opaque colour.
func HSV(h, s, v float32) color.RGBA {
	h = fract(h) * 6
	i := int(h)
	f := h - float32(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float32
	switch i {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

// Ramp interpolates linearly between evenly spaced stops. t is clamped
// to [0, 1].
func Ramp(stops []color.RGBA, t float32) color.RGBA {
	if len(stops) == 1 {
		return stops[0]
	}
	t = clamp01(t) * float32(len(stops)-1)
	i := int(t)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return mix(stops[i], stops[i+1], t-float32(i))
}

func mix(a, b color.RGBA, t float32) color.RGBA {
	l := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t + 0.5)
	}
	return color.RGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

func scale(c color.RGBA, f float32) color.RGBA {
	return color.RGBA{
		R: uint8(float32(c.R)*f + 0.5),
		G: uint8(float32(c.G)*f + 0.5),
		B: uint8(float32(c.B)*f + 0.5),
		A: c.A,
	}
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func fract(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
