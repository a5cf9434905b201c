package renderer

import (
	"image/color"
	"testing"

	"github.com/pthm-cable/evolenia/components"
	"github.com/pthm-cable/evolenia/systems"
)

func TestModeNextWraps(t *testing.T) {
	m := ModeSpecies
	for i := 0; i < int(numModes); i++ {
		m = m.Next()
	}
	if m != ModeSpecies {
		t.Errorf("after a full cycle got %v, want %v", m, ModeSpecies)
	}
	if ModePredatorPrey.String() != "predator/prey" {
		t.Errorf("String() = %q", ModePredatorPrey.String())
	}
	if Mode(99).String() != "unknown" {
		t.Errorf("out of range mode should be unknown")
	}
}

func TestHSVPrimaries(t *testing.T) {
	tests := []struct {
		h    float32
		want color.RGBA
	}{
		{0, color.RGBA{R: 255, A: 255}},
		{1.0 / 3, color.RGBA{G: 255, A: 255}},
		{2.0 / 3, color.RGBA{B: 255, A: 255}},
		{1, color.RGBA{R: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := HSV(tt.h, 1, 1); got != tt.want {
			t.Errorf("HSV(%v, 1, 1) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestRampEndpoints(t *testing.T) {
	stops := []color.RGBA{{A: 255}, {R: 200, G: 100, B: 50, A: 255}}
	if got := Ramp(stops, -1); got != stops[0] {
		t.Errorf("Ramp(-1) = %v, want %v", got, stops[0])
	}
	if got := Ramp(stops, 2); got != stops[1] {
		t.Errorf("Ramp(2) = %v, want %v", got, stops[1])
	}
	mid := Ramp(stops, 0.5)
	if mid.R != 100 || mid.G != 50 || mid.B != 25 {
		t.Errorf("Ramp(0.5) = %v, want (100,50,25)", mid)
	}
}

func TestSpeciesColorEmptyIsBlack(t *testing.T) {
	got := SpeciesColor(0, components.DefaultGenome)
	if got != (color.RGBA{A: 255}) {
		t.Errorf("empty cell colour = %v, want black", got)
	}
	if SpeciesColor(1, components.DefaultGenome) == got {
		t.Error("full cell should not be black")
	}
}

func TestPredatorPreyColor(t *testing.T) {
	pred := PredatorPreyColor(1, 1)
	if pred.R != 255 || pred.G != 0 {
		t.Errorf("predator colour = %v, want pure red channel", pred)
	}
	prey := PredatorPreyColor(1, 0)
	if prey.G != 255 || prey.R != 0 {
		t.Errorf("prey colour = %v, want pure green channel", prey)
	}
}

func TestColorizeAllModes(t *testing.T) {
	f := systems.NewField(8, 4, 0.5, 1)
	f.Mass()[f.Index(2, 1)] = 0.8
	f.GenomeA()[f.Index(3, 1)] = components.GenomeA{R: 8, Mu: 0.1, Sigma: 0.05, Agg: 0.9}
	f.Mass()[f.Index(3, 1)] = 0.6

	var buf []color.RGBA
	for m := ModeSpecies; m < numModes; m++ {
		buf = Colorize(f, m, buf)
		if len(buf) != 32 {
			t.Fatalf("%v: len = %d, want 32", m, len(buf))
		}
		for i, c := range buf {
			if c.A != 255 {
				t.Fatalf("%v: pixel %d not opaque: %v", m, i, c)
			}
		}
	}
}

func TestLocalDivergence(t *testing.T) {
	f := systems.NewField(3, 3, 0.5, 1)
	mass := f.Mass()
	for i := range mass {
		mass[i] = 0.5
	}
	genome := f.GenomeA()
	if d := localDivergence(genome, mass, 3, 3, 1, 1); d != 0 {
		t.Errorf("uniform genome divergence = %v, want 0", d)
	}

	genome[f.Index(1, 1)] = components.GenomeA{R: 5, Mu: 0.9, Sigma: 0.15, Agg: 0}
	if d := localDivergence(genome, mass, 3, 3, 1, 1); d <= 0 {
		t.Errorf("divergent centre = %v, want > 0", d)
	}
}
