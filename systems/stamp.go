package systems

import (
	"cmp"
	"math"
	"math/rand"
	"slices"

	"github.com/aquilax/go-perlin"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/evolenia/components"
)

// StampSystem writes founder entities onto the grid. Founders overlap
// additively in mass; the last stamped founder owns a cell's energy and
// genome.
type StampSystem struct {
	filter *ecs.Filter3[components.Position, components.Shape, components.Lineage]
}

// NewStampSystem creates a stamp system over the founders in world.
func NewStampSystem(world *ecs.World) *StampSystem {
	return &StampSystem{
		filter: ecs.NewFilter3[components.Position, components.Shape, components.Lineage](world),
	}
}

type founder struct {
	pos     components.Position
	shape   components.Shape
	lineage components.Lineage
}

// Update stamps every founder in creation order onto the committed side
// of f. It returns the number of founders stamped.
func (s *StampSystem) Update(f *Field) int {
	var founders []founder
	query := s.filter.Query()
	for query.Next() {
		pos, shape, lin := query.Get()
		founders = append(founders, founder{*pos, *shape, *lin})
	}
	slices.SortFunc(founders, func(a, b founder) int {
		return cmp.Compare(a.lineage.Order, b.lineage.Order)
	})

	for i := range founders {
		stampFounder(f, &founders[i])
	}
	return len(founders)
}

// stampCell blends mass into a cell and overwrites its energy and genome.
func stampCell(f *Field, x, y int, m float32, lin *components.Lineage) {
	i := f.Index(x, y)
	mass := f.Mass()
	mass[i] = min(mass[i]+m, 1)
	f.Energy()[i] = lin.Energy
	f.GenomeA()[i] = lin.Genome
	f.GenomeB()[i] = lin.Mut
}

func stampFounder(f *Field, fd *founder) {
	cx, cy := int(fd.pos.X), int(fd.pos.Y)
	sh := &fd.shape
	lin := &fd.lineage

	switch sh.Kind {
	case components.ShapeBlob, components.ShapePredatorNest:
		spread := float32(0.25)
		if sh.Kind == components.ShapePredatorNest {
			spread = 0.3
		}
		r := sh.Radius
		ir := int(r) + 1
		for dy := -ir; dy <= ir; dy++ {
			for dx := -ir; dx <= ir; dx++ {
				d := sqrtf(float32(dx*dx + dy*dy))
				if d > r {
					continue
				}
				m := expf(-d * d / (2 * r * r * spread))
				stampCell(f, cx+dx, cy+dy, m*lin.MassScale, lin)
			}
		}

	case components.ShapeRing:
		outer, inner := sh.Radius, sh.Inner
		thickness := max(outer-inner, 2)
		soft := thickness * 0.3
		ir := int(outer) + 1
		for dy := -ir; dy <= ir; dy++ {
			for dx := -ir; dx <= ir; dx++ {
				d := sqrtf(float32(dx*dx + dy*dy))
				if d > outer || d < inner {
					continue
				}
				edgeOuter := 1 - max((d-outer+soft)/soft, 0)
				edgeInner := min((d-inner)/soft, 1)
				m := clamp01(edgeOuter * edgeInner)
				if m < 0.01 {
					continue
				}
				stampCell(f, cx+dx, cy+dy, m*lin.MassScale, lin)
			}
		}

	case components.ShapeFilament:
		steps := int(sh.Length * 2)
		for s := 0; s <= steps; s++ {
			t := float32(s) / float32(steps)
			a := float64(sh.Angle + sh.Curvature*t*sh.Length)
			lx := fd.pos.X + float32(math.Cos(a))*t*sh.Length
			ly := fd.pos.Y + float32(math.Sin(a))*t*sh.Length
			brush(f, int(lx), int(ly), sh.HalfWidth, 1, lin)
		}

	case components.ShapeSpiral:
		steps := int(sh.MaxAngle * sh.Scale * 2)
		for arm := 0; arm < sh.Arms; arm++ {
			offset := 2 * math.Pi * float64(arm) / float64(sh.Arms)
			for s := 0; s <= steps; s++ {
				t := float32(s) / float32(steps)
				theta := float64(t*sh.MaxAngle) + offset
				r := t * sh.Scale
				sx := fd.pos.X + float32(math.Cos(theta))*r
				sy := fd.pos.Y + float32(math.Sin(theta))*r
				brush(f, int(sx), int(sy), sh.HalfWidth, 1-t*0.3, lin)
			}
		}

	case components.ShapeCloud:
		stampCloud(f, cx, cy, sh, lin)
	}
}

// brush stamps a disc with linear falloff, used to trace filaments and
// spiral arms.
func brush(f *Field, cx, cy int, halfWidth, fade float32, lin *components.Lineage) {
	hw := int(halfWidth) + 1
	for dy := -hw; dy <= hw; dy++ {
		for dx := -hw; dx <= hw; dx++ {
			d := sqrtf(float32(dx*dx + dy*dy))
			if d > halfWidth {
				continue
			}
			m := (1 - d/halfWidth) * fade
			if m < 0.01 {
				continue
			}
			stampCell(f, cx+dx, cy+dy, m*lin.MassScale, lin)
		}
	}
}

// stampCloud scatters sparse low mass over a disc. Perlin noise clumps the
// fill so clouds read as patchy colonies instead of uniform static.
func stampCloud(f *Field, cx, cy int, sh *components.Shape, lin *components.Lineage) {
	rng := rand.New(rand.NewSource(sh.NoiseSeed))
	noise := perlin.NewPerlin(2, 2, 3, sh.NoiseSeed)
	r := int(sh.Radius)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := sqrtf(float32(dx*dx + dy*dy))
			if d > sh.Radius {
				continue
			}
			clump := 1 + 2*float32(noise.Noise2D(float64(dx)/8, float64(dy)/8))
			if rng.Float32() > sh.Density*clump {
				continue
			}
			falloff := 1 - d/sh.Radius
			m := falloff * (0.1 + 0.4*rng.Float32())
			stampCell(f, cx+dx, cy+dy, m*lin.MassScale, lin)
		}
	}
}
