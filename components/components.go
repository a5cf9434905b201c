// Package components defines the per-cell genome records and the ECS
// components used to describe founder colonies before they are stamped
// onto the grid.
package components

import "math"

// GenomeA is the morphological genome carried by every cell.
// Values are copied as a whole on inheritance; fields are never mixed.
type GenomeA struct {
	R     float32 `inspect:"label,fmt:%.2f"` // kernel radius in cells
	Mu    float32 `inspect:"label,fmt:%.3f"` // preferred perceived density
	Sigma float32 `inspect:"label,fmt:%.3f"` // growth tolerance
	Agg   float32 `inspect:"bar"`            // aggressivity
}

// DefaultGenome is written into empty cells so the growth function never
// sees a zero sigma.
var DefaultGenome = GenomeA{R: 5, Mu: 0.5, Sigma: 0.15, Agg: 0}

// DefaultMut is the mutation rate of empty cells.
const DefaultMut float32 = 0.01

// Complexity is the Euclidean norm of (mu, sigma, agg), the metabolic
// cost driver for genome complexity.
func (g GenomeA) Complexity() float32 {
	return float32(math.Sqrt(float64(g.Mu*g.Mu + g.Sigma*g.Sigma + g.Agg*g.Agg)))
}

// Distance returns the Euclidean distance between two genomes in the
// normalised space (r/16, mu, sigma/0.3, agg) used for species clustering.
func (g GenomeA) Distance(o GenomeA) float32 {
	dr := (g.R - o.R) / 16
	dm := g.Mu - o.Mu
	ds := (g.Sigma - o.Sigma) / 0.3
	da := g.Agg - o.Agg
	return float32(math.Sqrt(float64(dr*dr + dm*dm + ds*ds + da*da)))
}

// ShapeKind identifies a founder seeding pattern.
type ShapeKind uint8

const (
	ShapeBlob ShapeKind = iota
	ShapeRing
	ShapeFilament
	ShapeSpiral
	ShapeCloud
	ShapePredatorNest
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBlob:
		return "blob"
	case ShapeRing:
		return "ring"
	case ShapeFilament:
		return "filament"
	case ShapeSpiral:
		return "spiral"
	case ShapeCloud:
		return "cloud"
	case ShapePredatorNest:
		return "predator_nest"
	default:
		return "unknown"
	}
}

// Shape holds the geometry of a founder pattern. Which fields are used
// depends on Kind.
type Shape struct {
	Kind ShapeKind

	Radius float32 // blob, nest, cloud, ring outer radius
	Inner  float32 // ring inner radius

	// Filament
	Angle     float32
	Length    float32
	HalfWidth float32
	Curvature float32

	// Spiral
	Arms     int
	MaxAngle float32
	Scale    float32

	// Cloud
	Density   float32
	NoiseSeed int64
}

// Lineage holds what a founder writes into the cells it covers.
type Lineage struct {
	Genome    GenomeA
	Mut       float32
	Energy    float32 // energy written into covered cells
	MassScale float32 // multiplier on the pattern's mass profile
	Order     uint32  // creation order, stamping follows it
}
