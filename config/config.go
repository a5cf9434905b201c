// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen        ScreenConfig        `yaml:"screen"`
	World         WorldConfig         `yaml:"world"`
	Physics       PhysicsConfig       `yaml:"physics"`
	Kernel        KernelConfig        `yaml:"kernel"`
	Genes         GenesConfig         `yaml:"genes"`
	Velocity      VelocityConfig      `yaml:"velocity"`
	Metabolism    MetabolismConfig    `yaml:"metabolism"`
	Starvation    StarvationConfig    `yaml:"starvation"`
	Advection     AdvectionConfig     `yaml:"advection"`
	Genetics      GeneticsConfig      `yaml:"genetics"`
	Resource      ResourceConfig      `yaml:"resource"`
	Normalization NormalizationConfig `yaml:"normalization"`
	Seeding       SeedingConfig       `yaml:"seeding"`
	Landscape     LandscapeConfig     `yaml:"landscape"`
	Parallel      ParallelConfig      `yaml:"parallel"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Headless      HeadlessConfig      `yaml:"headless"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds grid dimensions and the run seed.
// Dimensions are fixed for the lifetime of a simulation.
type WorldConfig struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"` // 0 = time-based
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT             float64 `yaml:"dt"`
	StepsPerUpdate int     `yaml:"steps_per_update"`
}

// KernelConfig holds the ring kernel and convolution settings.
type KernelConfig struct {
	ReferenceRadii []float64 `yaml:"reference_radii"` // ascending, exactly 3
	MaxRadius      int       `yaml:"max_radius"`      // sampling bound in cells
	RingWidth      float64   `yaml:"ring_width"`      // Gaussian width of the ring, relative to R
	LiveEpsilon    float64   `yaml:"live_epsilon"`    // mass below this counts as dead
	EarlyExit      bool      `yaml:"early_exit"`      // sparse liveness probe before convolving
}

// GenesConfig holds the valid range of every gene.
type GenesConfig struct {
	RadiusMin float64 `yaml:"radius_min"`
	RadiusMax float64 `yaml:"radius_max"`
	MuMin     float64 `yaml:"mu_min"`
	MuMax     float64 `yaml:"mu_max"`
	SigmaMin  float64 `yaml:"sigma_min"` // also the floor used by the growth function
	SigmaMax  float64 `yaml:"sigma_max"`
	AggMin    float64 `yaml:"agg_min"`
	AggMax    float64 `yaml:"agg_max"`
	MutMin    float64 `yaml:"mut_min"`
	MutMax    float64 `yaml:"mut_max"`
}

// VelocityConfig holds flow field parameters.
type VelocityConfig struct {
	PredationThreshold float64 `yaml:"predation_threshold"` // aggressivity needed for the predation term
	PredationMass      float64 `yaml:"predation_mass"`      // own mass needed for the predation term
	KPred              float64 `yaml:"k_pred"`
}

// MetabolismConfig holds energy cost and absorption constants.
type MetabolismConfig struct {
	PredationFactor float64 `yaml:"predation_factor"`
	KComplexity     float64 `yaml:"k_complexity"`
	KRadius         float64 `yaml:"k_radius"`
	KAgg            float64 `yaml:"k_agg"`
	KInterference   float64 `yaml:"k_interference"`
	KBase           float64 `yaml:"k_base"`
	KPreyBonus      float64 `yaml:"k_prey_bonus"`
}

// StarvationConfig holds mass decay parameters for depleted energy.
type StarvationConfig struct {
	Threshold float64 `yaml:"threshold"`
	Decay     float64 `yaml:"decay"`
}

// AdvectionConfig holds flux limiter settings.
type AdvectionConfig struct {
	Cap float64 `yaml:"cap"` // per-direction outflow is at most mass/cap
}

// GeneticsConfig holds segregation and mutation parameters.
type GeneticsConfig struct {
	SegregationEpsilon    float64 `yaml:"segregation_epsilon"`
	MutationMultiplier    float64 `yaml:"mutation_multiplier"`
	MutationLiveThreshold float64 `yaml:"mutation_live_threshold"`
	RadiusScale           float64 `yaml:"radius_scale"`
	MuScale               float64 `yaml:"mu_scale"`
	SigmaScale            float64 `yaml:"sigma_scale"`
	AggScale              float64 `yaml:"agg_scale"`
	MutStep               float64 `yaml:"mut_step"`
	MutMargin             float64 `yaml:"mut_margin"` // keeps the mutation gene off its bounds
}

// ResourceConfig holds reaction-diffusion parameters for the nutrient field.
type ResourceConfig struct {
	Diffusion   float64 `yaml:"diffusion"`
	Feed        float64 `yaml:"feed"`
	Consumption float64 `yaml:"consumption"`
}

// NormalizationConfig holds global mass correction parameters.
type NormalizationConfig struct {
	Enabled    bool    `yaml:"enabled"`
	TargetFill float64 `yaml:"target_fill"`
	Damping    float64 `yaml:"damping"`
	Tolerance  float64 `yaml:"tolerance"` // relative, used by tests and diagnostics
}

// SeedingConfig holds founder pattern counts.
type SeedingConfig struct {
	ReferenceArea    int     `yaml:"reference_area"` // counts are scaled by world area / this
	Clusters         int     `yaml:"clusters"`
	Rings            int     `yaml:"rings"`
	Filaments        int     `yaml:"filaments"`
	Spirals          int     `yaml:"spirals"`
	Clouds           int     `yaml:"clouds"`
	PredatorNests    int     `yaml:"predator_nests"`
	BackgroundEnergy float64 `yaml:"background_energy"`
}

// LandscapeConfig holds initial resource landscape parameters.
type LandscapeConfig struct {
	Base           float64 `yaml:"base"`
	Oases          int     `yaml:"oases"`
	Deserts        int     `yaml:"deserts"`
	BandAmplitude  float64 `yaml:"band_amplitude"`
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
	NoiseScale     float64 `yaml:"noise_scale"`
	NoiseOctaves   int     `yaml:"noise_octaves"`
	Floor          float64 `yaml:"floor"`
}

// ParallelConfig holds worker pool settings.
type ParallelConfig struct {
	Workers       int `yaml:"workers"`        // 0 = GOMAXPROCS
	ThresholdRows int `yaml:"threshold_rows"` // grids with fewer rows run single-threaded
}

// TelemetryConfig holds diagnostics parameters.
type TelemetryConfig struct {
	DiagInterval        int `yaml:"diag_interval"` // frames between diagnostics samples
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	EventHistory        int `yaml:"event_history"`
}

// HeadlessConfig holds batch runner parameters.
type HeadlessConfig struct {
	Frames           int `yaml:"frames"`
	ProgressInterval int `yaml:"progress_interval"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32 // Physics.DT as float32
	Cells      int     // World.Width * World.Height
	TargetMass float64 // Cells * Normalization.TargetFill
	AreaScale  float64 // Cells / Seeding.ReferenceArea
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Clone returns a deep copy, safe to mutate independently.
func (c *Config) Clone() *Config {
	out := *c
	out.Kernel.ReferenceRadii = append([]float64(nil), c.Kernel.ReferenceRadii...)
	return &out
}

// Validate rejects values that would drive the core into degenerate states.
// The core itself only clamps.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.World.Width > 0 && c.World.Height > 0, "world: dimensions must be positive, got %dx%d", c.World.Width, c.World.Height)
	check(c.Physics.DT > 0, "physics.dt must be positive, got %v", c.Physics.DT)

	radii := c.Kernel.ReferenceRadii
	check(len(radii) == 3, "kernel.reference_radii must have 3 entries, got %d", len(radii))
	if len(radii) == 3 {
		check(radii[0] > 0 && radii[0] < radii[1] && radii[1] < radii[2],
			"kernel.reference_radii must be positive and ascending, got %v", radii)
		check(float64(c.Kernel.MaxRadius) >= radii[2],
			"kernel.max_radius %d is below the largest reference radius %v", c.Kernel.MaxRadius, radii[2])
	}
	check(c.Kernel.RingWidth > 0, "kernel.ring_width must be positive")
	check(c.Kernel.LiveEpsilon >= 0, "kernel.live_epsilon must be non-negative")

	g := c.Genes
	check(g.RadiusMin > 0 && g.RadiusMin <= g.RadiusMax, "genes: invalid radius range [%v,%v]", g.RadiusMin, g.RadiusMax)
	check(g.MuMin >= 0 && g.MuMin <= g.MuMax && g.MuMax <= 1, "genes: invalid mu range [%v,%v]", g.MuMin, g.MuMax)
	check(g.SigmaMin > 0 && g.SigmaMin <= g.SigmaMax, "genes: sigma floor must be positive, got [%v,%v]", g.SigmaMin, g.SigmaMax)
	check(g.AggMin >= 0 && g.AggMin <= g.AggMax && g.AggMax <= 1, "genes: invalid agg range [%v,%v]", g.AggMin, g.AggMax)
	check(g.MutMin > 0 && g.MutMin < g.MutMax, "genes: invalid mut range [%v,%v]", g.MutMin, g.MutMax)
	check(2*c.Genetics.MutMargin < g.MutMax-g.MutMin, "genetics.mut_margin %v leaves no room in the mut range", c.Genetics.MutMargin)

	check(c.Resource.Diffusion >= 0 && c.Resource.Diffusion <= 0.25,
		"resource.diffusion must be in [0,0.25] for a stable 5-point stencil, got %v", c.Resource.Diffusion)
	check(c.Resource.Feed >= 0 && c.Resource.Feed <= 1, "resource.feed must be in [0,1], got %v", c.Resource.Feed)
	check(c.Resource.Consumption >= 0, "resource.consumption must be non-negative, got %v", c.Resource.Consumption)

	check(c.Metabolism.PredationFactor >= 0, "metabolism.predation_factor must be non-negative")
	check(c.Starvation.Threshold > 0, "starvation.threshold must be positive")
	check(c.Starvation.Decay >= 0 && c.Starvation.Decay <= 1, "starvation.decay must be in [0,1]")
	check(c.Advection.Cap >= 4, "advection.cap must be at least 4 so outflow never exceeds the cell mass, got %v", c.Advection.Cap)
	check(c.Genetics.MutationMultiplier >= 0, "genetics.mutation_multiplier must be non-negative")

	n := c.Normalization
	check(n.Damping >= 0 && n.Damping <= 1, "normalization.damping must be in [0,1], got %v", n.Damping)
	check(n.TargetFill >= 0 && n.TargetFill <= 1, "normalization.target_fill must be in [0,1], got %v", n.TargetFill)

	check(c.Seeding.ReferenceArea > 0, "seeding.reference_area must be positive")
	check(c.Landscape.Floor >= 0 && c.Landscape.Floor <= 1, "landscape.floor must be in [0,1]")

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Cells = c.World.Width * c.World.Height
	c.Derived.TargetMass = float64(c.Derived.Cells) * c.Normalization.TargetFill
	if c.Seeding.ReferenceArea > 0 {
		c.Derived.AreaScale = float64(c.Derived.Cells) / float64(c.Seeding.ReferenceArea)
	}
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() {
	c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
