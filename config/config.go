// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters. A Config is treated as an
// immutable record per step: the world swaps in a whole new value via
// Normalize rather than mutating fields in place.
type Config struct {
	Screen  ScreenConfig  `yaml:"screen"`
	Physics PhysicsConfig `yaml:"physics"`
	Mass    MassConfig    `yaml:"mass"`
	Radius  RadiusConfig  `yaml:"radius"`
	Launch  LaunchConfig  `yaml:"launch"`
	Merge   MergeConfig   `yaml:"merge"`
	Bodies  BodiesConfig  `yaml:"bodies"`
	Search  SearchConfig  `yaml:"search"`
}

// ScreenConfig holds nominal world/viewport dimensions.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PhysicsConfig holds force-law and integrator parameters.
type PhysicsConfig struct {
	G               float64 `yaml:"g"`                // gravitational constant
	Softening       float64 `yaml:"softening"`        // Plummer softening length
	PotentialDegree float64 `yaml:"potential_degree"` // 2 = classical inverse-square
	ForceCap        float64 `yaml:"force_cap"`        // max |F| per pair; 0 = disabled (capping is non-conservative)
	Damping         float64 `yaml:"damping"`          // velocity decay per second; must be 0 in conserving mode
	DT              float64 `yaml:"dt"`               // fixed timestep in sim seconds
	DTCeiling       float64 `yaml:"dt_ceiling"`       // upper bound on dt; 0 = no bound
	SpeedCeiling    float64 `yaml:"speed_ceiling"`    // hard safety clamp on body speed
	SpeedClamp      bool    `yaml:"speed_clamp"`      // the clamp deviates from pure Hamiltonian dynamics
	ConserveEnergy  bool    `yaml:"conserve_energy"`  // forces damping and force cap off
	Boundary        string  `yaml:"boundary"`         // "open" or "torus"
}

// MassConfig describes the mass distribution of created bodies.
type MassConfig struct {
	Min   float64 `yaml:"min"`   // smallest creatable mass
	Ratio float64 `yaml:"ratio"` // max mass = Min * Ratio
	Shape float64 `yaml:"shape"` // distribution shape exponent
}

// RadiusConfig maps mass to a visual/collision radius.
// radius = (mass^power * scale) / 2, always derived, never stored.
type RadiusConfig struct {
	Scale float64 `yaml:"scale"`
	Power float64 `yaml:"power"`
}

// LaunchConfig shapes initial velocities at body-creation time.
type LaunchConfig struct {
	CompressorScale float64 `yaml:"compressor_scale"` // s0 in vmax*(1 - e^(-v/s0))
	SpeedCeiling    float64 `yaml:"speed_ceiling"`    // vmax of the compressor
	Strength        float64 `yaml:"strength"`         // post-compressor speed multiplier
	MassResistance  float64 `yaml:"mass_resistance"`  // heavier bodies launch slower
	Guidance        float64 `yaml:"guidance"`         // tangential blend strength [0,1]
	GuidanceRadius  float64 `yaml:"guidance_radius"`  // search radius for the local orbital center
	GuidanceMinMass float64 `yaml:"guidance_min_mass"`
	RadialClamp     float64 `yaml:"radial_clamp"` // scales the radial velocity component [0,1]
	HoldMax         float64 `yaml:"hold_max"`     // seconds of hold to reach max mass
	HoldEase        float64 `yaml:"hold_ease"`    // easing exponent for hold->mass
	GestureWindow   float64 `yaml:"gesture_window"`
}

// MergeConfig controls inelastic collisions.
type MergeConfig struct {
	Enabled  bool    `yaml:"enabled"`
	StopMass float64 `yaml:"stop_mass"` // bodies at or above this mass stop merging; 0 = no cap
}

// BodiesConfig bounds the body population.
type BodiesConfig struct {
	Max int `yaml:"max"`
}

// SearchConfig holds genetic-search parameters used by cmd/evolve.
type SearchConfig struct {
	PopulationSize   int     `yaml:"population_size"`
	EliteCount       int     `yaml:"elite_count"`
	TournamentK      int     `yaml:"tournament_k"`
	MutationRate     float64 `yaml:"mutation_rate"`
	MutationStrength float64 `yaml:"mutation_strength"`
	Workers          int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// BoundaryOpen and BoundaryTorus are the accepted Boundary values.
const (
	BoundaryOpen  = "open"
	BoundaryTorus = "torus"
)

// Normalize returns a copy with every field forced into its valid domain.
// It is the single place where the energy-conserving invariants are applied:
// damping and force capping fight the symplectic integrator, so conserving
// mode forces them off. Callers must store the returned value; nothing is
// mutated in place.
func (c Config) Normalize() Config {
	if c.Physics.G < 0 {
		c.Physics.G = 0
	}
	if c.Physics.Softening <= 0 {
		c.Physics.Softening = 1e-3
	}
	if c.Physics.PotentialDegree <= 0 {
		c.Physics.PotentialDegree = 2
	}
	if c.Physics.ForceCap < 0 {
		c.Physics.ForceCap = 0
	}
	if c.Physics.Damping < 0 {
		c.Physics.Damping = 0
	}
	if c.Physics.DT <= 0 {
		c.Physics.DT = 0.01
	}
	if c.Physics.DTCeiling > 0 && c.Physics.DT > c.Physics.DTCeiling {
		c.Physics.DT = c.Physics.DTCeiling
	}
	if c.Physics.SpeedCeiling <= 0 {
		c.Physics.SpeedCeiling = 2000
	}
	if c.Physics.Boundary != BoundaryTorus {
		c.Physics.Boundary = BoundaryOpen
	}
	if c.Physics.ConserveEnergy {
		c.Physics.Damping = 0
		c.Physics.ForceCap = 0
		c.Physics.SpeedClamp = false
	}

	if c.Mass.Min <= 0 {
		c.Mass.Min = 1
	}
	if c.Mass.Ratio < 1 {
		c.Mass.Ratio = 1
	}
	if c.Mass.Shape <= 0 {
		c.Mass.Shape = 1
	}
	if c.Radius.Scale <= 0 {
		c.Radius.Scale = 1
	}
	if c.Radius.Power <= 0 {
		c.Radius.Power = 0.5
	}

	l := &c.Launch
	if l.CompressorScale <= 0 {
		l.CompressorScale = 1
	}
	if l.SpeedCeiling < 0 {
		l.SpeedCeiling = 0
	}
	if l.Strength < 0 {
		l.Strength = 0
	}
	if l.MassResistance < 0 {
		l.MassResistance = 0
	}
	l.Guidance = clamp01(l.Guidance)
	l.RadialClamp = clamp01(l.RadialClamp)
	if l.GuidanceRadius <= 0 {
		l.GuidanceRadius = 250
	}
	if l.GuidanceMinMass <= 0 {
		l.GuidanceMinMass = c.Mass.Min
	}
	if l.HoldMax <= 0 {
		l.HoldMax = 2
	}
	if l.HoldEase <= 0 {
		l.HoldEase = 0.7
	}
	if l.GestureWindow <= 0 {
		l.GestureWindow = 0.1
	}

	if c.Merge.StopMass < 0 {
		c.Merge.StopMass = 0
	}
	if c.Bodies.Max <= 0 {
		c.Bodies.Max = 256
	}

	s := &c.Search
	if s.PopulationSize <= 0 {
		s.PopulationSize = 24
	}
	if s.EliteCount <= 0 {
		s.EliteCount = 2
	}
	if s.EliteCount > s.PopulationSize {
		s.EliteCount = s.PopulationSize
	}
	if s.TournamentK < 2 {
		s.TournamentK = 3
	}
	if s.MutationRate <= 0 || s.MutationRate > 1 {
		s.MutationRate = 0.15
	}
	if s.MutationStrength <= 0 {
		s.MutationStrength = 0.25
	}

	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

var (
	defaultOnce sync.Once
	defaultCfg  Config
)

// Default returns the embedded default configuration, parsed once.
func Default() Config {
	defaultOnce.Do(func() {
		cfg, err := Load("")
		if err != nil {
			// defaults.yaml is embedded at build time; failing to parse it
			// is a programming error, not a runtime condition.
			panic(err)
		}
		defaultCfg = *cfg
	})
	return defaultCfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is normalized.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	norm := cfg.Normalize()
	return &norm, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
