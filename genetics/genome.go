// Package genetics implements the parameter-search engine: log-space
// genome encoding and a generational GA with tournament selection, elitism
// and adaptive bound expansion.
package genetics

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pthm-cable/orrery/config"
)

// GeneScale selects how an encoded gene value maps to its decoded
// parameter.
type GeneScale int

const (
	// Linear genes decode as-is.
	Linear GeneScale = iota
	// Log10 genes are encoded as log10(value) so mutation and crossover
	// act uniformly across orders of magnitude.
	Log10
)

// GeneSpec declares one gene: its encoding and current clamp range.
// Bounds are mutable (adaptive expansion widens them) except for Hard
// genes, whose domain is semantically fixed.
type GeneSpec struct {
	Name  string
	Scale GeneScale
	Min   float64
	Max   float64
	Hard  bool
}

// Gene indices into Genome.Values.
const (
	GeneG = iota
	GeneSoftening
	GeneForceCap
	GeneCompressorScale
	GeneCompressorCeiling
	GeneDTCeiling
	GeneMinMass
	GeneMassRatio
	GeneMassShape
	GeneRadiusScale
	GeneRadiusPower
	GeneLaunchStrength
	GeneMassResistance
	GeneGuidance
	GeneRadialClamp
	GeneTorus
	NumGenes
)

// DefaultSpecs returns a fresh copy of the gene table. Each population owns
// its own copy because adaptive expansion mutates the bounds.
func DefaultSpecs() []GeneSpec {
	return []GeneSpec{
		{Name: "g", Scale: Log10, Min: 1, Max: 4},
		{Name: "softening", Scale: Log10, Min: -1, Max: 2},
		{Name: "force_cap", Scale: Log10, Min: 2, Max: 6},
		{Name: "compressor_scale", Scale: Log10, Min: 1, Max: 3},
		{Name: "compressor_ceiling", Scale: Log10, Min: 1.5, Max: 3},
		{Name: "dt_ceiling", Scale: Log10, Min: -3, Max: -1},
		{Name: "min_mass", Scale: Log10, Min: 0, Max: 2},
		{Name: "mass_ratio", Scale: Log10, Min: 0, Max: 3},
		{Name: "mass_shape", Scale: Linear, Min: 0.5, Max: 3},
		{Name: "radius_scale", Scale: Log10, Min: -0.5, Max: 1},
		{Name: "radius_power", Scale: Linear, Min: 0.2, Max: 1, Hard: true},
		{Name: "launch_strength", Scale: Linear, Min: 0.1, Max: 2},
		{Name: "mass_resistance", Scale: Log10, Min: -4, Max: -1},
		{Name: "guidance", Scale: Linear, Min: 0, Max: 1, Hard: true},
		{Name: "radial_clamp", Scale: Linear, Min: 0, Max: 1, Hard: true},
		{Name: "torus", Scale: Linear, Min: 0, Max: 1, Hard: true},
	}
}

// FitnessDetails breaks a scalar fitness into its component metrics. It is
// written once per evaluation and is never an input to decode.
type FitnessDetails struct {
	RadialVariance  float64 `json:"radialVariance"`
	TangentialRatio float64 `json:"tangentialRatio"`
	Turns           float64 `json:"turns"`
	EnergyDrift     float64 `json:"energyDrift"`
	Survivors       int     `json:"survivors"`
}

// Genome is a fixed-shape vector of encoded gene values plus write-once
// evaluation annotations.
type Genome struct {
	ID        uuid.UUID
	Values    [NumGenes]float64
	Fitness   float64
	Details   FitnessDetails
	Evaluated bool
}

// Random returns a genome with every gene sampled uniformly within its
// clamp range.
func Random(specs []GeneSpec, rng *rand.Rand) *Genome {
	g := &Genome{ID: uuid.New()}
	for i, s := range specs {
		g.Values[i] = s.Min + rng.Float64()*(s.Max-s.Min)
	}
	return g
}

// Clamp forces every gene back into its declared range.
func (g *Genome) Clamp(specs []GeneSpec) {
	for i, s := range specs {
		if g.Values[i] < s.Min {
			g.Values[i] = s.Min
		}
		if g.Values[i] > s.Max {
			g.Values[i] = s.Max
		}
	}
}

// Mutate perturbs each gene with probability rate by uniform noise scaled
// to the gene's range, then clamps. Evaluation annotations are reset.
func (g *Genome) Mutate(specs []GeneSpec, rate, strength float64, rng *rand.Rand) {
	for i, s := range specs {
		if rng.Float64() >= rate {
			continue
		}
		g.Values[i] += (rng.Float64() - 0.5) * strength * (s.Max - s.Min)
	}
	g.Clamp(specs)
	g.Fitness = 0
	g.Details = FitnessDetails{}
	g.Evaluated = false
}

// Crossover produces a child by choosing, per gene, one parent's value
// uniformly. There is no blending.
func (g *Genome) Crossover(other *Genome, rng *rand.Rand) *Genome {
	child := &Genome{ID: uuid.New()}
	for i := range child.Values {
		if rng.Intn(2) == 0 {
			child.Values[i] = g.Values[i]
		} else {
			child.Values[i] = other.Values[i]
		}
	}
	return child
}

// Clone returns a deep copy keeping the evaluation annotations.
func (g *Genome) Clone() *Genome {
	c := *g
	return &c
}

// decoded returns the concrete value of gene i.
func (g *Genome) decoded(specs []GeneSpec, i int) float64 {
	if specs[i].Scale == Log10 {
		return math.Pow(10, g.Values[i])
	}
	return g.Values[i]
}

// Decode maps the genome onto a full simulation configuration, starting
// from the embedded defaults and normalizing the result. It is a pure
// function of the gene values.
func (g *Genome) Decode(specs []GeneSpec) config.Config {
	return g.DecodeOnto(config.Default(), specs)
}

// DecodeOnto overwrites the gene-controlled fields of base and normalizes
// the result. Fields no gene covers (timestep, merge rules, body limit,
// conserving mode) pass through from base untouched, so a user-supplied
// base config survives decode.
func (g *Genome) DecodeOnto(base config.Config, specs []GeneSpec) config.Config {
	cfg := base

	cfg.Physics.G = g.decoded(specs, GeneG)
	cfg.Physics.Softening = g.decoded(specs, GeneSoftening)
	cfg.Physics.ForceCap = g.decoded(specs, GeneForceCap)
	cfg.Physics.DTCeiling = g.decoded(specs, GeneDTCeiling)
	if g.decoded(specs, GeneTorus) >= 0.5 {
		cfg.Physics.Boundary = config.BoundaryTorus
	} else {
		cfg.Physics.Boundary = config.BoundaryOpen
	}

	cfg.Mass.Min = g.decoded(specs, GeneMinMass)
	cfg.Mass.Ratio = g.decoded(specs, GeneMassRatio)
	cfg.Mass.Shape = g.decoded(specs, GeneMassShape)

	cfg.Radius.Scale = g.decoded(specs, GeneRadiusScale)
	cfg.Radius.Power = g.decoded(specs, GeneRadiusPower)

	cfg.Launch.CompressorScale = g.decoded(specs, GeneCompressorScale)
	cfg.Launch.SpeedCeiling = g.decoded(specs, GeneCompressorCeiling)
	cfg.Launch.Strength = g.decoded(specs, GeneLaunchStrength)
	cfg.Launch.MassResistance = g.decoded(specs, GeneMassResistance)
	cfg.Launch.Guidance = g.decoded(specs, GeneGuidance)
	cfg.Launch.RadialClamp = g.decoded(specs, GeneRadialClamp)

	return cfg.Normalize()
}

// Genes returns the encoded values keyed by gene name, for export.
func (g *Genome) Genes(specs []GeneSpec) map[string]float64 {
	m := make(map[string]float64, len(specs))
	for i, s := range specs {
		m[s.Name] = g.Values[i]
	}
	return m
}
