package fitness

import (
	"math"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/genetics"
	"github.com/pthm-cable/orrery/physics"
	"github.com/pthm-cable/orrery/world"
)

// Fitness component weights and shaping constants.
const (
	weightRadial     = 2.0
	weightTangential = 2.0
	weightTurns      = 1.0
	weightDrift      = 1.0
	weightSurvivors  = 1.0

	turnsCap        = 8.0 // completed turns beyond this stop adding fitness
	radialFalloff   = 4.0
	driftFalloff    = 5.0
	survivorPenalty = 2.0 // applied when survivors fall below half the threshold
)

// Scenario is the standardized initial layout every genome is scored
// against: a fixed-count ring with linearly varying mass and tangential
// speed. Nothing is randomized, so evaluations are reproducible.
type Scenario struct {
	Bodies   int
	RingFrac float64 // ring radius as a fraction of the half-extent
	SpeedMin float64 // tangential speed scale of the first body
	SpeedMax float64 // tangential speed scale of the last body
}

// DefaultScenario returns the standard ring layout.
func DefaultScenario() Scenario {
	return Scenario{Bodies: 12, RingFrac: 0.6, SpeedMin: 0.85, SpeedMax: 1.15}
}

// Seed places the scenario into w. Masses vary linearly from the config's
// minimum to its maximum across the ring; the quasi-circular speeds the
// world assigns are then scaled linearly across the ring.
func (s Scenario) Seed(w *world.World, width, height float64) {
	cfg := w.Config()
	half := math.Min(width, height) / 2
	ring := half * s.RingFrac
	cx, cy := width/2, height/2

	minMass := cfg.Mass.Min
	maxMass := minMass * cfg.Mass.Ratio

	seeds := make([]world.BodySeed, s.Bodies)
	for i := range seeds {
		frac := 0.0
		if s.Bodies > 1 {
			frac = float64(i) / float64(s.Bodies-1)
		}
		angle := 2 * math.Pi * float64(i) / float64(s.Bodies)
		seeds[i] = world.BodySeed{
			X:    cx + ring*math.Cos(angle),
			Y:    cy + ring*math.Sin(angle),
			Mass: minMass + frac*(maxMass-minMass),
		}
	}
	w.Seed(seeds, width, height)

	for i, b := range w.Bodies() {
		frac := 0.0
		if s.Bodies > 1 {
			frac = float64(i) / float64(s.Bodies-1)
		}
		scale := s.SpeedMin + frac*(s.SpeedMax-s.SpeedMin)
		b.Vel = b.Vel.Scale(scale)
		b.HalfVel = b.Vel
	}
}

// Evaluator runs headless simulations and reduces orbital metrics to a
// scalar fitness. One world is created per evaluation, so a single
// Evaluator is safe to share across worker goroutines.
type Evaluator struct {
	Scenario     Scenario
	Base         config.Config // config genomes decode onto
	Width        float64
	Height       float64
	Duration     float64 // simulated seconds per evaluation
	SampleEvery  float64 // simulated seconds between samples
	MinSurvivors int
}

// NewEvaluator returns an evaluator with the standard scenario, decoding
// genomes onto the embedded default configuration.
func NewEvaluator() *Evaluator {
	sc := DefaultScenario()
	return &Evaluator{
		Scenario:     sc,
		Base:         config.Default(),
		Width:        800,
		Height:       800,
		Duration:     30,
		SampleEvery:  0.25,
		MinSurvivors: sc.Bodies / 2,
	}
}

// Evaluate decodes the genome onto the base config, runs the standardized
// scenario for the fixed duration and returns the weighted fitness.
// Fitness is never negative.
func (e *Evaluator) Evaluate(g *genetics.Genome, specs []genetics.GeneSpec) (float64, genetics.FitnessDetails, error) {
	cfg := g.DecodeOnto(e.Base, specs)
	return e.EvaluateConfig(cfg)
}

// EvaluateConfig scores an already-decoded configuration.
func (e *Evaluator) EvaluateConfig(cfg config.Config) (float64, genetics.FitnessDetails, error) {
	w := world.New(cfg, e.Width, e.Height)
	e.Scenario.Seed(w, e.Width, e.Height)

	initKE := kinetic(w.Bodies())
	center := physics.Vec2{X: e.Width / 2, Y: e.Height / 2}
	series := make(map[int64][]BodySample)

	for t := 0.0; t < e.Duration; t += e.SampleEvery {
		w.Advance(e.SampleEvery)
		for _, b := range w.Bodies() {
			series[b.ID] = append(series[b.ID], BodySample{Pos: b.Pos, Vel: b.Vel})
		}
	}

	finalKE := kinetic(w.Bodies())
	drift := 0.0
	if initKE > physics.Epsilon {
		drift = math.Abs(finalKE-initKE) / initKE
	}

	// Aggregate per-body series. The tangential ratio is sample-weighted so
	// short-lived (merged-away) bodies do not dominate.
	var radialSum, turnsSum float64
	var seriesN int
	var ratioSum float64
	var ratioWeight float64
	for _, samples := range series {
		if len(samples) < 2 {
			continue
		}
		m := ComputeMetrics(samples, center)
		radialSum += m.RadialVariance
		turnsSum += m.Turns
		seriesN++
		ratioSum += m.TangentialRatio * float64(len(samples))
		ratioWeight += float64(len(samples))
	}

	details := genetics.FitnessDetails{
		EnergyDrift: drift,
		Survivors:   len(w.Bodies()),
	}
	if seriesN > 0 {
		details.RadialVariance = radialSum / float64(seriesN)
		details.Turns = turnsSum / float64(seriesN)
	}
	if ratioWeight > 0 {
		details.TangentialRatio = ratioSum / ratioWeight
	}

	fit := score(details, e.MinSurvivors)
	if math.IsNaN(fit) || math.IsInf(fit, 0) {
		return 0, genetics.FitnessDetails{}, nil
	}
	return fit, details, nil
}

// score reduces the metrics to the weighted scalar fitness, clamped at
// zero.
func score(d genetics.FitnessDetails, minSurvivors int) float64 {
	fit := weightRadial / (1 + radialFalloff*d.RadialVariance)
	fit += weightTangential * d.TangentialRatio
	fit += weightTurns * math.Min(d.Turns, turnsCap) / turnsCap
	fit += weightDrift / (1 + driftFalloff*d.EnergyDrift)

	if minSurvivors > 0 {
		surv := d.Survivors
		if surv > minSurvivors {
			surv = minSurvivors
		}
		fit += weightSurvivors * float64(surv) / float64(minSurvivors)
		if d.Survivors < minSurvivors/2 {
			fit -= survivorPenalty
		}
	}

	if fit < 0 {
		return 0
	}
	return fit
}

func kinetic(bodies []*physics.Body) float64 {
	var ke float64
	for _, b := range bodies {
		ke += 0.5 * b.Mass * b.Vel.LenSq()
	}
	return ke
}
