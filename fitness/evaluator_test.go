package fitness

import (
	"math"
	"testing"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/genetics"
	"github.com/pthm-cable/orrery/world"
)

func TestScenarioSeedIsDeterministic(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	sc := DefaultScenario()

	a := world.New(*cfg, 800, 800)
	b := world.New(*cfg, 800, 800)
	sc.Seed(a, 800, 800)
	sc.Seed(b, 800, 800)

	if len(a.Bodies()) != sc.Bodies {
		t.Fatalf("seeded %d bodies, want %d", len(a.Bodies()), sc.Bodies)
	}
	for i := range a.Bodies() {
		if a.Bodies()[i].Pos != b.Bodies()[i].Pos || a.Bodies()[i].Vel != b.Bodies()[i].Vel {
			t.Fatalf("body %d differs between identical seeds", i)
		}
	}
}

func TestScenarioMassVariesLinearly(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	sc := DefaultScenario()
	w := world.New(*cfg, 800, 800)
	sc.Seed(w, 800, 800)

	bodies := w.Bodies()
	first := bodies[0].Mass
	last := bodies[len(bodies)-1].Mass
	if math.Abs(first-cfg.Mass.Min) > 1e-9 {
		t.Errorf("first mass = %v, want config minimum %v", first, cfg.Mass.Min)
	}
	if math.Abs(last-cfg.Mass.Min*cfg.Mass.Ratio) > 1e-9 {
		t.Errorf("last mass = %v, want config maximum %v", last, cfg.Mass.Min*cfg.Mass.Ratio)
	}
	for i := 1; i < len(bodies); i++ {
		if bodies[i].Mass <= bodies[i-1].Mass {
			t.Fatalf("mass not increasing across the ring at %d", i)
		}
	}
}

func TestEvaluateConfigProducesFiniteFitness(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	e := NewEvaluator()
	e.Duration = 5 // keep the test fast

	fit, details, err := e.EvaluateConfig(*cfg)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if fit < 0 || math.IsNaN(fit) || math.IsInf(fit, 0) {
		t.Fatalf("fitness = %v", fit)
	}
	if details.Survivors <= 0 {
		t.Fatalf("no survivors recorded: %+v", details)
	}
	if details.TangentialRatio < 0 || details.TangentialRatio > 1 {
		t.Fatalf("tangential ratio = %v outside [0,1]", details.TangentialRatio)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	d := genetics.FitnessDetails{
		RadialVariance: 1e9,
		EnergyDrift:    1e9,
		Survivors:      0,
	}
	if got := score(d, 6); got != 0 {
		t.Fatalf("score = %v, want clamp at 0", got)
	}
}

func TestScoreRewardsStableOrbits(t *testing.T) {
	good := genetics.FitnessDetails{
		RadialVariance:  0.01,
		TangentialRatio: 0.95,
		Turns:           5,
		EnergyDrift:     0.01,
		Survivors:       10,
	}
	bad := genetics.FitnessDetails{
		RadialVariance:  5,
		TangentialRatio: 0.2,
		Turns:           0.2,
		EnergyDrift:     2,
		Survivors:       2,
	}
	if score(good, 6) <= score(bad, 6) {
		t.Fatalf("stable orbit scored %v, unstable %v", score(good, 6), score(bad, 6))
	}
}
