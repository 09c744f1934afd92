package genetics

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/pthm-cable/orrery/config"
)

func testSearch() config.SearchConfig {
	return config.SearchConfig{
		PopulationSize:   16,
		EliteCount:       2,
		TournamentK:      3,
		MutationRate:     0.3,
		MutationStrength: 0.3,
		Workers:          4,
	}
}

// sumEval scores a genome by the sum of its encoded values: deterministic,
// cheap, and improvable by the GA.
func sumEval(g *Genome) (float64, FitnessDetails, error) {
	var sum float64
	for _, v := range g.Values {
		sum += v
	}
	if sum < 0 {
		sum = 0
	}
	return sum, FitnessDetails{}, nil
}

func TestEvaluateScoresEveryGenome(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(1)))

	var mu sync.Mutex
	calls := 0
	pop.Evaluate(func(g *Genome) (float64, FitnessDetails, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return sumEval(g)
	}, nil)

	if calls != len(pop.Genomes) {
		t.Fatalf("evaluated %d genomes, want %d", calls, len(pop.Genomes))
	}
	for i, g := range pop.Genomes {
		if !g.Evaluated {
			t.Fatalf("genome %d left unevaluated", i)
		}
	}
}

func TestEvaluateSkipsElites(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(2)))
	pop.Evaluate(sumEval, nil)
	pop.Evolve()

	// Elites carried over with their fitness; only the children need work.
	reEvaluated := 0
	var mu sync.Mutex
	pop.Evaluate(func(g *Genome) (float64, FitnessDetails, error) {
		mu.Lock()
		reEvaluated++
		mu.Unlock()
		return sumEval(g)
	}, nil)

	want := len(pop.Genomes) - 2
	if reEvaluated != want {
		t.Fatalf("re-evaluated %d genomes, want %d", reEvaluated, want)
	}
}

func TestEvaluationFailureGetsWorstFitness(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(3)))

	boom := errors.New("diverged")
	pop.Evaluate(func(g *Genome) (float64, FitnessDetails, error) {
		return 99, FitnessDetails{Turns: 5}, boom
	}, nil)

	for _, g := range pop.Genomes {
		if g.Fitness != 0 {
			t.Fatalf("failed evaluation kept fitness %v", g.Fitness)
		}
		if !g.Evaluated {
			t.Fatal("failed genome must still count as evaluated")
		}
	}
}

func TestEvolveNeverRegressesBestFitness(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(4)))

	prevBest := -1.0
	for gen := 0; gen < 10; gen++ {
		pop.Evaluate(sumEval, nil)
		pop.Sort()
		best := pop.Best().Fitness
		if best < prevBest {
			t.Fatalf("generation %d: best fitness regressed %v -> %v", gen, prevBest, best)
		}
		prevBest = best
		pop.Evolve()
	}
}

func TestEvolveKeepsPopulationSize(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(5)))
	pop.Evaluate(sumEval, nil)

	for gen := 0; gen < 5; gen++ {
		pop.Evolve()
		if len(pop.Genomes) != 16 {
			t.Fatalf("population size drifted to %d", len(pop.Genomes))
		}
		pop.Evaluate(sumEval, nil)
	}
	if pop.Generation != 5 {
		t.Fatalf("generation counter = %d, want 5", pop.Generation)
	}
}

func TestBoundaryPressureExpandsBounds(t *testing.T) {
	search := testSearch()
	pop := NewPopulation(search, rand.New(rand.NewSource(6)))

	gi := GeneG
	origMin := pop.Specs[gi].Min

	// Pin the elites' gene to the min bound across two generations.
	for gen := 0; gen < 2; gen++ {
		for _, g := range pop.Genomes {
			g.Values[gi] = pop.Specs[gi].Min
		}
		pop.Evaluate(sumEval, nil)
		pop.Evolve()
	}

	if pop.Specs[gi].Min >= origMin {
		t.Fatalf("min bound %v not widened from %v", pop.Specs[gi].Min, origMin)
	}
	// Log-space gene: exactly one decade.
	if got := origMin - pop.Specs[gi].Min; got != 1 {
		t.Fatalf("log gene widened by %v, want one decade", got)
	}
}

func TestHardGenesNeverExpand(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(7)))

	gi := GeneGuidance
	for gen := 0; gen < 4; gen++ {
		for _, g := range pop.Genomes {
			g.Values[gi] = pop.Specs[gi].Max
		}
		pop.Evaluate(sumEval, nil)
		pop.Evolve()
	}

	if pop.Specs[gi].Max != 1 {
		t.Fatalf("hard-bounded gene expanded to max %v", pop.Specs[gi].Max)
	}
}

func TestBreedFromSelection(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(8)))
	pop.Evaluate(sumEval, nil)
	pop.Sort()

	keepA := pop.Genomes[3].ID
	keepB := pop.Genomes[7].ID
	pop.BreedFrom([]int{3, 7})

	if len(pop.Genomes) != 16 {
		t.Fatalf("population size changed to %d", len(pop.Genomes))
	}
	if pop.Genomes[0].ID != keepA || pop.Genomes[1].ID != keepB {
		t.Fatal("selected genomes did not survive unchanged")
	}
}

func TestExportBestRoundTrips(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(9)))
	pop.Evaluate(sumEval, nil)
	pop.Sort()

	export := pop.ExportBest()
	if export.Fitness != pop.Best().Fitness {
		t.Fatalf("export fitness %v != best %v", export.Fitness, pop.Best().Fitness)
	}
	if len(export.Genes) != NumGenes {
		t.Fatalf("export carries %d genes, want %d", len(export.Genes), NumGenes)
	}
	if export.Config.Physics.Softening <= 0 {
		t.Fatal("exported config not normalized")
	}
}

func TestBreedFromResetsBoundaryPressure(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(10)))

	gi := GeneG
	origMin := pop.Specs[gi].Min
	pin := func() {
		for _, g := range pop.Genomes {
			g.Values[gi] = pop.Specs[gi].Min
		}
		pop.Evaluate(sumEval, nil)
	}

	pin()
	pop.Evolve()
	pin()
	pop.BreedFrom([]int{0, 1})
	pin()
	pop.Evolve()

	// The selection started a new lineage, so the pre-selection pinned
	// generation must not count toward the expansion streak.
	if pop.Specs[gi].Min != origMin {
		t.Fatalf("min bound widened to %v from %v after one post-selection generation", pop.Specs[gi].Min, origMin)
	}
}

func TestExportBestUsesBaseConfig(t *testing.T) {
	pop := NewPopulation(testSearch(), rand.New(rand.NewSource(11)))
	pop.Base.Merge.Enabled = false
	pop.Base.Bodies.Max = 64

	pop.Evaluate(sumEval, nil)
	pop.Sort()

	export := pop.ExportBest()
	if export.Config.Merge.Enabled {
		t.Fatal("exported config lost the base merge.enabled=false override")
	}
	if export.Config.Bodies.Max != 64 {
		t.Fatalf("exported bodies.max = %d, want 64 from base", export.Config.Bodies.Max)
	}
}
