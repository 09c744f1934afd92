package genetics

import (
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pthm-cable/orrery/config"
)

// boundaryMargin is how close (as a fraction of the range) an elite gene
// must sit to a bound to count as pinned.
const boundaryMargin = 0.02

// boundaryPatience is the number of consecutive pinned generations before a
// bound is widened.
const boundaryPatience = 2

// EvalFunc scores one genome. Implementations must be safe to call from
// multiple goroutines with distinct genomes; a returned error marks the
// genome with the worst possible fitness instead of halting the generation.
type EvalFunc func(g *Genome) (float64, FitnessDetails, error)

// Population is a fixed-size collection of genomes evolved across
// generations. After Sort the order is descending fitness.
type Population struct {
	Genomes    []*Genome
	Specs      []GeneSpec
	Generation int

	// Base is the configuration genomes decode onto. Defaults to the
	// embedded defaults; callers with a user-supplied base config set it
	// so non-gene fields carry into every evaluation and export.
	Base config.Config

	search config.SearchConfig
	rng    *rand.Rand

	// Consecutive generations an elite gene has been pinned to a bound.
	lowStreak  [NumGenes]int
	highStreak [NumGenes]int
}

// NewPopulation creates a population of uniformly sampled genomes.
func NewPopulation(search config.SearchConfig, rng *rand.Rand) *Population {
	specs := DefaultSpecs()
	genomes := make([]*Genome, search.PopulationSize)
	for i := range genomes {
		genomes[i] = Random(specs, rng)
	}
	return &Population{
		Genomes: genomes,
		Specs:   specs,
		Base:    config.Default(),
		search:  search,
		rng:     rng,
	}
}

// Evaluate scores every unevaluated genome, fanning work out over a fixed
// worker pool (one simulation world per genome, no shared mutable state).
// The generation boundary is the synchronization point: Evaluate returns
// only when every genome has a fitness. progress may be nil.
func (p *Population) Evaluate(eval EvalFunc, progress func(done, total int)) {
	workers := p.search.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan *Genome)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0
	total := len(p.Genomes)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range jobs {
				fit, details, err := eval(g)
				if err != nil || fit < 0 {
					// A failed evaluation must not corrupt the population:
					// assign the worst fitness and keep going.
					fit = 0
					details = FitnessDetails{}
				}
				g.Fitness = fit
				g.Details = details
				g.Evaluated = true

				if progress != nil {
					mu.Lock()
					done++
					progress(done, total)
					mu.Unlock()
				}
			}
		}()
	}

	for _, g := range p.Genomes {
		if !g.Evaluated {
			jobs <- g
		} else if progress != nil {
			mu.Lock()
			done++
			progress(done, total)
			mu.Unlock()
		}
	}
	close(jobs)
	wg.Wait()
}

// Sort orders genomes by descending fitness.
func (p *Population) Sort() {
	sort.SliceStable(p.Genomes, func(i, j int) bool {
		return p.Genomes[i].Fitness > p.Genomes[j].Fitness
	})
}

// Best returns the fittest genome. Call after Sort.
func (p *Population) Best() *Genome { return p.Genomes[0] }

// MeanFitness returns the average fitness of the population.
func (p *Population) MeanFitness() float64 {
	if len(p.Genomes) == 0 {
		return 0
	}
	var sum float64
	for _, g := range p.Genomes {
		sum += g.Fitness
	}
	return sum / float64(len(p.Genomes))
}

// Evolve produces the next generation: sort, check boundary pressure, copy
// elites unchanged, then fill with tournament-selected, crossed-over,
// mutated children. Elitism guarantees the best fitness never regresses.
func (p *Population) Evolve() {
	p.Sort()
	p.expandPressuredBounds()

	next := make([]*Genome, 0, len(p.Genomes))
	for i := 0; i < p.search.EliteCount && i < len(p.Genomes); i++ {
		next = append(next, p.Genomes[i].Clone())
	}

	for len(next) < len(p.Genomes) {
		a := p.tournament()
		b := p.tournament()
		child := a.Crossover(b, p.rng)
		child.Mutate(p.Specs, p.search.MutationRate, p.search.MutationStrength, p.rng)
		next = append(next, child)
	}

	p.Genomes = next
	p.Generation++
}

// BreedFrom replaces the population with offspring bred exclusively from
// the genomes at the given indices (interactive "keep these" selection).
// The selected genomes survive unchanged.
func (p *Population) BreedFrom(indices []int) {
	var parents []*Genome
	for _, i := range indices {
		if i >= 0 && i < len(p.Genomes) {
			parents = append(parents, p.Genomes[i])
		}
	}
	if len(parents) == 0 {
		return
	}

	// The selection discards the population the pressure was measured on,
	// so accumulated boundary streaks no longer describe anything.
	p.lowStreak = [NumGenes]int{}
	p.highStreak = [NumGenes]int{}

	next := make([]*Genome, 0, len(p.Genomes))
	for _, g := range parents {
		if len(next) == len(p.Genomes) {
			break
		}
		next = append(next, g.Clone())
	}
	for len(next) < len(p.Genomes) {
		a := parents[p.rng.Intn(len(parents))]
		b := parents[p.rng.Intn(len(parents))]
		child := a.Crossover(b, p.rng)
		child.Mutate(p.Specs, p.search.MutationRate, p.search.MutationStrength, p.rng)
		next = append(next, child)
	}

	p.Genomes = next
	p.Generation++
}

// tournament samples k genomes uniformly and returns the fittest.
func (p *Population) tournament() *Genome {
	best := p.Genomes[p.rng.Intn(len(p.Genomes))]
	for i := 1; i < p.search.TournamentK; i++ {
		c := p.Genomes[p.rng.Intn(len(p.Genomes))]
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best
}

// expandPressuredBounds widens a gene's clamp range when any elite genome
// has sat within boundaryMargin of that bound for boundaryPatience
// consecutive generations. Log genes widen by one order of magnitude,
// linear genes by one current range width. Hand-picked initial ranges are
// guesses; this keeps a too-tight guess from trapping the search.
func (p *Population) expandPressuredBounds() {
	elites := p.search.EliteCount
	if elites > len(p.Genomes) {
		elites = len(p.Genomes)
	}

	for gi := range p.Specs {
		s := &p.Specs[gi]
		if s.Hard {
			continue
		}
		margin := boundaryMargin * (s.Max - s.Min)

		low, high := false, false
		for _, g := range p.Genomes[:elites] {
			if g.Values[gi] <= s.Min+margin {
				low = true
			}
			if g.Values[gi] >= s.Max-margin {
				high = true
			}
		}

		if low {
			p.lowStreak[gi]++
		} else {
			p.lowStreak[gi] = 0
		}
		if high {
			p.highStreak[gi]++
		} else {
			p.highStreak[gi] = 0
		}

		step := s.Max - s.Min
		if s.Scale == Log10 {
			step = 1 // one decade in encoded space
		}
		if p.lowStreak[gi] >= boundaryPatience {
			s.Min -= step
			p.lowStreak[gi] = 0
		}
		if p.highStreak[gi] >= boundaryPatience {
			s.Max += step
			p.highStreak[gi] = 0
		}
	}
}

// BestExport is the serializable record of the best genome. This is the
// only serialization boundary of the search engine.
type BestExport struct {
	ID         uuid.UUID          `json:"id"`
	Generation int                `json:"generation"`
	Genes      map[string]float64 `json:"genome"`
	Config     config.Config      `json:"decodedConfig"`
	Fitness    float64            `json:"fitness"`
	Details    FitnessDetails     `json:"fitnessDetails"`
}

// ExportBest returns the best genome with its decoded configuration.
// Call after Sort (or Evolve, which sorts).
func (p *Population) ExportBest() BestExport {
	best := p.Best()
	return BestExport{
		ID:         best.ID,
		Generation: p.Generation,
		Genes:      best.Genes(p.Specs),
		Config:     best.DecodeOnto(p.Base, p.Specs),
		Fitness:    best.Fitness,
		Details:    best.Details,
	}
}
