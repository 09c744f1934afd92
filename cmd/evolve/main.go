// Command evolve searches for simulation parameters that produce stable,
// long-lived orbital motion, using a genetic algorithm over a log-space
// genome.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/fitness"
	"github.com/pthm-cable/orrery/genetics"
	"github.com/pthm-cable/orrery/telemetry"
)

// formatDuration formats a duration as h/m/s for progress lines.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 50, "Number of generations to run")
	popSize := flag.Int("population", 0, "Population size (0 = use config)")
	workers := flag.Int("workers", 0, "Parallel evaluation workers (0 = GOMAXPROCS)")
	duration := flag.Float64("duration", 30, "Simulated seconds per evaluation")
	seed := flag.Int64("seed", 42, "RNG seed for the search")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := *config.Cfg()
	search := baseCfg.Search
	if *popSize > 0 {
		search.PopulationSize = *popSize
	}
	if *workers > 0 {
		search.Workers = *workers
	}

	rng := rand.New(rand.NewSource(*seed))
	pop := genetics.NewPopulation(search, rng)
	pop.Base = baseCfg

	evaluator := fitness.NewEvaluator()
	evaluator.Base = baseCfg
	evaluator.Duration = *duration
	eval := func(g *genetics.Genome) (float64, genetics.FitnessDetails, error) {
		return evaluator.Evaluate(g, pop.Specs)
	}

	// Cancellation is cooperative and coarse-grained: we only check between
	// generations, never mid-evaluation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logPath := filepath.Join(*outputDir, "evolve_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"generation", "best_fitness", "mean_fitness"}
	for _, spec := range pop.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	fmt.Printf("Starting GA search: population=%d, generations=%d, %.0fs sim per eval\n",
		search.PopulationSize, *generations, *duration)

	startTime := time.Now()
	var genStats []telemetry.GenerationStats

	for gen := 0; gen < *generations; gen++ {
		if ctx.Err() != nil {
			fmt.Println("\nInterrupted; stopping after completed generation")
			break
		}

		pop.Evaluate(eval, func(done, total int) {
			fmt.Printf("\rGen %d/%d: evaluated %d/%d", gen+1, *generations, done, total)
		})
		pop.Sort()

		best := pop.Best()
		mean := pop.MeanFitness()

		row := []string{strconv.Itoa(pop.Generation), fmt.Sprintf("%.6f", best.Fitness), fmt.Sprintf("%.6f", mean)}
		for _, v := range best.Values {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		genStats = append(genStats, telemetry.GenerationStats{
			Generation:   pop.Generation,
			BestFitness:  best.Fitness,
			MeanFitness:  mean,
			WorstFitness: pop.Genomes[len(pop.Genomes)-1].Fitness,
			BestTurns:    best.Details.Turns,
			BestDrift:    best.Details.EnergyDrift,
			Survivors:    best.Details.Survivors,
		})

		elapsed := time.Since(startTime)
		avgPerGen := elapsed / time.Duration(gen+1)
		remaining := time.Duration(*generations-gen-1) * avgPerGen
		fmt.Printf("\rGen %d/%d: best=%.4f mean=%.4f turns=%.1f survivors=%d | elapsed: %s, ETA: %s\n",
			gen+1, *generations, best.Fitness, mean, best.Details.Turns, best.Details.Survivors,
			formatDuration(elapsed), formatDuration(remaining))

		pop.Evolve()
	}

	// Evolve re-sorted before breeding, so the elites lead the population.
	pop.Sort()
	export := pop.ExportBest()

	totalTime := time.Since(startTime)
	fmt.Printf("\nSearch complete after %d generations in %s\n", pop.Generation, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f\n", export.Fitness)
	fmt.Println("\nBest genes (encoded):")
	for _, spec := range pop.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, export.Genes[spec.Name])
	}

	bestPath := filepath.Join(*outputDir, "best.json")
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		log.Printf("failed to marshal best genome: %v", err)
	} else if err := os.WriteFile(bestPath, data, 0644); err != nil {
		log.Printf("failed to write best genome: %v", err)
	} else {
		fmt.Printf("\nBest genome saved to: %s\n", bestPath)
	}

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := export.Config.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("Best config saved to: %s\n", configOutPath)
	}

	if err := om.WriteGenerationStats(genStats); err != nil {
		log.Printf("failed to write generation stats: %v", err)
	}
}
