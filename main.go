package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/fitness"
	"github.com/pthm-cable/orrery/telemetry"
	"github.com/pthm-cable/orrery/world"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	width := flag.Float64("width", 0, "World width (0 = use config screen size)")
	height := flag.Float64("height", 0, "World height (0 = use config screen size)")
	bodies := flag.Int("bodies", 12, "Number of bodies in the seeded ring")
	scatter := flag.Int("scatter", 0, "Extra randomly placed bodies on top of the ring")
	seed := flag.Int64("seed", 1, "Random seed for scattered bodies")
	duration := flag.Float64("duration", 60, "Simulated seconds to run")
	logEvery := flag.Float64("log-every", 5, "Simulated seconds between stats log lines")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := *config.Cfg()

	w := *width
	h := *height
	if w <= 0 {
		w = float64(cfg.Screen.Width)
	}
	if h <= 0 {
		h = float64(cfg.Screen.Height)
	}

	sim := world.New(cfg, w, h)
	sc := fitness.DefaultScenario()
	sc.Bodies = *bodies
	sc.Seed(sim, w, h)
	if *scatter > 0 {
		sim.SpawnRandom(*scatter, rand.New(rand.NewSource(*seed)))
	}

	slog.Info("simulation start",
		"bodies", *bodies+*scatter,
		"dt", sim.Config().Physics.DT,
		"boundary", sim.Config().Physics.Boundary,
		"conserve_energy", sim.Config().Physics.ConserveEnergy)

	for t := 0.0; t < *duration; t += *logEvery {
		chunk := *logEvery
		if t+chunk > *duration {
			chunk = *duration - t
		}
		sim.Advance(chunk)

		stats := sim.DebugStats()
		slog.Info("stats",
			"tick", stats.Tick,
			"bodies", stats.Bodies,
			"total_mass", stats.TotalMass,
			"largest_mass", stats.LargestMass,
			"kinetic", stats.Energy.Kinetic,
			"potential", stats.Energy.Potential,
			"total", stats.Energy.Total,
			"trend", stats.Energy.Trend,
			"drift", stats.Energy.IntegratorDrift,
			"merge_loss", stats.Energy.MergeLoss,
			"merges", stats.Energy.MergeCount)
	}

	if *outputDir != "" {
		om, err := telemetry.NewOutputManager(*outputDir)
		if err != nil {
			slog.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		if err := om.WriteEnergyHistory(sim.Ledger().History()); err != nil {
			slog.Error("failed to write energy history", "error", err)
		}
		if err := om.WriteMergeEvents(sim.Ledger().MergeEvents()); err != nil {
			slog.Error("failed to write merge events", "error", err)
		}
		if err := sim.Config().WriteYAML(om.Dir() + "/config.yaml"); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	final := sim.DebugStats()
	slog.Info("simulation done",
		"tick", final.Tick,
		"bodies", final.Bodies,
		"drift", final.Energy.IntegratorDrift,
		"merge_loss", final.Energy.MergeLoss)
}
