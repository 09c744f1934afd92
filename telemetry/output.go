package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// GenerationStats summarizes one GA generation for the CSV log.
type GenerationStats struct {
	Generation   int     `csv:"generation"`
	BestFitness  float64 `csv:"best_fitness"`
	MeanFitness  float64 `csv:"mean_fitness"`
	WorstFitness float64 `csv:"worst_fitness"`
	BestTurns    float64 `csv:"best_turns"`
	BestDrift    float64 `csv:"best_drift"`
	Survivors    int     `csv:"best_survivors"`
}

// OutputManager writes run artifacts (energy history, merge events,
// generation stats) into a single output directory.
type OutputManager struct {
	dir string
}

// NewOutputManager creates the output directory. Returns nil if dir is
// empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir}, nil
}

// Dir returns the output directory.
func (om *OutputManager) Dir() string { return om.dir }

// WriteEnergyHistory writes the retained energy samples to energy.csv.
func (om *OutputManager) WriteEnergyHistory(samples []EnergySample) error {
	return om.writeCSV("energy.csv", &samples)
}

// WriteMergeEvents writes all merge events to merges.csv.
func (om *OutputManager) WriteMergeEvents(events []MergeEvent) error {
	return om.writeCSV("merges.csv", &events)
}

// WriteGenerationStats writes per-generation GA stats to generations.csv.
func (om *OutputManager) WriteGenerationStats(stats []GenerationStats) error {
	return om.writeCSV("generations.csv", &stats)
}

func (om *OutputManager) writeCSV(name string, rows interface{}) error {
	path := filepath.Join(om.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
