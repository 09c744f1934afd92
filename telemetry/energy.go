// Package telemetry tracks simulation energy over time and exports run
// statistics as CSV.
package telemetry

// historySize bounds the rolling energy history.
const historySize = 100

// trendThreshold is the relative total-energy change (oldest to newest
// retained sample) separating stable from drifting.
const trendThreshold = 0.01

// Trend classifies the short-term total-energy behaviour.
type Trend string

const (
	TrendStable     Trend = "stable"
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// EnergySample is one per-step energy measurement.
type EnergySample struct {
	Tick      int64   `csv:"tick"`
	Kinetic   float64 `csv:"kinetic"`
	Potential float64 `csv:"potential"`
	Total     float64 `csv:"total"`
}

// MergeEvent records the instantaneous energy change of one inelastic
// merge pass.
type MergeEvent struct {
	Tick   int64   `csv:"tick"`
	Pre    float64 `csv:"pre"`
	Post   float64 `csv:"post"`
	Delta  float64 `csv:"delta"`
	Merges int     `csv:"merges"`
}

// EnergyView is a read-only snapshot for observability overlays.
type EnergyView struct {
	Kinetic         float64
	Potential       float64
	Total           float64
	Trend           Trend
	IntegratorDrift float64
	MergeLoss       float64
	MergeCount      int
}

// EnergyLedger keeps a bounded rolling energy history and separates the
// energy change attributable to the integrator from the loss recorded at
// merge events. The separation is what lets a test assert "drift stays near
// zero while merges alone explain the measured loss".
type EnergyLedger struct {
	history []EnergySample
	merges  []MergeEvent

	drift      float64
	mergeLoss  float64
	mergeCount int

	lastTotal float64
	hasLast   bool
}

// NewEnergyLedger creates an empty ledger.
func NewEnergyLedger() *EnergyLedger {
	return &EnergyLedger{history: make([]EnergySample, 0, historySize)}
}

// Record appends a post-step sample. The change since the previous recorded
// total is attributed to the integrator.
func (l *EnergyLedger) Record(tick int64, kinetic, potential float64) {
	total := kinetic + potential
	if l.hasLast {
		l.drift += total - l.lastTotal
	}
	l.lastTotal = total
	l.hasLast = true

	if len(l.history) == historySize {
		copy(l.history, l.history[1:])
		l.history = l.history[:historySize-1]
	}
	l.history = append(l.history, EnergySample{Tick: tick, Kinetic: kinetic, Potential: potential, Total: total})
}

// RecordMerge books the instantaneous energy change of a merge pass. The
// delta is excluded from integrator drift by rebasing the last-seen total.
func (l *EnergyLedger) RecordMerge(tick int64, pre, post float64, merges int) {
	ev := MergeEvent{Tick: tick, Pre: pre, Post: post, Delta: post - pre, Merges: merges}
	l.merges = append(l.merges, ev)
	l.mergeLoss += ev.Delta
	l.mergeCount += merges
	l.lastTotal = post
	l.hasLast = true
}

// Trend classifies the history as stable, increasing or decreasing using
// the percentage change of total energy from the oldest to newest retained
// sample.
func (l *EnergyLedger) Trend() Trend {
	if len(l.history) < 2 {
		return TrendStable
	}
	oldest := l.history[0].Total
	newest := l.history[len(l.history)-1].Total
	if oldest == 0 {
		return TrendStable
	}
	change := (newest - oldest) / oldest
	// A negative total flips the sign of the ratio; gravitationally bound
	// systems usually sit at negative total energy.
	if oldest < 0 {
		change = -change
	}
	switch {
	case change > trendThreshold:
		return TrendIncreasing
	case change < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// IntegratorDrift returns the accumulated energy change between merges.
func (l *EnergyLedger) IntegratorDrift() float64 { return l.drift }

// MergeLoss returns the summed energy deltas of all merge events.
func (l *EnergyLedger) MergeLoss() float64 { return l.mergeLoss }

// History returns the retained samples, oldest first.
func (l *EnergyLedger) History() []EnergySample { return l.history }

// MergeEvents returns all recorded merge events.
func (l *EnergyLedger) MergeEvents() []MergeEvent { return l.merges }

// View returns a snapshot of the current state.
func (l *EnergyLedger) View() EnergyView {
	v := EnergyView{
		Trend:           l.Trend(),
		IntegratorDrift: l.drift,
		MergeLoss:       l.mergeLoss,
		MergeCount:      l.mergeCount,
	}
	if len(l.history) > 0 {
		last := l.history[len(l.history)-1]
		v.Kinetic = last.Kinetic
		v.Potential = last.Potential
		v.Total = last.Total
	}
	return v
}
