package world

import "github.com/pthm-cable/orrery/telemetry"

// Stats is a debug snapshot for observability overlays.
type Stats struct {
	Tick        int64
	Bodies      int
	TotalMass   float64
	LargestMass float64
	Energy      telemetry.EnergyView
}

// DebugStats returns a snapshot of the current world state.
func (w *World) DebugStats() Stats {
	s := Stats{
		Tick:   w.tick,
		Bodies: len(w.bodies),
		Energy: w.ledger.View(),
	}
	for _, b := range w.bodies {
		s.TotalMass += b.Mass
		if b.Mass > s.LargestMass {
			s.LargestMass = b.Mass
		}
	}
	return s
}
