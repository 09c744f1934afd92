// Package world owns the simulation state: the body list, the active
// configuration and the fixed-timestep loop composing the integrator,
// merge resolver and energy ledger.
package world

import (
	"math"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/physics"
	"github.com/pthm-cable/orrery/telemetry"
)

// World owns all bodies exclusively. Its per-step update is single-threaded
// and runs as one atomic unit per fixed timestep; run one World per
// goroutine when evaluating genomes in parallel.
type World struct {
	bodies []*physics.Body
	cfg    config.Config

	width  float64
	height float64

	accum float64
	tick  int64

	integrator physics.Integrator
	ledger     *telemetry.EnergyLedger

	nextID  int64
	gesture *gesture
}

// BodySeed describes one body of an initial layout.
type BodySeed struct {
	X, Y, Mass float64
}

// New creates an empty world. The configuration is normalized on the way
// in, so energy-conserving invariants hold from the first step.
func New(cfg config.Config, width, height float64) *World {
	w := &World{
		width:  width,
		height: height,
		ledger: telemetry.NewEnergyLedger(),
	}
	w.SetConfig(cfg)
	return w
}

// SetConfig hot-swaps the configuration. The value is re-normalized every
// time: conserving mode must never silently re-enable damping or force
// capping, no matter what the caller passes in.
func (w *World) SetConfig(cfg config.Config) {
	w.cfg = cfg.Normalize()
	w.integrator = physics.Integrator{
		Force: physics.ForceLaw{
			G:         w.cfg.Physics.G,
			Softening: w.cfg.Physics.Softening,
			Degree:    w.cfg.Physics.PotentialDegree,
			Cap:       w.cfg.Physics.ForceCap,
		},
		Boundary:     w.boundary(),
		Width:        w.width,
		Height:       w.height,
		Damping:      w.cfg.Physics.Damping,
		SpeedClamp:   w.cfg.Physics.SpeedClamp,
		SpeedCeiling: w.cfg.Physics.SpeedCeiling,
	}
}

// Config returns the active (normalized) configuration.
func (w *World) Config() config.Config { return w.cfg }

// Bodies returns the live body slice. Callers must not mutate it.
func (w *World) Bodies() []*physics.Body { return w.bodies }

// Tick returns the number of fixed steps taken so far.
func (w *World) Tick() int64 { return w.tick }

// Size returns the world dimensions.
func (w *World) Size() (width, height float64) { return w.width, w.height }

func (w *World) boundary() physics.Boundary {
	if w.cfg.Physics.Boundary == config.BoundaryTorus {
		return physics.Torus
	}
	return physics.Open
}

// Advance adds real elapsed time to the fixed-timestep accumulator and runs
// as many whole fixed steps as it covers. Dynamics are therefore identical
// whether the caller advances in one large or many small increments.
func (w *World) Advance(realDt float64) {
	if realDt <= 0 {
		return
	}
	dt := w.cfg.Physics.DT
	w.accum += realDt
	for w.accum >= dt {
		w.step(dt)
		w.accum -= dt
	}
}

// step runs one fixed timestep: integrate, book energy, then resolve merges
// and book their loss separately so integrator drift stays attributable.
func (w *World) step(dt float64) {
	w.integrator.Step(w.bodies, dt)
	w.tick++

	ke, pe := physics.Energy(w.bodies, w.integrator.Force, w.integrator.Boundary, w.width, w.height)
	w.ledger.Record(w.tick, ke, pe)

	if !w.cfg.Merge.Enabled {
		return
	}
	merged, n := physics.ResolveMerges(w.bodies, w.integrator.Boundary, w.width, w.height, w.cfg.Merge.StopMass, w.allocID)
	if n == 0 {
		return
	}
	w.bodies = merged
	postKE, postPE := physics.Energy(w.bodies, w.integrator.Force, w.integrator.Boundary, w.width, w.height)
	w.ledger.RecordMerge(w.tick, ke+pe, postKE+postPE, n)
}

func (w *World) allocID() int64 {
	w.nextID++
	return w.nextID
}

// Seed replaces the body population with the given layout and assigns each
// body a quasi-circular tangential velocity computed from an approximate
// central mass, so loaded layouts start in stable-looking motion.
func (w *World) Seed(seeds []BodySeed, width, height float64) {
	w.width = width
	w.height = height
	w.SetConfig(w.cfg) // integrator carries the dimensions

	w.bodies = w.bodies[:0]
	w.accum = 0

	var totalMass float64
	var center physics.Vec2
	for _, s := range seeds {
		totalMass += s.Mass
		center = center.Add(physics.Vec2{X: s.X, Y: s.Y}.Scale(s.Mass))
	}
	if totalMass > physics.Epsilon {
		center = center.Scale(1 / totalMass)
	}

	for _, s := range seeds {
		b := &physics.Body{
			ID:          w.allocID(),
			Pos:         physics.Vec2{X: s.X, Y: s.Y},
			Mass:        s.Mass,
			RadiusScale: w.cfg.Radius.Scale,
			RadiusPower: w.cfg.Radius.Power,
		}
		radial := b.Pos.Sub(center)
		r := radial.Len()
		if r > physics.Epsilon {
			// Circular-orbit speed around the rest of the mass treated as
			// a point at the weighted center.
			central := totalMass - s.Mass
			if central > physics.Epsilon {
				speed := math.Sqrt(w.cfg.Physics.G * central / r)
				b.Vel = radial.Perp().Normalize().Scale(speed)
				b.HalfVel = b.Vel
			}
		}
		w.bodies = append(w.bodies, b)
	}
}

// EnergySnapshot returns the ledger view for observability overlays.
func (w *World) EnergySnapshot() telemetry.EnergyView { return w.ledger.View() }

// Ledger exposes the full energy ledger (history, merge events).
func (w *World) Ledger() *telemetry.EnergyLedger { return w.ledger }
