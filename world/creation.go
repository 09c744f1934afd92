package world

import (
	"math"

	"github.com/pthm-cable/orrery/physics"
)

// gestureSample is one observed pointer position during a creation hold.
type gestureSample struct {
	pos physics.Vec2
	t   float64
}

// gesture tracks an in-progress creation hold.
type gesture struct {
	samples []gestureSample
}

// BeginCreation starts a creation gesture at (x, y) with timestamp t in
// seconds. Returns false when the world is at its body limit; the request
// is rejected outright rather than dropped later.
func (w *World) BeginCreation(x, y, t float64) bool {
	if len(w.bodies) >= w.cfg.Bodies.Max {
		return false
	}
	w.gesture = &gesture{samples: []gestureSample{{pos: physics.Vec2{X: x, Y: y}, t: t}}}
	return true
}

// UpdateCreation records a pointer movement during an active gesture.
// Ignored when no gesture is active.
func (w *World) UpdateCreation(x, y, t float64) {
	if w.gesture == nil {
		return
	}
	w.gesture.samples = append(w.gesture.samples, gestureSample{pos: physics.Vec2{X: x, Y: y}, t: t})
}

// FinishCreation completes the gesture and launches the new body, or
// returns nil when no gesture was active or the world filled up meanwhile.
//
// Hold duration maps (eased) to mass between the configured minimum and the
// largest mass currently in the world. The trailing window of gesture
// samples maps to launch velocity through an exponential speed compressor,
// then launch-strength and mass-resistance scaling, the radial clamp, and
// finally the tangential guidance rotation.
func (w *World) FinishCreation() *physics.Body {
	g := w.gesture
	w.gesture = nil
	if g == nil || len(g.samples) == 0 {
		return nil
	}
	if len(w.bodies) >= w.cfg.Bodies.Max {
		return nil
	}

	first := g.samples[0]
	last := g.samples[len(g.samples)-1]

	mass := w.holdMass(last.t - first.t)
	vel := w.launchVelocity(g, mass)

	b := &physics.Body{
		ID:          w.allocID(),
		Pos:         w.integrator.Boundary.Wrap(last.pos, w.width, w.height),
		Vel:         vel,
		HalfVel:     vel,
		Mass:        mass,
		RadiusScale: w.cfg.Radius.Scale,
		RadiusPower: w.cfg.Radius.Power,
	}
	w.bodies = append(w.bodies, b)
	return b
}

// holdMass maps a hold duration to a mass between the configured minimum
// and the current largest on-screen mass.
func (w *World) holdMass(hold float64) float64 {
	min := w.cfg.Mass.Min
	max := min * w.cfg.Mass.Ratio
	for _, b := range w.bodies {
		if b.Mass > max {
			max = b.Mass
		}
	}

	frac := hold / w.cfg.Launch.HoldMax
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	eased := math.Pow(frac, w.cfg.Launch.HoldEase)
	return min + eased*(max-min)
}

// launchVelocity derives the launch velocity from the trailing gesture
// window and applies the full shaping pipeline.
func (w *World) launchVelocity(g *gesture, mass float64) physics.Vec2 {
	l := w.cfg.Launch
	last := g.samples[len(g.samples)-1]

	// Oldest sample still inside the trailing window.
	start := g.samples[0]
	for _, s := range g.samples {
		if last.t-s.t <= l.GestureWindow {
			start = s
			break
		}
	}
	span := last.t - start.t
	if span < physics.Epsilon {
		return physics.Vec2{}
	}
	raw := last.pos.Sub(start.pos).Scale(1 / span)

	speed := raw.Len()
	if speed < physics.Epsilon {
		return physics.Vec2{}
	}

	// Exponential compressor: fast flicks saturate at the ceiling instead
	// of launching bodies off to infinity.
	compressed := l.SpeedCeiling * (1 - math.Exp(-speed/l.CompressorScale))
	compressed *= l.Strength
	compressed /= 1 + l.MassResistance*mass

	vel := raw.Normalize().Scale(compressed)

	center, ok := physics.OrbitalCenter(last.pos, w.bodies, l.GuidanceRadius, l.GuidanceMinMass, w.integrator.Boundary, w.width, w.height)
	if !ok {
		return vel
	}

	// Radial clamp scales the component along the radius vector before the
	// speed-preserving guidance rotation.
	if l.RadialClamp < 1 {
		radial := w.integrator.Boundary.Delta(center, last.pos, w.width, w.height).Normalize()
		vr := vel.Dot(radial)
		vel = vel.Sub(radial.Scale(vr * (1 - l.RadialClamp)))
	}

	return physics.Guide(last.pos, vel, center, l.Guidance, w.integrator.Boundary, w.width, w.height)
}
