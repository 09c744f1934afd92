package physics

// Integrator advances bodies with a symplectic kick-drift-kick scheme.
//
// Each step runs two passes. Pass 1 computes all pairwise accelerations from
// a single consistent snapshot of positions, half-kicks the velocities and
// drifts the positions. Pass 2 recomputes accelerations at the new positions
// and applies the second half-kick. Skipping pass 2, or reusing the pass-1
// accelerations, degrades the scheme to explicit Euler and loses the
// long-run energy behaviour.
type Integrator struct {
	Force    ForceLaw
	Boundary Boundary
	Width    float64
	Height   float64

	Damping float64 // velocity decay per second; 0 in energy-conserving mode

	// SpeedClamp is a hard safety valve against runaway velocities from
	// close encounters. It is not part of the Hamiltonian dynamics and is
	// toggleable on its own; conserving mode turns it off.
	SpeedClamp   bool
	SpeedCeiling float64

	acc []Vec2 // scratch, reused across steps
}

// Step advances every body by exactly dt.
func (in *Integrator) Step(bodies []*Body, dt float64) {
	n := len(bodies)
	if n == 0 {
		return
	}
	if cap(in.acc) < n {
		in.acc = make([]Vec2, n)
	}
	acc := in.acc[:n]

	// Pass 1: accelerations from the pre-step position snapshot.
	in.accumulate(bodies, acc)
	for i, b := range bodies {
		b.HalfVel = b.HalfVel.Add(acc[i].Scale(dt / 2))
		b.Pos = in.Boundary.Wrap(b.Pos.Add(b.HalfVel.Scale(dt)), in.Width, in.Height)
		if in.Damping > 0 {
			b.HalfVel = b.HalfVel.Scale(1 - in.Damping*dt)
		}
		if in.SpeedClamp && in.SpeedCeiling > 0 {
			s := b.HalfVel.Len()
			if s > in.SpeedCeiling {
				b.HalfVel = b.HalfVel.Scale(in.SpeedCeiling / s)
			}
		}
	}

	// Pass 2: accelerations at the new positions, second half-kick, and the
	// read-only velocity projection.
	in.accumulate(bodies, acc)
	for i, b := range bodies {
		b.HalfVel = b.HalfVel.Add(acc[i].Scale(dt / 2))
		b.Vel = b.HalfVel
	}
}

// accumulate sums pairwise accelerations into acc. Positions are only read,
// never written, so the whole pass sees one consistent snapshot.
func (in *Integrator) accumulate(bodies []*Body, acc []Vec2) {
	for i := range acc {
		acc[i] = Vec2{}
	}
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			d := in.Boundary.Delta(bodies[i].Pos, bodies[j].Pos, in.Width, in.Height)
			fv := in.Force.Pair(bodies[i].Mass, bodies[j].Mass, d)
			acc[i] = acc[i].Add(fv.Scale(1 / bodies[i].Mass))
			acc[j] = acc[j].Sub(fv.Scale(1 / bodies[j].Mass))
		}
	}
}

// Energy returns the kinetic and potential energy of the system, measured
// with the same boundary policy as the force pass. Mixing boundary policies
// between force and energy would make drift measurements meaningless.
func Energy(bodies []*Body, f ForceLaw, bd Boundary, w, h float64) (kinetic, potential float64) {
	for i, b := range bodies {
		kinetic += 0.5 * b.Mass * b.Vel.LenSq()
		for j := i + 1; j < len(bodies); j++ {
			d := bd.Delta(b.Pos, bodies[j].Pos, w, h)
			potential += f.Potential(b.Mass, bodies[j].Mass, d)
		}
	}
	return kinetic, potential
}
