package physics

// mergePair records a merge decision by index. Decisions are collected
// first and the body list is rebuilt once, so the pair scan never iterates
// over a list it is mutating.
type mergePair struct {
	a, b int
}

// ResolveMerges scans all unordered pairs once and merges every pair whose
// center distance is below the sum of their radii. Each body merges into at
// most one partner per call (first match wins, no chaining). Bodies at or
// above stopMass no longer participate (stopMass 0 disables the cutoff).
//
// The merged body conserves mass and momentum; the collision is inelastic
// and loses kinetic energy by construction. nextID assigns the merged
// body's ID. Returns the rebuilt slice and the number of merges performed.
func ResolveMerges(bodies []*Body, bd Boundary, w, h, stopMass float64, nextID func() int64) ([]*Body, int) {
	n := len(bodies)
	if n < 2 {
		return bodies, 0
	}

	taken := make([]bool, n)
	var pairs []mergePair
	for i := 0; i < n; i++ {
		if taken[i] {
			continue
		}
		if stopMass > 0 && bodies[i].Mass >= stopMass {
			continue
		}
		for j := i + 1; j < n; j++ {
			if taken[j] {
				continue
			}
			if stopMass > 0 && bodies[j].Mass >= stopMass {
				continue
			}
			d := bd.Delta(bodies[i].Pos, bodies[j].Pos, w, h)
			sum := bodies[i].Radius() + bodies[j].Radius()
			if d.LenSq() < sum*sum {
				pairs = append(pairs, mergePair{i, j})
				taken[i] = true
				taken[j] = true
				break
			}
		}
	}
	if len(pairs) == 0 {
		return bodies, 0
	}

	out := make([]*Body, 0, n-len(pairs))
	for i, b := range bodies {
		if !taken[i] {
			out = append(out, b)
		}
	}
	for _, p := range pairs {
		out = append(out, merge(bodies[p.a], bodies[p.b], bd, w, h, nextID()))
	}
	return out, len(pairs)
}

// merge combines two bodies into one. Position is the mass-weighted center
// along the minimum-image displacement, re-wrapped into bounds; the radius
// mapping is inherited from the heavier parent.
func merge(a, b *Body, bd Boundary, w, h float64, id int64) *Body {
	mass := a.Mass + b.Mass
	vel := a.Vel.Scale(a.Mass / mass).Add(b.Vel.Scale(b.Mass / mass))

	d := bd.Delta(a.Pos, b.Pos, w, h)
	pos := bd.Wrap(a.Pos.Add(d.Scale(b.Mass/mass)), w, h)

	heavier := a
	if b.Mass > a.Mass {
		heavier = b
	}
	return &Body{
		ID:          id,
		Pos:         pos,
		Vel:         vel,
		HalfVel:     vel,
		Mass:        mass,
		RadiusScale: heavier.RadiusScale,
		RadiusPower: heavier.RadiusPower,
	}
}
