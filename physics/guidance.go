package physics

// OrbitalCenter finds the local orbital center seen from pos: the nearest
// body with at least minMass within searchRadius anchors the search, and
// every other body within that radius contributes to a mass-weighted center
// of mass. Returns false when no sufficiently massive body is in range.
func OrbitalCenter(pos Vec2, bodies []*Body, searchRadius, minMass float64, bd Boundary, w, h float64) (Vec2, bool) {
	r2 := searchRadius * searchRadius

	anchor := -1
	best := r2
	for i, b := range bodies {
		if b.Mass < minMass {
			continue
		}
		d2 := bd.Delta(pos, b.Pos, w, h).LenSq()
		if d2 <= best {
			best = d2
			anchor = i
		}
	}
	if anchor < 0 {
		return Vec2{}, false
	}

	// Mass-weighted center over everything in range, accumulated in
	// minimum-image displacements so toroidal wrap cannot skew the center.
	var sum Vec2
	var mass float64
	for _, b := range bodies {
		d := bd.Delta(pos, b.Pos, w, h)
		if d.LenSq() > r2 {
			continue
		}
		sum = sum.Add(d.Scale(b.Mass))
		mass += b.Mass
	}
	if mass < Epsilon {
		return Vec2{}, false
	}
	return bd.Wrap(pos.Add(sum.Scale(1/mass)), w, h), true
}

// Guide rotates a launch velocity toward the locally tangential direction
// around center without changing its speed: the output is a pure rotation
// of the input. The tangent sign follows the velocity's existing rotational
// sense, so guidance never reverses an orbit.
//
// Guide is a creation-time assist only. Calling it during integration would
// inject angular-momentum bias into the simulation every step; that is a
// correctness bug, not a tuning option.
func Guide(pos, vel, center Vec2, strength float64, bd Boundary, w, h float64) Vec2 {
	if strength <= 0 {
		return vel
	}
	if strength > 1 {
		strength = 1
	}

	speed := vel.Len()
	radial := bd.Delta(center, pos, w, h)
	if speed < Epsilon || radial.Len() < Epsilon {
		return vel
	}

	tangent := radial.Perp().Normalize()
	if radial.Cross(vel) < 0 {
		tangent = tangent.Scale(-1)
	}

	dir := vel.Normalize().Scale(1 - strength).Add(tangent.Scale(strength)).Normalize()
	if dir.LenSq() < Epsilon {
		// Blend cancelled out (velocity exactly opposing the tangent);
		// keep the input rather than emitting a zero vector.
		return vel
	}
	return dir.Scale(speed)
}
