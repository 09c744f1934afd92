package physics

// Boundary selects how displacements between bodies are measured.
type Boundary int

const (
	// Open is plain free-space distance.
	Open Boundary = iota
	// Torus wraps the world into a 2-torus and measures minimum-image
	// distances. This breaks free-space energy/momentum guarantees: a torus
	// is not Newtonian space.
	Torus
)

// Delta returns the displacement from a to b under the boundary policy.
// On a torus each axis picks whichever of the direct or wrapped distance
// is shorter (minimum-image convention).
func (bd Boundary) Delta(a, b Vec2, w, h float64) Vec2 {
	d := b.Sub(a)
	if bd != Torus {
		return d
	}
	if d.X > w/2 {
		d.X -= w
	} else if d.X < -w/2 {
		d.X += w
	}
	if d.Y > h/2 {
		d.Y -= h
	} else if d.Y < -h/2 {
		d.Y += h
	}
	return d
}

// Wrap folds p back into [0,w) x [0,h) when toroidal; open space leaves p
// untouched.
func (bd Boundary) Wrap(p Vec2, w, h float64) Vec2 {
	if bd != Torus {
		return p
	}
	for p.X < 0 {
		p.X += w
	}
	for p.X >= w {
		p.X -= w
	}
	for p.Y < 0 {
		p.Y += h
	}
	for p.Y >= h {
		p.Y -= h
	}
	return p
}
