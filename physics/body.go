package physics

import "math"

// Body is a point mass. HalfVel is the authoritative integrator state of the
// kick-drift-kick scheme; Vel is a read-only projection synced after each
// full step. Radius is derived from mass so it can never desync after a
// merge.
type Body struct {
	ID      int64
	Pos     Vec2
	Vel     Vec2
	HalfVel Vec2
	Mass    float64

	RadiusScale float64
	RadiusPower float64
}

// Radius returns the visual/collision radius derived from mass.
func (b *Body) Radius() float64 {
	return math.Pow(b.Mass, b.RadiusPower) * b.RadiusScale / 2
}

// Speed returns the current full-step speed.
func (b *Body) Speed() float64 { return b.Vel.Len() }
