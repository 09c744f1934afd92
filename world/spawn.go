package world

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/orrery/physics"
)

// SpawnRandom scatters n bodies uniformly over the world, with masses drawn
// from the configured range shaped by the distribution exponent (higher
// shape skews toward light bodies). Spawning stops at the body limit.
// Returns the number of bodies actually created.
func (w *World) SpawnRandom(n int, rng *rand.Rand) int {
	created := 0
	minMass := w.cfg.Mass.Min
	maxMass := minMass * w.cfg.Mass.Ratio

	for i := 0; i < n; i++ {
		if len(w.bodies) >= w.cfg.Bodies.Max {
			break
		}
		mass := minMass + math.Pow(rng.Float64(), w.cfg.Mass.Shape)*(maxMass-minMass)
		w.bodies = append(w.bodies, &physics.Body{
			ID:          w.allocID(),
			Pos:         physics.Vec2{X: rng.Float64() * w.width, Y: rng.Float64() * w.height},
			Mass:        mass,
			RadiusScale: w.cfg.Radius.Scale,
			RadiusPower: w.cfg.Radius.Power,
		})
		created++
	}
	return created
}
