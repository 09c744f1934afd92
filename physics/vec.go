// Package physics implements the N-body core: bodies, the softened force
// law, boundary policies, the symplectic integrator, inelastic merging and
// the creation-time launch guidance.
package physics

import "math"

// Epsilon is the length/speed threshold below which geometry is treated as
// degenerate. Every division by a length or speed is guarded with it.
const Epsilon = 1e-9

// Vec2 is a 2D vector with value semantics.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product. Its sign gives the
// rotational sense of o relative to v.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// LenSq returns the squared length.
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// Len returns the length.
func (v Vec2) Len() float64 { return math.Sqrt(v.LenSq()) }

// Normalize returns the unit vector in the direction of v, or the zero
// vector when v is degenerately short.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < Epsilon {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perp returns v rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }
