package physics

import (
	"math"
	"testing"
)

func idSeq(start int64) func() int64 {
	n := start
	return func() int64 {
		n++
		return n
	}
}

// touching builds a body pair guaranteed to overlap.
func touching(m1, m2 float64, v1, v2 Vec2) []*Body {
	return []*Body{
		{ID: 1, Pos: Vec2{0, 0}, Vel: v1, HalfVel: v1, Mass: m1, RadiusScale: 10, RadiusPower: 0.5},
		{ID: 2, Pos: Vec2{1, 0}, Vel: v2, HalfVel: v2, Mass: m2, RadiusScale: 10, RadiusPower: 0.5},
	}
}

func TestMergeConservesMassAndMomentum(t *testing.T) {
	bodies := touching(10, 20, Vec2{5, 0}, Vec2{-1, 3})

	out, n := ResolveMerges(bodies, Open, 1000, 1000, 0, idSeq(10))
	if n != 1 || len(out) != 1 {
		t.Fatalf("expected one merge, got n=%d len=%d", n, len(out))
	}

	m := out[0]
	if m.Mass != 30 {
		t.Fatalf("merged mass = %v, want exactly 30", m.Mass)
	}

	// Momentum: (10*(5,0) + 20*(-1,3)) / 30 = (1.0, 2.0)
	want := Vec2{1.0, 2.0}
	if math.Abs(m.Vel.X-want.X) > 1e-12 || math.Abs(m.Vel.Y-want.Y) > 1e-12 {
		t.Fatalf("merged velocity = %v, want %v", m.Vel, want)
	}
	if m.HalfVel != m.Vel {
		t.Fatalf("half-step velocity not synced on merge")
	}
}

func TestMergePositionMassWeighted(t *testing.T) {
	bodies := touching(10, 20, Vec2{}, Vec2{})
	out, _ := ResolveMerges(bodies, Open, 1000, 1000, 0, idSeq(10))

	// Center of mass along the 0->1 segment: 20/30 of the way.
	if math.Abs(out[0].Pos.X-2.0/3.0) > 1e-12 {
		t.Fatalf("merged position X = %v, want %v", out[0].Pos.X, 2.0/3.0)
	}
}

func TestMergeInheritsHeavierRadiusMapping(t *testing.T) {
	bodies := touching(10, 20, Vec2{}, Vec2{})
	bodies[0].RadiusScale, bodies[0].RadiusPower = 10, 0.5
	bodies[1].RadiusScale, bodies[1].RadiusPower = 7, 0.3

	out, _ := ResolveMerges(bodies, Open, 1000, 1000, 0, idSeq(10))
	if out[0].RadiusScale != 7 || out[0].RadiusPower != 0.3 {
		t.Fatalf("radius mapping not inherited from heavier parent: %+v", out[0])
	}
}

func TestMergeNoChaining(t *testing.T) {
	// Three bodies in a row, all mutually touching. Only one pair may merge
	// per pass; the third must survive untouched.
	bodies := []*Body{
		{ID: 1, Pos: Vec2{0, 0}, Mass: 10, RadiusScale: 10, RadiusPower: 0.5},
		{ID: 2, Pos: Vec2{1, 0}, Mass: 10, RadiusScale: 10, RadiusPower: 0.5},
		{ID: 3, Pos: Vec2{2, 0}, Mass: 10, RadiusScale: 10, RadiusPower: 0.5},
	}

	out, n := ResolveMerges(bodies, Open, 1000, 1000, 0, idSeq(10))
	if n != 1 {
		t.Fatalf("expected exactly one merge, got %d", n)
	}
	if len(out) != 2 {
		t.Fatalf("expected two bodies after merge, got %d", len(out))
	}
	// The survivor is the body that was not part of the first matched pair.
	found := false
	for _, b := range out {
		if b.ID == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("third body chained into the merge")
	}
}

func TestMergeStopMass(t *testing.T) {
	bodies := touching(100, 20, Vec2{}, Vec2{})

	out, n := ResolveMerges(bodies, Open, 1000, 1000, 50, idSeq(10))
	if n != 0 || len(out) != 2 {
		t.Fatalf("body at stop mass must not merge: n=%d len=%d", n, len(out))
	}
}

func TestMergeAcrossTorusSeam(t *testing.T) {
	// Bodies on opposite sides of the seam are neighbors on the torus.
	bodies := []*Body{
		{ID: 1, Pos: Vec2{0.5, 50}, Mass: 10, RadiusScale: 10, RadiusPower: 0.5},
		{ID: 2, Pos: Vec2{99.5, 50}, Mass: 10, RadiusScale: 10, RadiusPower: 0.5},
	}

	out, n := ResolveMerges(bodies, Torus, 100, 100, 0, idSeq(10))
	if n != 1 {
		t.Fatalf("seam-straddling pair did not merge")
	}
	// Mass-weighted center sits on the seam, wrapped into bounds.
	x := out[0].Pos.X
	if x > 1 && x < 99 {
		t.Fatalf("merged position %v not near the seam", out[0].Pos)
	}
}
