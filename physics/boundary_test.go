package physics

import (
	"math"
	"testing"
)

func TestBoundaryDelta(t *testing.T) {
	const w, h = 100.0, 100.0

	tests := []struct {
		name string
		bd   Boundary
		a, b Vec2
		want Vec2
	}{
		{"open direct", Open, Vec2{10, 10}, Vec2{90, 90}, Vec2{80, 80}},
		{"torus short path", Torus, Vec2{10, 10}, Vec2{30, 10}, Vec2{20, 0}},
		{"torus wraps x", Torus, Vec2{10, 50}, Vec2{90, 50}, Vec2{-20, 0}},
		{"torus wraps y", Torus, Vec2{50, 5}, Vec2{50, 95}, Vec2{0, -10}},
		{"torus wraps both", Torus, Vec2{5, 5}, Vec2{95, 95}, Vec2{-10, -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.bd.Delta(tt.a, tt.b, w, h)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("Delta(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBoundaryWrap(t *testing.T) {
	const w, h = 100.0, 100.0

	tests := []struct {
		name string
		bd   Boundary
		p    Vec2
		want Vec2
	}{
		{"open untouched", Open, Vec2{-20, 150}, Vec2{-20, 150}},
		{"torus inside", Torus, Vec2{50, 50}, Vec2{50, 50}},
		{"torus negative", Torus, Vec2{-10, -10}, Vec2{90, 90}},
		{"torus overflow", Torus, Vec2{110, 205}, Vec2{10, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.bd.Wrap(tt.p, w, h)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("Wrap(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}
