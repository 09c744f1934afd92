package physics

import "math"

// ForceLaw evaluates softened pairwise gravity:
//
//	F = G*m1*m2*d / (|d|^2 + softening^2)^((degree+1)/2)
//
// Degree 2 is the classical inverse-square law, the gradient of the smooth
// potential U = -G*m1*m2/sqrt(r^2 + eps^2), so the uncapped law is
// conservative by construction. The parameter set is fixed once per
// configuration; there is no per-pair mode branching.
type ForceLaw struct {
	G         float64
	Softening float64
	Degree    float64
	Cap       float64 // max |F| per pair; 0 disables. Capping is non-conservative.
}

// Pair returns the force vector acting on the first body, where d is the
// displacement from the first body to the second. The reaction force on the
// second body is the exact negation.
func (f ForceLaw) Pair(m1, m2 float64, d Vec2) Vec2 {
	r2 := d.LenSq() + f.Softening*f.Softening
	if r2 < Epsilon {
		return Vec2{}
	}
	mag := f.G * m1 * m2 / math.Pow(r2, (f.Degree+1)/2)
	fv := d.Scale(mag)
	if f.Cap > 0 {
		l := fv.Len()
		if l > f.Cap {
			fv = fv.Scale(f.Cap / l)
		}
	}
	return fv
}

// Potential returns the pair potential energy at displacement d. The energy
// form always uses the degree-2 softened potential so that the ledger
// matches the conservative part of the default force law.
func (f ForceLaw) Potential(m1, m2 float64, d Vec2) float64 {
	r := math.Sqrt(d.LenSq() + f.Softening*f.Softening)
	if r < Epsilon {
		return 0
	}
	return -f.G * m1 * m2 / r
}
