package response

import (
	"gonum.org/v1/gonum/mat"
)

// Polarization is a symmetric, traceless 3x3 gravitational-wave
// polarization tensor.
type Polarization struct {
	e *mat.SymDense
}

// NewPolarization wraps the symmetric part of the row-major 3x3 tensor e.
func NewPolarization(e [9]float64) Polarization {
	s := mat.NewSymDense(3, nil)
	for i := range 3 {
		for j := i; j < 3; j++ {
			s.SetSym(i, j, 0.5*(e[3*i+j]+e[3*j+i]))
		}
	}
	return Polarization{e: s}
}

// PolarizationTensors returns e+ = v⊗v - u⊗u and e× = u⊗v + v⊗u for the
// transverse basis (u, v).
func PolarizationTensors(u, v [3]float64) (plus, cross Polarization) {
	p := mat.NewSymDense(3, nil)
	c := mat.NewSymDense(3, nil)
	for i := range 3 {
		for j := i; j < 3; j++ {
			p.SetSym(i, j, v[i]*v[j]-u[i]*u[j])
			c.SetSym(i, j, u[i]*v[j]+v[i]*u[j])
		}
	}
	return Polarization{e: p}, Polarization{e: c}
}

// At returns element (i, j).
func (p Polarization) At(i, j int) float64 { return p.e.At(i, j) }

// Contract returns the quadratic form n·e·n.
func (p Polarization) Contract(n [3]float64) float64 {
	x := mat.NewVecDense(3, n[:])
	return mat.Inner(x, p.e, x)
}

// Dot returns the full contraction e:o = sum_ij e_ij o_ij.
func (p Polarization) Dot(o Polarization) float64 {
	var prod mat.Dense
	prod.Mul(p.e, o.e)
	return mat.Trace(&prod)
}
