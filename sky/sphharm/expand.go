package sphharm

import (
	"fmt"
	"math/cmplx"
)

// Coefficients holds the non-negative-m spherical-harmonic amplitudes of a
// real field, in half-index order.
type Coefficients struct {
	Lmax   int
	Values []complex128
}

// NewCoefficients validates values against lmax and returns a private copy.
func NewCoefficients(lmax int, values []complex128) (Coefficients, error) {
	if lmax < 0 {
		return Coefficients{}, ErrInvalidLmax
	}
	if len(values) != Size(lmax) {
		return Coefficients{}, fmt.Errorf("%w: got %d, want %d for lmax %d",
			ErrInvalidSize, len(values), Size(lmax), lmax)
	}

	out := make([]complex128, len(values))
	copy(out, values)
	return Coefficients{Lmax: lmax, Values: out}, nil
}

// Validate checks that the coefficient count matches Lmax.
func (c Coefficients) Validate() error {
	if c.Lmax < 0 {
		return ErrInvalidLmax
	}
	if len(c.Values) != Size(c.Lmax) {
		return fmt.Errorf("%w: got %d, want %d for lmax %d",
			ErrInvalidSize, len(c.Values), Size(c.Lmax), c.Lmax)
	}
	return nil
}

// At returns c(l, m) for any |m| <= l <= Lmax, applying the reality relation
// for negative m.
func (c Coefficients) At(l, m int) complex128 {
	if m >= 0 {
		return c.Values[HalfIndex(c.Lmax, l, m)]
	}
	v := cmplx.Conj(c.Values[HalfIndex(c.Lmax, l, -m)])
	if m%2 != 0 {
		v = -v
	}
	return v
}

// Expanded is a coefficient array over m in [-l, l] for every l <= lmax, in
// the order defined by [Index].
type Expanded []complex128

// Expand materializes the negative-m coefficients of c:
//
//	out[i] = c(l, m)                   for i <  Size(lmax)
//	out[i] = (-1)^m * conj(c(l, |m|))  for i >= Size(lmax)
//
// The returned slice has length 2*Size(lmax)-lmax-1.
func Expand(c Coefficients) (Expanded, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	half := Size(c.Lmax)
	out := make(Expanded, ExpandedSize(c.Lmax))
	copy(out, c.Values)

	for i := half; i < len(out); i++ {
		l, m, err := ExpandedLM(c.Lmax, i)
		if err != nil {
			return nil, err
		}
		out[i] = c.At(l, m)
	}
	return out, nil
}
