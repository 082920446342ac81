// Package anisotropy projects the spherical-harmonic amplitudes b_lm of an
// anisotropic background onto the angular power a_LM of its intensity
// |sum b_lm Y_lm|^2 through the Clebsch-Gordan coupling tensor.
package anisotropy

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sgwb/sky/coupling"
	"github.com/cwbudde/algo-sgwb/sky/sphharm"
)

// ErrInvalidSize is returned when the expanded coefficient array does not
// match the coupling tensor.
var ErrInvalidSize = sphharm.ErrInvalidSize

// AngularPower holds a_LM over the full expanded (L, M) range of degree
// Lmax, ordered as [sphharm.Index].
type AngularPower struct {
	Lmax   int
	Values []complex128
}

// NonNegative returns the m >= 0 subset in half-index order. The returned
// slice aliases a.
func (a AngularPower) NonNegative() []complex128 {
	return a.Values[:sphharm.Size(a.Lmax)]
}

// Monopole returns a_00.
func (a AngularPower) Monopole() complex128 {
	return a.Values[0]
}

// Normalized returns a copy of a scaled so that a_00 = sqrt(4*pi), which
// gives the synthesized intensity a unit sky average.
func (a AngularPower) Normalized() (AngularPower, error) {
	norm := a.Values[0] / complex(math.Sqrt(4*math.Pi), 0)
	if norm == 0 || math.IsNaN(real(norm)) || math.IsInf(real(norm), 0) {
		return AngularPower{}, fmt.Errorf("anisotropy: cannot normalize by monopole %v", a.Values[0])
	}

	out := make([]complex128, len(a.Values))
	for i, v := range a.Values {
		out[i] = v / norm
	}
	return AngularPower{Lmax: a.Lmax, Values: out}, nil
}

// Project contracts the expanded amplitudes b through beta:
//
//	a[L,M] = sum_ij beta[(L,M), i, j] * b[i] * b[j]
func Project(beta *coupling.Tensor, b sphharm.Expanded) (AngularPower, error) {
	na, nb, _ := beta.Dims()
	if len(b) != nb {
		return AngularPower{}, fmt.Errorf("%w: expanded length %d, tensor expects %d", ErrInvalidSize, len(b), nb)
	}

	// Outer product once; every row reuses it.
	outer := make([]complex128, nb*nb)
	for i := range nb {
		for j := range nb {
			outer[i*nb+j] = b[i] * b[j]
		}
	}

	out := make([]complex128, na)
	for a := range na {
		row := beta.Row(a)
		var acc complex128
		for k, w := range row {
			if w != 0 {
				acc += complex(w, 0) * outer[k]
			}
		}
		out[a] = acc
	}
	return AngularPower{Lmax: beta.PowerLmax(), Values: out}, nil
}

// FromCoefficients expands c, fetches the coupling tensor for c.Lmax from
// cache and projects.
func FromCoefficients(ctx context.Context, cache *coupling.Cache, c sphharm.Coefficients) (AngularPower, error) {
	b, err := sphharm.Expand(c)
	if err != nil {
		return AngularPower{}, err
	}
	beta, err := cache.Get(ctx, c.Lmax)
	if err != nil {
		return AngularPower{}, err
	}
	return Project(beta, b)
}
