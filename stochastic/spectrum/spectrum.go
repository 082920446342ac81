// Package spectrum models the power-law energy density of a stochastic
// gravitational-wave background and draws seeded Gaussian realizations of
// its frequency-domain strain.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-sgwb/internal/constants"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed = 123

// ErrInvalidSpectrumParameters is returned for a non-positive frequency,
// a degenerate grid, or a non-positive reference frequency, observation
// time or Hubble constant.
var ErrInvalidSpectrumParameters = errors.New("spectrum: invalid spectrum parameters")

// Grid is an ascending, evenly spaced frequency grid in Hz.
type Grid []float64

// NewGrid returns n frequencies from fmin to fmax inclusive. A single-point
// grid holds fmin.
func NewGrid(fmin, fmax float64, n int) (Grid, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("%w: frequency count %d", ErrInvalidSpectrumParameters, n)
	case !(fmin > 0) || math.IsInf(fmin, 0) || math.IsInf(fmax, 0):
		return nil, fmt.Errorf("%w: fmin %g", ErrInvalidSpectrumParameters, fmin)
	case n > 1 && !(fmax > fmin):
		return nil, fmt.Errorf("%w: fmax %g not above fmin %g", ErrInvalidSpectrumParameters, fmax, fmin)
	}

	if n == 1 {
		return Grid{fmin}, nil
	}
	return Grid(floats.Span(make([]float64, n), fmin, fmax)), nil
}

// Step returns the grid spacing, or 0 for a single-point grid.
func (g Grid) Step() float64 {
	if len(g) < 2 {
		return 0
	}
	return g[1] - g[0]
}

// PowerLaw is Omega_gw(f) = Omega0 * (f/FRef)^Alpha.
type PowerLaw struct {
	Omega0 float64
	Alpha  float64
	FRef   float64
	H0     float64
}

// NewPowerLaw returns a power law with the default Hubble constant.
func NewPowerLaw(omega0, alpha, fref float64) PowerLaw {
	return PowerLaw{Omega0: omega0, Alpha: alpha, FRef: fref, H0: constants.H0}
}

// Validate reports whether the power law can be evaluated.
func (p PowerLaw) Validate() error {
	if !(p.FRef > 0) || math.IsInf(p.FRef, 0) {
		return fmt.Errorf("%w: fref %g", ErrInvalidSpectrumParameters, p.FRef)
	}
	if !(p.H0 > 0) || math.IsInf(p.H0, 0) {
		return fmt.Errorf("%w: H0 %g", ErrInvalidSpectrumParameters, p.H0)
	}
	if math.IsNaN(p.Omega0) || math.IsInf(p.Omega0, 0) || math.IsNaN(p.Alpha) || math.IsInf(p.Alpha, 0) {
		return fmt.Errorf("%w: omega0 %g alpha %g", ErrInvalidSpectrumParameters, p.Omega0, p.Alpha)
	}
	return nil
}

// Omega returns the dimensionless energy density at f.
func (p PowerLaw) Omega(f float64) float64 {
	return p.Omega0 * math.Pow(f/p.FRef, p.Alpha)
}

// PSD returns the one-sided strain power spectral density at f:
//
//	S(f) = Omega(f) * 3/(4 f^3) * (H0/pi)^2
func (p PowerLaw) PSD(f float64) float64 {
	h := p.H0 / math.Pi
	return p.Omega(f) * 3 / (4 * f * f * f) * h * h
}

// PSDs evaluates PSD on every grid point.
func (p PowerLaw) PSDs(g Grid) []float64 {
	out := make([]float64, len(g))
	for i, f := range g {
		out[i] = p.PSD(f)
	}
	return out
}

// Generate draws one complex Gaussian strain amplitude per grid frequency
// with standard deviation sigma(f) = 0.5*sqrt(S(f)*tObs) per component.
//
// The draw order is fixed: a PCG source seeded with (seed, seed) supplies
// the real parts of every frequency with sigma > 0 in ascending order, then
// the imaginary parts in the same order. Frequencies with sigma == 0 yield
// exactly 0 and consume no draws.
func Generate(g Grid, p PowerLaw, tObs float64, seed uint64) ([]complex128, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidSpectrumParameters)
	}
	if !(tObs > 0) || math.IsInf(tObs, 0) {
		return nil, fmt.Errorf("%w: observation time %g", ErrInvalidSpectrumParameters, tObs)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, f := range g {
		if !(f > 0) {
			return nil, fmt.Errorf("%w: frequency %g", ErrInvalidSpectrumParameters, f)
		}
	}

	psd := p.PSDs(g)
	return fromPSD(psd, 1/tObs, seed), nil
}

func fromPSD(psd []float64, df float64, seed uint64) []complex128 {
	sigma := make([]float64, len(psd))
	for i, s := range psd {
		if s > 0 {
			sigma[i] = 0.5 * math.Sqrt(s/df)
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	re := make([]float64, len(psd))
	im := make([]float64, len(psd))
	for _, part := range [][]float64{re, im} {
		for i, s := range sigma {
			if s != 0 {
				part[i] = s * rng.NormFloat64()
			}
		}
	}

	out := make([]complex128, len(psd))
	for i := range out {
		out[i] = complex(re[i], im[i])
	}
	return out
}

// Power returns |s|^2 for every entry.
func Power(s []complex128) []float64 {
	re := make([]float64, len(s))
	im := make([]float64, len(s))
	for i, c := range s {
		re[i] = real(c)
		im[i] = imag(c)
	}

	out := make([]float64, len(s))
	vecmath.Power(out, re, im)
	return out
}
