package healpix

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-sgwb/internal/parallel"
	"github.com/cwbudde/algo-sgwb/sky/sphharm"
)

// Alm2Map synthesizes the real field f(n) = sum a_lm Y_lm(n) on the pixel
// centres of resolution nside. alm holds the m >= 0 coefficients of degree
// lmax in half-index order; negative m follow from the reality relation.
// Rings are processed in parallel on at most workers goroutines.
func Alm2Map(ctx context.Context, alm []complex128, lmax, nside, workers int) ([]float64, error) {
	if lmax < 0 {
		return nil, sphharm.ErrInvalidLmax
	}
	if len(alm) != sphharm.Size(lmax) {
		return nil, fmt.Errorf("healpix: %w: got %d coefficients, want %d for lmax %d",
			sphharm.ErrInvalidSize, len(alm), sphharm.Size(lmax), lmax)
	}
	rings, err := Rings(nside)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 12*nside*nside)
	err = parallel.For(ctx, len(rings), workers, func(_ context.Context, lo, hi int) error {
		s := newRingSynth(lmax)
		for _, r := range rings[lo:hi] {
			s.legendreSums(alm, r.Z)
			if err := s.synthesize(out[r.Start:r.Start+r.Count], r.Phi0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ringSynth holds per-goroutine scratch for ring synthesis. Each ring
// length gets one inverse transform: an algo-fft plan when it reproduces the
// direct sum on a test spectrum, otherwise gonum's mixed-radix FFT.
type ringSynth struct {
	lmax  int
	lam   []float64
	fm    []complex128
	spec  []complex128
	time  []complex128
	plans map[int]*algofft.Plan[complex128]
	gonum map[int]*fourier.CmplxFFT
}

func newRingSynth(lmax int) *ringSynth {
	return &ringSynth{
		lmax:  lmax,
		fm:    make([]complex128, lmax+1),
		plans: make(map[int]*algofft.Plan[complex128]),
		gonum: make(map[int]*fourier.CmplxFFT),
	}
}

// legendreSums computes F_m(z) = sum_l a_lm lambda_lm(z) for m = 0..lmax.
func (s *ringSynth) legendreSums(alm []complex128, z float64) {
	for m := 0; m <= s.lmax; m++ {
		s.lam = sphharm.Legendre(s.lmax, m, z, s.lam)
		var acc complex128
		for l := m; l <= s.lmax; l++ {
			acc += alm[sphharm.HalfIndex(s.lmax, l, m)] * complex(s.lam[l-m], 0)
		}
		s.fm[m] = acc
	}
}

// fold aliases the Fourier coefficients onto the n ring frequencies,
// including the phase of the first pixel and the conjugate m < 0 half.
func (s *ringSynth) fold(n int, phi0 float64) []complex128 {
	if cap(s.spec) < n {
		s.spec = make([]complex128, n)
	}
	spec := s.spec[:n]
	for k := range spec {
		spec[k] = 0
	}

	spec[0] += complex(real(s.fm[0]), 0)
	for m := 1; m <= s.lmax; m++ {
		c := s.fm[m] * cmplx.Exp(complex(0, float64(m)*phi0))
		k := m % n
		spec[k] += c
		spec[(n-k)%n] += cmplx.Conj(c)
	}
	return spec
}

func (s *ringSynth) synthesize(dst []float64, phi0 float64) error {
	n := len(dst)
	spec := s.fold(n, phi0)

	if cap(s.time) < n {
		s.time = make([]complex128, n)
	}
	tm := s.time[:n]

	if plan := s.plan(n); plan != nil {
		if err := plan.Inverse(tm, spec); err != nil {
			return fmt.Errorf("healpix: inverse FFT failed: %w", err)
		}
		// The algo-fft inverse is normalized by 1/n.
		fn := float64(n)
		for j := range dst {
			dst[j] = real(tm[j]) * fn
		}
		return nil
	}

	s.fallback(n).Sequence(tm, spec)
	for j := range dst {
		dst[j] = real(tm[j])
	}
	return nil
}

// plan returns a verified algo-fft plan for n, or nil when planning fails or
// the plan disagrees with direct summation.
func (s *ringSynth) plan(n int) *algofft.Plan[complex128] {
	if p, ok := s.plans[n]; ok {
		return p
	}
	p, err := algofft.NewPlan64(n)
	if err != nil || !planMatchesDirect(p, n) {
		p = nil
	}
	s.plans[n] = p
	return p
}

func (s *ringSynth) fallback(n int) *fourier.CmplxFFT {
	t, ok := s.gonum[n]
	if !ok {
		t = fourier.NewCmplxFFT(n)
		s.gonum[n] = t
	}
	return t
}

// planMatchesDirect runs p on a dense test spectrum and compares both the
// real and imaginary output against directInverse.
func planMatchesDirect(p *algofft.Plan[complex128], n int) bool {
	spec := make([]complex128, n)
	rot := make([]complex128, n)
	scale := 0.0
	for k := range spec {
		spec[k] = complex(math.Cos(1.3*float64(k))+0.25, math.Sin(0.7*float64(k)+0.1))
		rot[k] = spec[k] * -1i
		scale += cmplx.Abs(spec[k])
	}

	out := make([]complex128, n)
	if err := p.Inverse(out, spec); err != nil {
		return false
	}
	re := make([]float64, n)
	im := make([]float64, n)
	directInverse(re, spec)
	directInverse(im, rot)

	tol := 1e-10 * scale
	fn := float64(n)
	for j, v := range out {
		if math.Abs(real(v)*fn-re[j]) > tol || math.Abs(imag(v)*fn-im[j]) > tol {
			return false
		}
	}
	return true
}

// directInverse evaluates dst[j] = Re sum_k spec[k] exp(2*pi*i*k*j/n).
func directInverse(dst []float64, spec []complex128) {
	n := len(dst)
	for j := range dst {
		var acc float64
		for k, c := range spec {
			ang := 2 * math.Pi * float64((k*j)%n) / float64(n)
			sin, cos := math.Sincos(ang)
			acc += real(c)*cos - imag(c)*sin
		}
		dst[j] = acc
	}
}
