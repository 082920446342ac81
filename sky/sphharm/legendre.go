package sphharm

import (
	"math"
	"math/cmplx"
)

// Legendre fills dst[l-m] with the normalized associated Legendre function
// lambda_lm(x) for l = m..lmax, such that Y_lm(theta, phi) =
// lambda_lm(cos theta) * exp(i*m*phi). The Condon-Shortley phase is
// included. dst is grown if needed and returned.
func Legendre(lmax, m int, x float64, dst []float64) []float64 {
	if m > lmax || m < 0 {
		return dst[:0]
	}

	n := lmax - m + 1
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	s := math.Sqrt(math.Max(0, 1-x*x))
	pmm := 1 / math.Sqrt(4*math.Pi)
	for k := 1; k <= m; k++ {
		pmm *= -math.Sqrt(float64(2*k+1)/float64(2*k)) * s
	}
	dst[0] = pmm
	if n == 1 {
		return dst
	}

	dst[1] = x * math.Sqrt(float64(2*m+3)) * pmm

	fm := float64(m)
	for l := m + 2; l <= lmax; l++ {
		fl := float64(l)
		a := math.Sqrt((4*fl*fl - 1) / (fl*fl - fm*fm))
		b := math.Sqrt(((fl-1)*(fl-1) - fm*fm) / (4*(fl-1)*(fl-1) - 1))
		dst[l-m] = a * (x*dst[l-m-1] - b*dst[l-m-2])
	}
	return dst
}

// Ylm evaluates the orthonormal spherical harmonic Y_lm at (theta, phi).
// Negative m uses Y_l,-m = (-1)^m conj(Y_lm). Out-of-range (l, m) yields 0.
func Ylm(l, m int, theta, phi float64) complex128 {
	if l < 0 || m > l || -m > l {
		return 0
	}

	am := m
	if am < 0 {
		am = -am
	}
	lam := Legendre(l, am, math.Cos(theta), nil)[l-am]
	y := complex(lam, 0) * cmplx.Exp(complex(0, float64(am)*phi))
	if m < 0 {
		y = cmplx.Conj(y)
		if am%2 != 0 {
			y = -y
		}
	}
	return y
}
