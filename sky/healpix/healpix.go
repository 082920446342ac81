// Package healpix implements the equal-area, iso-latitude HEALPix sphere
// pixelization in RING ordering: pixel geometry and the inverse
// spherical-harmonic transform from a_lm to a pixel map.
//
// A resolution nside yields 12*nside^2 pixels arranged on 4*nside-1 rings
// of constant latitude. The transform evaluates each ring with one inverse
// FFT over its pixels.
package healpix

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by pixelization functions.
var (
	ErrUnsupportedPixelization = errors.New("healpix: unsupported nside")
	ErrPixelOutOfRange         = errors.New("healpix: pixel index out of range")
)

// MaxNside is the largest supported resolution.
const MaxNside = 1 << 29

// ValidateNside checks that nside is a supported RING resolution.
func ValidateNside(nside int) error {
	if nside < 1 || nside > MaxNside {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrUnsupportedPixelization, nside, MaxNside)
	}
	return nil
}

// Npix returns 12*nside^2.
func Npix(nside int) (int, error) {
	if err := ValidateNside(nside); err != nil {
		return 0, err
	}
	return 12 * nside * nside, nil
}

// PixelArea returns the solid angle of one pixel in steradians.
func PixelArea(nside int) (float64, error) {
	n, err := Npix(nside)
	if err != nil {
		return 0, err
	}
	return 4 * math.Pi / float64(n), nil
}

// Ring describes one iso-latitude ring of pixels.
type Ring struct {
	Z     float64 // cos(theta)
	Theta float64 // colatitude in radians
	Phi0  float64 // longitude of the first pixel
	Start int     // index of the first pixel
	Count int     // number of pixels
}

// Rings returns the 4*nside-1 rings from north to south.
func Rings(nside int) ([]Ring, error) {
	npix, err := Npix(nside)
	if err != nil {
		return nil, err
	}

	n := nside
	ncap := 2 * n * (n - 1)
	fn := float64(n)
	rings := make([]Ring, 0, 4*n-1)

	for i := 1; i <= 4*n-1; i++ {
		var r Ring
		switch {
		case i < n:
			fi := float64(i)
			r = Ring{
				Z:     1 - fi*fi/(3*fn*fn),
				Phi0:  math.Pi / (4 * fi),
				Start: 2 * i * (i - 1),
				Count: 4 * i,
			}
		case i <= 3*n:
			r = Ring{
				Z:     float64(2*n-i) * 2 / (3 * fn),
				Start: ncap + (i-n)*4*n,
				Count: 4 * n,
			}
			if (i+n)&1 == 0 {
				r.Phi0 = math.Pi / (4 * fn)
			}
		default:
			ii := 4*n - i
			fi := float64(ii)
			r = Ring{
				Z:     -(1 - fi*fi/(3*fn*fn)),
				Phi0:  math.Pi / (4 * fi),
				Start: npix - 2*ii*(ii+1),
				Count: 4 * ii,
			}
		}
		r.Theta = math.Acos(r.Z)
		rings = append(rings, r)
	}
	return rings, nil
}

func isqrt(v int) int {
	r := int(math.Sqrt(float64(v)))
	for r*r > v {
		r--
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}

// Pix2Ang returns the colatitude and longitude of the centre of pixel pix.
func Pix2Ang(nside, pix int) (theta, phi float64, err error) {
	npix, err := Npix(nside)
	if err != nil {
		return 0, 0, err
	}
	if pix < 0 || pix >= npix {
		return 0, 0, fmt.Errorf("%w: %d not in [0, %d)", ErrPixelOutOfRange, pix, npix)
	}

	n := nside
	fn := float64(n)
	ncap := 2 * n * (n - 1)

	var z float64
	switch {
	case pix < ncap:
		iring := (1 + isqrt(1+2*pix)) >> 1
		iphi := pix + 1 - 2*iring*(iring-1)
		fr := float64(iring)
		z = 1 - fr*fr/(3*fn*fn)
		phi = (float64(iphi) - 0.5) * math.Pi / (2 * fr)
	case pix < npix-ncap:
		ip := pix - ncap
		tmp := ip / (4 * n)
		iring := tmp + n
		iphi := ip - 4*n*tmp + 1
		fodd := 0.5
		if (iring+n)&1 != 0 {
			fodd = 1
		}
		z = float64(2*n-iring) * 2 / (3 * fn)
		phi = (float64(iphi) - fodd) * math.Pi / (2 * fn)
	default:
		ip := npix - pix
		iring := (1 + isqrt(2*ip-1)) >> 1
		iphi := 4*iring + 1 - (ip - 2*iring*(iring-1))
		fr := float64(iring)
		z = -1 + fr*fr/(3*fn*fn)
		phi = (float64(iphi) - 0.5) * math.Pi / (2 * fr)
	}
	return math.Acos(z), phi, nil
}

// Angles returns the pixel-centre colatitudes and longitudes of all pixels.
func Angles(nside int) (theta, phi []float64, err error) {
	rings, err := Rings(nside)
	if err != nil {
		return nil, nil, err
	}
	npix := 12 * nside * nside
	theta = make([]float64, npix)
	phi = make([]float64, npix)
	for _, r := range rings {
		step := 2 * math.Pi / float64(r.Count)
		for j := range r.Count {
			theta[r.Start+j] = r.Theta
			phi[r.Start+j] = r.Phi0 + float64(j)*step
		}
	}
	return theta, phi, nil
}
