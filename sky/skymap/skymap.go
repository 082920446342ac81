// Package skymap turns the angular power of an anisotropic background into
// a pixelized intensity map with per-pixel propagation and polarization
// basis vectors.
package skymap

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sgwb/sky/anisotropy"
	"github.com/cwbudde/algo-sgwb/sky/healpix"
)

// ErrDegenerateMonopole is returned when a_00 is zero or not finite, so the
// map cannot be normalized to unit mean.
var ErrDegenerateMonopole = errors.New("skymap: monopole is zero or not finite")

// Pixel is a sky direction with its orthonormal triad. K is the propagation
// direction of a wave arriving from (Theta, Phi); U and V span the
// transverse plane.
type Pixel struct {
	Theta, Phi float64
	K, U, V    [3]float64
}

// NewPixel builds the triad for the source direction (theta, phi).
func NewPixel(theta, phi float64) Pixel {
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	return Pixel{
		Theta: theta,
		Phi:   phi,
		K:     [3]float64{-st * cp, -st * sp, -ct},
		U:     [3]float64{-sp, cp, 0},
		V:     [3]float64{cp * ct, ct * sp, -st},
	}
}

// Pixels returns the triads of every pixel centre at resolution nside.
func Pixels(nside int) ([]Pixel, error) {
	theta, phi, err := healpix.Angles(nside)
	if err != nil {
		return nil, err
	}
	out := make([]Pixel, len(theta))
	for i := range out {
		out[i] = NewPixel(theta[i], phi[i])
	}
	return out, nil
}

// Map is a normalized sky intensity map. Intensity[p] belongs to Pixels[p].
type Map struct {
	Nside     int
	Intensity []float64
	Pixels    []Pixel
}

// Npix returns the number of pixels.
func (m *Map) Npix() int { return len(m.Intensity) }

// Mean returns the pixel average of the intensity.
func (m *Map) Mean() float64 {
	if len(m.Intensity) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range m.Intensity {
		sum += v
	}
	return sum / float64(len(m.Intensity))
}

// NegativePixels counts pixels with negative intensity. Synthesis does not
// clip them.
func (m *Map) NegativePixels() int {
	n := 0
	for _, v := range m.Intensity {
		if v < 0 {
			n++
		}
	}
	return n
}

// Synthesize normalizes alm to unit mean intensity and evaluates the m >= 0
// subset on the pixels of resolution nside.
func Synthesize(ctx context.Context, alm anisotropy.AngularPower, nside, workers int) (*Map, error) {
	if err := healpix.ValidateNside(nside); err != nil {
		return nil, err
	}
	if len(alm.Values) == 0 {
		return nil, ErrDegenerateMonopole
	}

	norm, err := alm.Normalized()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateMonopole, err)
	}

	intensity, err := healpix.Alm2Map(ctx, norm.NonNegative(), norm.Lmax, nside, workers)
	if err != nil {
		return nil, fmt.Errorf("skymap: %w", err)
	}
	pixels, err := Pixels(nside)
	if err != nil {
		return nil, err
	}

	return &Map{
		Nside:     nside,
		Intensity: intensity,
		Pixels:    pixels,
	}, nil
}
