// Package signal projects a stochastic strain realization, a sky intensity
// map and the detector overlap reduction tensor onto the channel
// cross-spectral density matrix of the background.
package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sgwb/detector/response"
	"github.com/cwbudde/algo-sgwb/sky/skymap"
	"github.com/cwbudde/algo-sgwb/stochastic/spectrum"
)

var (
	// ErrShapeMismatch is returned when the realization, sky map and
	// response tensor disagree on frequency or pixel counts.
	ErrShapeMismatch = errors.New("signal: shape mismatch")
	// ErrInvalidObservationTime is returned for a non-positive or
	// non-finite observation time.
	ErrInvalidObservationTime = errors.New("signal: invalid observation time")
)

// Matrix is the cross-spectral density Signal[c1, c2, f, t].
type Matrix struct {
	nc, nf, nt int
	// ((f*nt + t)*nc + c1)*nc + c2
	data []complex128
}

// Dims returns (channels, frequencies, times).
func (m *Matrix) Dims() (nc, nf, nt int) { return m.nc, m.nf, m.nt }

// At returns Signal[c1, c2, f, t].
func (m *Matrix) At(c1, c2, f, t int) complex128 {
	return m.data[((f*m.nt+t)*m.nc+c1)*m.nc+c2]
}

// Diagonal returns the auto-spectrum of channel c at frequency index f for
// every time sample.
func (m *Matrix) Diagonal(c, f int) []complex128 {
	out := make([]complex128, m.nt)
	for t := range out {
		out[t] = m.At(c, c, f, t)
	}
	return out
}

// CrossSpectrum returns C(f) = (2/tObs) |S(f)|^2.
func CrossSpectrum(realization []complex128, tObs float64) ([]float64, error) {
	if !(tObs > 0) || math.IsInf(tObs, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidObservationTime, tObs)
	}
	power := spectrum.Power(realization)
	out := make([]float64, len(power))
	vecmath.ScaleBlock(out, power, 2/tObs)
	return out, nil
}

// Project integrates the background over the sky:
//
//	Signal[c1,c2,f,t] = (4pi/npix) sum_p C(f) I(p) M[c1,c2,f,t,p]
func Project(realization []complex128, tObs float64, sky *skymap.Map, resp *response.Tensor) (*Matrix, error) {
	if sky == nil || resp == nil {
		return nil, fmt.Errorf("%w: missing sky map or response", ErrShapeMismatch)
	}
	nc, nf, nt, np := resp.Dims()
	if len(realization) != nf {
		return nil, fmt.Errorf("%w: %d frequencies in realization, %d in response", ErrShapeMismatch, len(realization), nf)
	}
	if sky.Npix() != np {
		return nil, fmt.Errorf("%w: %d pixels in sky map, %d in response", ErrShapeMismatch, sky.Npix(), np)
	}

	csd, err := CrossSpectrum(realization, tObs)
	if err != nil {
		return nil, err
	}

	slab := nf * nt * nc * nc
	accRe := make([]float64, slab)
	accIm := make([]float64, slab)
	re := make([]float64, slab)
	im := make([]float64, slab)
	tmp := make([]float64, slab)

	// Sky-weighted sum of the response; the frequency weight is applied once
	// afterwards.
	for p := range np {
		w := sky.Intensity[p]
		if w == 0 {
			continue
		}
		for i, v := range resp.Pixel(p) {
			re[i] = real(v)
			im[i] = imag(v)
		}
		vecmath.ScaleBlock(tmp, re, w)
		vecmath.AddBlockInPlace(accRe, tmp)
		vecmath.ScaleBlock(tmp, im, w)
		vecmath.AddBlockInPlace(accIm, tmp)
	}

	weights := make([]float64, slab)
	block := nt * nc * nc
	norm := 4 * math.Pi / float64(np)
	for f := range nf {
		w := csd[f] * norm
		for i := f * block; i < (f+1)*block; i++ {
			weights[i] = w
		}
	}
	vecmath.MulBlockInPlace(accRe, weights)
	vecmath.MulBlockInPlace(accIm, weights)

	m := &Matrix{nc: nc, nf: nf, nt: nt, data: make([]complex128, slab)}
	for i := range m.data {
		m.data[i] = complex(accRe[i], accIm[i])
	}
	return m, nil
}
