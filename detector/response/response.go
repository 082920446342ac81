// Package response computes the frequency-domain response of a detector
// constellation to plane gravitational waves from every sky pixel, and the
// resulting per-pixel overlap reduction tensor between channel pairs.
package response

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-sgwb/detector/orbit"
	"github.com/cwbudde/algo-sgwb/internal/parallel"
	"github.com/cwbudde/algo-sgwb/sky/skymap"
)

var (
	// ErrEmptyInput is returned when pixels, frequencies or geometries are
	// missing.
	ErrEmptyInput = errors.New("response: empty input")
	// ErrInvalidFrequency is returned for a non-positive or non-finite
	// frequency.
	ErrInvalidFrequency = errors.New("response: invalid frequency")
)

// BuildInput collects the inputs of Build.
type BuildInput struct {
	Pixels     []skymap.Pixel
	Freqs      []float64
	Geometries []orbit.Geometry
	// Transfer defaults to XYZ.
	Transfer TransferFunction
	// Workers bounds the goroutines used; <= 0 means GOMAXPROCS.
	Workers int
}

// Tensor is the overlap reduction tensor M[c1, c2, f, t, p]. For fixed
// (f, t, p) the channel block is Hermitian.
type Tensor struct {
	nc, nf, nt, np int
	// pixel-major: (((p*nf + f)*nt + t)*nc + c1)*nc + c2
	data []complex128
}

// Dims returns (channels, frequencies, times, pixels).
func (t *Tensor) Dims() (nc, nf, nt, np int) { return t.nc, t.nf, t.nt, t.np }

// At returns M[c1, c2, f, ti, p].
func (t *Tensor) At(c1, c2, f, ti, p int) complex128 {
	return t.data[t.offset(f, ti, p)+c1*t.nc+c2]
}

// Block returns the nc*nc channel block for (f, ti, p), row-major. The
// slice aliases the tensor.
func (t *Tensor) Block(f, ti, p int) []complex128 {
	off := t.offset(f, ti, p)
	return t.data[off : off+t.nc*t.nc]
}

// Pixel returns the contiguous slab of pixel p, laid out as
// [f][t][c1][c2]. The slice aliases the tensor.
func (t *Tensor) Pixel(p int) []complex128 {
	n := t.nf * t.nt * t.nc * t.nc
	return t.data[p*n : (p+1)*n]
}

func (t *Tensor) offset(f, ti, p int) int {
	return ((p*t.nf+f)*t.nt + ti) * t.nc * t.nc
}

// Build evaluates, for every pixel, frequency and time sample,
//
//	M = (1/8pi) (conj(R+)⊗R+ + conj(Rx)⊗Rx) / (2 pi f L)^2
//
// where R is the channel response to each polarization. Pixels are split
// into contiguous chunks processed concurrently; cancelling ctx aborts the
// chunks that have not yet started.
func Build(ctx context.Context, in BuildInput) (*Tensor, error) {
	if len(in.Pixels) == 0 || len(in.Freqs) == 0 || len(in.Geometries) == 0 {
		return nil, fmt.Errorf("%w: %d pixels, %d frequencies, %d geometries",
			ErrEmptyInput, len(in.Pixels), len(in.Freqs), len(in.Geometries))
	}
	for _, f := range in.Freqs {
		if !(f > 0) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %g", ErrInvalidFrequency, f)
		}
	}
	tf := in.Transfer
	if tf == nil {
		tf = XYZ{}
	}

	t := &Tensor{
		nc: tf.Channels(),
		nf: len(in.Freqs),
		nt: len(in.Geometries),
		np: len(in.Pixels),
	}
	t.data = make([]complex128, t.np*t.nf*t.nt*t.nc*t.nc)

	err := parallel.For(ctx, t.np, in.Workers, func(ctx context.Context, lo, hi int) error {
		for p := lo; p < hi; p++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			t.fillPixel(p, in.Pixels[p], in.Freqs, in.Geometries, tf)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	return t, nil
}

func (t *Tensor) fillPixel(p int, px skymap.Pixel, freqs []float64, geoms []orbit.Geometry, tf TransferFunction) {
	plus, cross := PolarizationTensors(px.U, px.V)

	for fi, f := range freqs {
		for ti, g := range geoms {
			rp := tf.CombineChannels(tf.SingleLink(px.K, plus, g, f), f, g.ArmTime)
			rc := tf.CombineChannels(tf.SingleLink(px.K, cross, g, f), f, g.ArmTime)

			w := 2 * math.Pi * f * g.ArmTime
			scale := complex(1/(8*math.Pi*w*w), 0)

			block := t.Block(fi, ti, p)
			for c1 := range t.nc {
				for c2 := range t.nc {
					block[c1*t.nc+c2] = scale * (cmplx.Conj(rp[c1])*rp[c2] + cmplx.Conj(rc[c1])*rc[c2])
				}
			}
		}
	}
}
