package coupling

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-sgwb/internal/parallel"
	"github.com/cwbudde/algo-sgwb/sky/sphharm"
)

// Tensor is the coupling tensor beta[a, i, j] for a given amplitude lmax.
// a runs over the expanded (L, M) positions of degree 2*lmax, i and j over
// the expanded (l, m) positions of degree lmax. The tensor is symmetric in
// i and j and must be treated as read-only.
type Tensor struct {
	lmax int
	na   int
	nb   int
	data []float64

	power     *sphharm.Index
	amplitude *sphharm.Index
}

// Lmax returns the amplitude degree the tensor was built for.
func (t *Tensor) Lmax() int { return t.lmax }

// PowerLmax returns the intensity degree, 2*Lmax().
func (t *Tensor) PowerLmax() int { return 2 * t.lmax }

// Dims returns (NA, NB, NB).
func (t *Tensor) Dims() (na, nb, nc int) { return t.na, t.nb, t.nb }

// At returns beta[a, i, j].
func (t *Tensor) At(a, i, j int) float64 {
	return t.data[(a*t.nb+i)*t.nb+j]
}

// Row returns the NB*NB slab for power position a, row-major in (i, j).
// The returned slice aliases the tensor and must not be modified.
func (t *Tensor) Row(a int) []float64 {
	n := t.nb * t.nb
	return t.data[a*n : (a+1)*n]
}

// PowerIndex returns the (L, M) table for the first axis.
func (t *Tensor) PowerIndex() *sphharm.Index { return t.power }

// AmplitudeIndex returns the (l, m) table for the last two axes.
func (t *Tensor) AmplitudeIndex() *sphharm.Index { return t.amplitude }

// Build computes the coupling tensor for lmax. Rows are computed in parallel
// on at most workers goroutines (<= 0 means GOMAXPROCS).
func Build(ctx context.Context, lmax, workers int) (*Tensor, error) {
	amp, err := sphharm.NewIndex(lmax)
	if err != nil {
		return nil, fmt.Errorf("coupling: %w", err)
	}
	pow, err := sphharm.NewIndex(2 * lmax)
	if err != nil {
		return nil, fmt.Errorf("coupling: %w", err)
	}

	t := &Tensor{
		lmax:      lmax,
		na:        pow.Len(),
		nb:        amp.Len(),
		power:     pow,
		amplitude: amp,
	}
	t.data = make([]float64, t.na*t.nb*t.nb)

	err = parallel.For(ctx, t.na, workers, func(_ context.Context, lo, hi int) error {
		for a := lo; a < hi; a++ {
			t.fillRow(a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("coupling: %w", err)
	}
	return t, nil
}

func (t *Tensor) fillRow(a int) {
	L, M := t.power.LM(a)
	row := t.Row(a)

	for i := range t.nb {
		l1, m1 := t.amplitude.LM(i)
		for j := i; j < t.nb; j++ {
			l2, m2 := t.amplitude.LM(j)
			v := Beta(l1, m1, l2, m2, L, M)
			row[i*t.nb+j] = v
			row[j*t.nb+i] = v
		}
	}
}
