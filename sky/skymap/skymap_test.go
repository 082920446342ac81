package skymap

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-sgwb/sky/anisotropy"
	"github.com/cwbudde/algo-sgwb/sky/coupling"
	"github.com/cwbudde/algo-sgwb/sky/healpix"
	"github.com/cwbudde/algo-sgwb/sky/sphharm"
)

func synth(t *testing.T, lmax int, blm []complex128, nside int) *Map {
	t.Helper()
	c, err := sphharm.NewCoefficients(lmax, blm)
	if err != nil {
		t.Fatal(err)
	}
	alm, err := anisotropy.FromCoefficients(context.Background(), coupling.NewCache(1), c)
	if err != nil {
		t.Fatal(err)
	}
	m, err := Synthesize(context.Background(), alm, nside, 2)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestIsotropyReduction(t *testing.T) {
	m := synth(t, 0, []complex128{1}, 4)
	if m.Npix() != 192 {
		t.Fatalf("Npix = %d, want 192", m.Npix())
	}
	for p, v := range m.Intensity {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("pixel %d = %v, want 1", p, v)
		}
	}

	// Scaling the amplitude does not change the normalized map.
	m2 := synth(t, 0, []complex128{3.5}, 4)
	for p, v := range m2.Intensity {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("scaled: pixel %d = %v, want 1", p, v)
		}
	}
}

func TestSynthesizeUnitMean(t *testing.T) {
	// b = Y00 + 0.3 Y10: intensity integrates to sum |b|^2, so the
	// normalized map averages to 1 over the sphere.
	const lmax = 1
	blm := make([]complex128, sphharm.Size(lmax))
	blm[sphharm.HalfIndex(lmax, 0, 0)] = 1
	blm[sphharm.HalfIndex(lmax, 1, 0)] = 0.3
	blm[sphharm.HalfIndex(lmax, 1, 1)] = complex(0.1, -0.2)

	m := synth(t, lmax, blm, 16)
	if math.Abs(m.Mean()-1) > 1e-3 {
		t.Fatalf("mean = %v, want ~1", m.Mean())
	}
	if m.NegativePixels() != 0 {
		t.Fatalf("unexpected negative pixels: %d", m.NegativePixels())
	}
}

func TestSynthesizeMatchesDirectIntensity(t *testing.T) {
	const lmax = 1
	blm := make([]complex128, sphharm.Size(lmax))
	blm[sphharm.HalfIndex(lmax, 0, 0)] = 1
	blm[sphharm.HalfIndex(lmax, 1, 0)] = 0.3
	blm[sphharm.HalfIndex(lmax, 1, 1)] = complex(0.1, -0.2)
	c, err := sphharm.NewCoefficients(lmax, blm)
	if err != nil {
		t.Fatal(err)
	}

	power := 0.0
	for l := 0; l <= lmax; l++ {
		for m := -l; m <= l; m++ {
			v := c.At(l, m)
			power += real(v)*real(v) + imag(v)*imag(v)
		}
	}

	// nside 16 has two rings of 40 pixels.
	m := synth(t, lmax, blm, 16)
	for p, px := range m.Pixels {
		var amp complex128
		for l := 0; l <= lmax; l++ {
			for mm := -l; mm <= l; mm++ {
				amp += c.At(l, mm) * sphharm.Ylm(l, mm, px.Theta, px.Phi)
			}
		}
		want := 4 * math.Pi * (real(amp)*real(amp) + imag(amp)*imag(amp)) / power
		if math.Abs(m.Intensity[p]-want) > 1e-10 {
			t.Fatalf("pixel %d = %v, want %v", p, m.Intensity[p], want)
		}
	}
}

func TestSynthesizeKeepsNegativePixels(t *testing.T) {
	// alm chosen directly (not from |b|^2) with a dipole larger than the
	// monopole: the map must go negative and is not clipped.
	alm := anisotropy.AngularPower{Lmax: 1, Values: []complex128{1, 2, 0, 0}}
	m, err := Synthesize(context.Background(), alm, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.NegativePixels() == 0 {
		t.Fatal("expected negative pixels")
	}
}

func TestSynthesizeErrors(t *testing.T) {
	ctx := context.Background()
	_, err := Synthesize(ctx, anisotropy.AngularPower{Lmax: 0, Values: []complex128{0}}, 4, 1)
	if !errors.Is(err, ErrDegenerateMonopole) {
		t.Errorf("zero monopole error = %v", err)
	}
	_, err = Synthesize(ctx, anisotropy.AngularPower{Lmax: 0, Values: []complex128{1}}, 0, 1)
	if !errors.Is(err, healpix.ErrUnsupportedPixelization) {
		t.Errorf("bad nside error = %v", err)
	}
}

func TestPixelTriadOrthonormal(t *testing.T) {
	pixels, err := Pixels(2)
	if err != nil {
		t.Fatal(err)
	}
	dot := func(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
	for i, p := range pixels {
		for _, pair := range [][2][3]float64{{p.K, p.K}, {p.U, p.U}, {p.V, p.V}} {
			if math.Abs(dot(pair[0], pair[1])-1) > 1e-14 {
				t.Fatalf("pixel %d: vector not unit", i)
			}
		}
		if math.Abs(dot(p.K, p.U)) > 1e-14 || math.Abs(dot(p.K, p.V)) > 1e-14 || math.Abs(dot(p.U, p.V)) > 1e-14 {
			t.Fatalf("pixel %d: triad not orthogonal", i)
		}
		// K points from the source towards the origin.
		st, ct := math.Sincos(p.Theta)
		sp, cp := math.Sincos(p.Phi)
		if math.Abs(dot(p.K, [3]float64{st * cp, st * sp, ct})+1) > 1e-14 {
			t.Fatalf("pixel %d: K not anti-parallel to the source direction", i)
		}
	}
}

func TestStats(t *testing.T) {
	m := &Map{Intensity: []float64{1, 3, -1, 5}}
	s := m.Stats()
	if s.Npix != 4 || s.Negative != 1 {
		t.Fatalf("Npix=%d Negative=%d", s.Npix, s.Negative)
	}
	if s.Mean != 2 {
		t.Fatalf("Mean = %v, want 2", s.Mean)
	}
	if s.Min != -1 || s.MinPixel != 2 || s.Max != 5 || s.MaxPixel != 3 {
		t.Fatalf("extrema = %+v", s)
	}
	if math.Abs(s.Variance-5) > 1e-14 {
		t.Fatalf("Variance = %v, want 5", s.Variance)
	}
	if s.Contrast != 3 {
		t.Fatalf("Contrast = %v, want 3", s.Contrast)
	}
	if s.Mean != m.Mean() || s.Negative != m.NegativePixels() {
		t.Fatal("Stats disagrees with Mean/NegativePixels")
	}

	if (&Map{}).Stats() != (Stats{}) {
		t.Fatal("empty map stats not zero")
	}

	iso := synth(t, 0, []complex128{2}, 2)
	is := iso.Stats()
	if is.Variance > 1e-24 || math.Abs(is.Mean-1) > 1e-12 {
		t.Fatalf("isotropic stats = %+v", is)
	}
}
