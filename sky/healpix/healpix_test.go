package healpix

import (
	"errors"
	"math"
	"testing"
)

func TestNpix(t *testing.T) {
	tests := []struct {
		nside, want int
	}{
		{1, 12}, {2, 48}, {3, 108}, {4, 192}, {8, 768}, {16, 3072},
	}
	for _, tt := range tests {
		got, err := Npix(tt.nside)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Npix(%d) = %d, want %d", tt.nside, got, tt.want)
		}
	}
}

func TestValidateNside(t *testing.T) {
	for _, nside := range []int{0, -4, MaxNside + 1} {
		if err := ValidateNside(nside); !errors.Is(err, ErrUnsupportedPixelization) {
			t.Errorf("ValidateNside(%d) = %v, want ErrUnsupportedPixelization", nside, err)
		}
		if _, err := Npix(nside); !errors.Is(err, ErrUnsupportedPixelization) {
			t.Errorf("Npix(%d) error = %v", nside, err)
		}
	}
}

func TestRingsPartitionPixels(t *testing.T) {
	for _, nside := range []int{1, 2, 3, 4, 8} {
		rings, err := Rings(nside)
		if err != nil {
			t.Fatal(err)
		}
		if len(rings) != 4*nside-1 {
			t.Fatalf("nside %d: %d rings, want %d", nside, len(rings), 4*nside-1)
		}

		next := 0
		for i, r := range rings {
			if r.Start != next {
				t.Fatalf("nside %d ring %d: start %d, want %d", nside, i, r.Start, next)
			}
			next += r.Count
			if i > 0 && !(r.Z < rings[i-1].Z) {
				t.Fatalf("nside %d ring %d: z not decreasing", nside, i)
			}
		}
		if next != 12*nside*nside {
			t.Fatalf("nside %d: rings cover %d pixels", nside, next)
		}

		// Mirror symmetry about the equator.
		for i := range rings {
			j := len(rings) - 1 - i
			if math.Abs(rings[i].Z+rings[j].Z) > 1e-14 || rings[i].Count != rings[j].Count {
				t.Fatalf("nside %d: rings %d and %d not mirrored", nside, i, j)
			}
		}
	}
}

func TestPix2AngMatchesRings(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 5} {
		theta, phi, err := Angles(nside)
		if err != nil {
			t.Fatal(err)
		}
		for p := range theta {
			th, ph, err := Pix2Ang(nside, p)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(th-theta[p]) > 1e-12 || math.Abs(ph-phi[p]) > 1e-12 {
				t.Fatalf("nside %d pix %d: Pix2Ang = (%v, %v), Angles = (%v, %v)", nside, p, th, ph, theta[p], phi[p])
			}
			if ph < 0 || ph >= 2*math.Pi {
				t.Fatalf("nside %d pix %d: phi %v out of [0, 2pi)", nside, p, ph)
			}
		}
	}
}

func TestPix2AngKnownPixels(t *testing.T) {
	// nside = 1: first ring at z = 2/3, phi = pi/4 + k*pi/2.
	th, ph, err := Pix2Ang(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(th-math.Acos(2.0/3.0)) > 1e-14 || math.Abs(ph-math.Pi/4) > 1e-14 {
		t.Fatalf("Pix2Ang(1, 0) = (%v, %v)", th, ph)
	}
	// Equatorial ring of nside = 1 starts at phi = 0.
	th, ph, err = Pix2Ang(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(th-math.Pi/2) > 1e-14 || math.Abs(ph) > 1e-14 {
		t.Fatalf("Pix2Ang(1, 4) = (%v, %v)", th, ph)
	}
}

func TestPix2AngOutOfRange(t *testing.T) {
	for _, p := range []int{-1, 48} {
		if _, _, err := Pix2Ang(2, p); !errors.Is(err, ErrPixelOutOfRange) {
			t.Errorf("Pix2Ang(2, %d) error = %v", p, err)
		}
	}
}

func TestEqualAreaMeanOfZ(t *testing.T) {
	// Equal-area pixels: the pixel average of z and z^2 approaches the sphere
	// average (0 and 1/3).
	theta, _, err := Angles(16)
	if err != nil {
		t.Fatal(err)
	}
	var s1, s2 float64
	for _, th := range theta {
		z := math.Cos(th)
		s1 += z
		s2 += z * z
	}
	n := float64(len(theta))
	if math.Abs(s1/n) > 1e-12 {
		t.Errorf("<z> = %v, want 0", s1/n)
	}
	if math.Abs(s2/n-1.0/3.0) > 1e-3 {
		t.Errorf("<z^2> = %v, want 1/3", s2/n)
	}
}
