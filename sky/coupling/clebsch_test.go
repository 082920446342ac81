package coupling

import (
	"math"
	"testing"
)

func TestClebschGordanKnownValues(t *testing.T) {
	tests := []struct {
		j1, m1, j2, m2, J, M int
		want                 float64
	}{
		{0, 0, 0, 0, 0, 0, 1},
		{1, 0, 1, 0, 0, 0, -1 / math.Sqrt(3)},
		{1, 1, 1, -1, 0, 0, 1 / math.Sqrt(3)},
		{1, 0, 1, 0, 2, 0, math.Sqrt(2.0 / 3.0)},
		{1, 1, 1, 0, 2, 1, 1 / math.Sqrt(2)},
		{1, 1, 1, 0, 1, 1, 1 / math.Sqrt(2)},
		{1, 1, 1, 1, 2, 2, 1},
		{2, 1, 0, 0, 2, 1, 1},
		{2, 0, 2, 0, 2, 0, -math.Sqrt(2.0 / 7.0)},
		{2, 0, 2, 0, 4, 0, math.Sqrt(18.0 / 35.0)},
	}

	for _, tt := range tests {
		got := ClebschGordan(tt.j1, tt.m1, tt.j2, tt.m2, tt.J, tt.M)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("<%d %d %d %d|%d %d> = %v, want %v", tt.j1, tt.m1, tt.j2, tt.m2, tt.J, tt.M, got, tt.want)
		}
	}
}

func TestClebschGordanDisallowedIsExactlyZero(t *testing.T) {
	tests := []struct {
		name                 string
		j1, m1, j2, m2, J, M int
	}{
		{"m mismatch", 1, 1, 1, 0, 2, 0},
		{"triangle low", 3, 0, 1, 0, 1, 0},
		{"triangle high", 1, 0, 1, 0, 3, 0},
		{"odd parity", 1, 0, 1, 0, 1, 0},
		{"odd parity 2", 2, 0, 1, 0, 2, 0},
		{"|m1| > j1", 1, 2, 1, -2, 0, 0},
		{"|M| > J", 1, 1, 1, 1, 1, 2},
		{"negative j", -1, 0, 1, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClebschGordan(tt.j1, tt.m1, tt.j2, tt.m2, tt.J, tt.M); got != 0 {
				t.Errorf("got %v, want exactly 0", got)
			}
		})
	}
}

func TestClebschGordanOrthogonality(t *testing.T) {
	for j1 := 0; j1 <= 3; j1++ {
		for j2 := 0; j2 <= 3; j2++ {
			for J := abs(j1 - j2); J <= j1+j2; J++ {
				for Jp := abs(j1 - j2); Jp <= j1+j2; Jp++ {
					for M := -min(J, Jp); M <= min(J, Jp); M++ {
						sum := 0.0
						for m1 := -j1; m1 <= j1; m1++ {
							m2 := M - m1
							sum += ClebschGordan(j1, m1, j2, m2, J, M) * ClebschGordan(j1, m1, j2, m2, Jp, M)
						}
						want := 0.0
						if J == Jp {
							want = 1
						}
						if math.Abs(sum-want) > 1e-12 {
							t.Fatalf("j1=%d j2=%d J=%d J'=%d M=%d: sum = %v, want %v", j1, j2, J, Jp, M, sum, want)
						}
					}
				}
			}
		}
	}
}
