package testutil

import "math/rand"

// DeterministicCoefficients returns n complex amplitudes with real and
// imaginary parts uniform in [-amplitude, amplitude), reproducible for a
// given seed. Entries at the positions listed in realAt get a zero imaginary
// part, which is what m = 0 coefficients of a real field require.
func DeterministicCoefficients(seed int64, amplitude float64, n int, realAt ...int) []complex128 {
	out := make([]complex128, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		re := (rng.Float64()*2 - 1) * amplitude
		im := (rng.Float64()*2 - 1) * amplitude
		out[i] = complex(re, im)
	}
	for _, i := range realAt {
		if i >= 0 && i < n {
			out[i] = complex(real(out[i]), 0)
		}
	}
	return out
}
