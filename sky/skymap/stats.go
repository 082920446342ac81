package skymap

import "math"

// Stats summarizes a map's intensity.
type Stats struct {
	Npix     int
	Mean     float64
	Min      float64
	MinPixel int
	Max      float64
	MaxPixel int
	// Variance is the population variance over pixels.
	Variance float64
	// Contrast is (Max - Min) / Mean, 0 for a zero mean.
	Contrast float64
	Negative int
}

// Stats computes the intensity summary in one pass (Welford).
func (m *Map) Stats() Stats {
	n := len(m.Intensity)
	if n == 0 {
		return Stats{}
	}

	s := Stats{
		Npix: n,
		Min:  m.Intensity[0],
		Max:  m.Intensity[0],
	}
	var mean, m2 float64
	for i, x := range m.Intensity {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)

		if x < s.Min {
			s.Min, s.MinPixel = x, i
		}
		if x > s.Max {
			s.Max, s.MaxPixel = x, i
		}
		if x < 0 {
			s.Negative++
		}
	}

	s.Mean = mean
	s.Variance = m2 / float64(n)
	if mean != 0 && !math.IsNaN(mean) {
		s.Contrast = (s.Max - s.Min) / mean
	}
	return s
}
