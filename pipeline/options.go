package pipeline

import "slices"

// Option mutates a Config.
type Option func(*Config)

// NewConfig applies opts to DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithFrequencyRange sets the frequency grid.
func WithFrequencyRange(fmin, fmax float64, n int) Option {
	return func(c *Config) {
		c.FMin, c.FMax, c.FN = fmin, fmax, n
	}
}

// WithObservation sets the observation and segment durations in s.
func WithObservation(tObs, tSeg float64) Option {
	return func(c *Config) {
		c.TObs, c.TSeg = tObs, tSeg
	}
}

// WithPowerLaw sets the energy density power law.
func WithPowerLaw(omega0, alpha, fref float64) Option {
	return func(c *Config) {
		c.Omega0, c.Alpha, c.FRef = omega0, alpha, fref
	}
}

// WithHubble overrides the Hubble constant (1/s).
func WithHubble(h0 float64) Option {
	return func(c *Config) {
		c.H0 = h0
	}
}

// WithSky sets the amplitude coefficients b_lm (m >= 0, half-index order)
// and their degree.
func WithSky(lmax int, blm []complex128) Option {
	blm = slices.Clone(blm)
	return func(c *Config) {
		c.Lmax, c.Blm = lmax, blm
	}
}

// WithNside sets the pixelization resolution.
func WithNside(nside int) Option {
	return func(c *Config) {
		c.Nside = nside
	}
}

// WithDetector selects the constellation by name.
func WithDetector(name string) Option {
	return func(c *Config) {
		c.Detector = name
	}
}

// WithSeed sets the realization seed.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithWorkers bounds parallel stages. Values <= 0 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n < 0 {
			n = 0
		}
		c.Workers = n
	}
}
