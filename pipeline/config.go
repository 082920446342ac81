package pipeline

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-playground/validator/v10"

	"github.com/cwbudde/algo-sgwb/detector/orbit"
	"github.com/cwbudde/algo-sgwb/internal/constants"
	"github.com/cwbudde/algo-sgwb/sky/healpix"
	"github.com/cwbudde/algo-sgwb/sky/sphharm"
	"github.com/cwbudde/algo-sgwb/stochastic/spectrum"
)

// ErrInvalidConfig is returned by Config.Validate and Run for unusable
// configurations.
var ErrInvalidConfig = errors.New("pipeline: invalid config")

var validate = validator.New()

// Config describes one synthesis run. It is a value type; use the With*
// options or copy and modify.
type Config struct {
	// Frequency grid in Hz, FN points from FMin to FMax inclusive.
	FMin float64 `validate:"gt=0"`
	FMax float64 `validate:"gtefield=FMin"`
	FN   int     `validate:"gte=1"`

	// TObs is the total observation time and TSeg the segment length, in s.
	TObs float64 `validate:"gt=0"`
	TSeg float64 `validate:"gt=0"`

	// Power law Omega0 * (f/FRef)^Alpha with Hubble constant H0 in 1/s.
	Omega0 float64 `validate:"gte=0"`
	Alpha  float64
	FRef   float64 `validate:"gt=0"`
	H0     float64 `validate:"gt=0"`

	Nside int          `validate:"gte=1"`
	Lmax  int          `validate:"gte=0"`
	Blm   []complex128 `validate:"required"`

	Detector string `validate:"required"`
	Seed     uint64
	// Workers bounds parallel stages; 0 means GOMAXPROCS.
	Workers int `validate:"gte=0"`
}

// DefaultConfig returns an isotropic background observed by TianQin for
// one sidereal year.
func DefaultConfig() Config {
	return Config{
		FMin:     1e-3,
		FMax:     1e-2,
		FN:       2,
		TObs:     constants.YearSidereal,
		TSeg:     3600,
		Omega0:   1e-10,
		Alpha:    0,
		FRef:     0.01,
		H0:       constants.H0,
		Nside:    8,
		Lmax:     0,
		Blm:      []complex128{1},
		Detector: "TQ",
		Seed:     spectrum.DefaultSeed,
	}
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, v := range []float64{c.FMin, c.FMax, c.TObs, c.TSeg, c.Omega0, c.Alpha, c.FRef, c.H0} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite parameter %g", ErrInvalidConfig, v)
		}
	}
	if c.FN > 1 && c.FMax <= c.FMin {
		return fmt.Errorf("%w: fmax %g must exceed fmin %g for %d frequencies", ErrInvalidConfig, c.FMax, c.FMin, c.FN)
	}
	if err := healpix.ValidateNside(c.Nside); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if want := sphharm.Size(c.Lmax); len(c.Blm) != want {
		return fmt.Errorf("%w: %d blm values, lmax %d needs %d", ErrInvalidConfig, len(c.Blm), c.Lmax, want)
	}
	for i, b := range c.Blm {
		if cmplx.IsNaN(b) || cmplx.IsInf(b) {
			return fmt.Errorf("%w: blm[%d] = %v", ErrInvalidConfig, i, b)
		}
	}
	if _, err := orbit.Lookup(c.Detector); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
