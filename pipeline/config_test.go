package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sgwb/internal/constants"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 0.01, cfg.FRef)
	require.Equal(t, constants.H0, cfg.H0)
	require.Equal(t, "TQ", cfg.Detector)
	require.Equal(t, uint64(123), cfg.Seed)
	require.Equal(t, 3600.0, cfg.TSeg)
}

func TestOptions(t *testing.T) {
	blm := []complex128{1, 0.1, 0.2i}
	cfg := NewConfig(
		WithFrequencyRange(1e-4, 1e-1, 16),
		WithObservation(1e6, 5000),
		WithPowerLaw(1e-9, 2.0/3, 0.02),
		WithHubble(2e-18),
		WithSky(1, blm),
		WithNside(16),
		WithDetector("LISA"),
		WithSeed(9),
		WithWorkers(-3),
		nil,
	)
	blm[0] = 5

	require.NoError(t, cfg.Validate())
	require.Equal(t, 1e-4, cfg.FMin)
	require.Equal(t, 1e-1, cfg.FMax)
	require.Equal(t, 16, cfg.FN)
	require.Equal(t, 1e6, cfg.TObs)
	require.Equal(t, 5000.0, cfg.TSeg)
	require.Equal(t, 2.0/3, cfg.Alpha)
	require.Equal(t, 2e-18, cfg.H0)
	require.Equal(t, complex128(1), cfg.Blm[0], "WithSky must copy its input")
	require.Equal(t, 16, cfg.Nside)
	require.Equal(t, "LISA", cfg.Detector)
	require.Equal(t, uint64(9), cfg.Seed)
	require.Equal(t, 0, cfg.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero fmin", WithFrequencyRange(0, 1e-2, 2)},
		{"fmax below fmin", WithFrequencyRange(1e-2, 1e-3, 2)},
		{"equal range", WithFrequencyRange(1e-3, 1e-3, 4)},
		{"zero frequencies", WithFrequencyRange(1e-3, 1e-2, 0)},
		{"zero observation", WithObservation(0, 3600)},
		{"zero segment", WithObservation(1e6, 0)},
		{"negative omega", WithPowerLaw(-1, 0, 0.01)},
		{"zero fref", WithPowerLaw(1e-10, 0, 0)},
		{"nan alpha", WithPowerLaw(1e-10, math.NaN(), 0.01)},
		{"zero H0", WithHubble(0)},
		{"zero nside", WithNside(0)},
		{"huge nside", WithNside(1 << 30)},
		{"blm size", WithSky(1, []complex128{1})},
		{"nil blm", WithSky(0, nil)},
		{"nan blm", WithSky(0, []complex128{complex(math.NaN(), 0)})},
		{"negative lmax", WithSky(-1, []complex128{1})},
		{"unknown detector", WithDetector("Taiji")},
		{"empty detector", WithDetector("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opt).Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidateSingleFrequency(t *testing.T) {
	require.NoError(t, NewConfig(WithFrequencyRange(1e-3, 1e-3, 1)).Validate())
}
