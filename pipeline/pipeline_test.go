package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"math/cmplx"
	"runtime"
	"strings"
	"testing"

	"github.com/cwbudde/algo-vecmath/cpu"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cwbudde/algo-sgwb/detector/orbit"
	"github.com/cwbudde/algo-sgwb/detector/response"
	"github.com/cwbudde/algo-sgwb/internal/constants"
	"github.com/cwbudde/algo-sgwb/internal/metrics"
	"github.com/cwbudde/algo-sgwb/sky/coupling"
	"github.com/cwbudde/algo-sgwb/sky/skymap"
	"github.com/cwbudde/algo-sgwb/sky/sphharm"
	"github.com/cwbudde/algo-sgwb/stochastic/spectrum"
)

// isotropicConfig is the reference scenario with a coarse time grid.
func isotropicConfig(opts ...Option) Config {
	base := []Option{
		WithSky(0, []complex128{1}),
		WithFrequencyRange(1e-3, 1e-2, 2),
		WithNside(4),
		WithObservation(constants.YearSidereal, 1e7),
		WithPowerLaw(1e-10, 0, 0.01),
		WithDetector("TQ"),
		WithWorkers(4),
	}
	return NewConfig(append(base, opts...)...)
}

func TestIsotropicEndToEnd(t *testing.T) {
	cfg := isotropicConfig()
	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.Equal(t, 192, res.Sky.Npix())
	for p, v := range res.Sky.Intensity {
		require.InDelta(t, 1, v, 1e-12, "pixel %d", p)
	}
	require.Len(t, res.Times, 4)
	require.Equal(t, "TianQin", res.Detector)
	require.NotEmpty(t, res.RunID)

	// Independent sky sum of the closed-form isotropic cross spectrum.
	pixels, err := skymap.Pixels(cfg.Nside)
	require.NoError(t, err)
	grid, err := spectrum.NewGrid(cfg.FMin, cfg.FMax, cfg.FN)
	require.NoError(t, err)
	s, err := spectrum.Generate(grid, spectrum.NewPowerLaw(cfg.Omega0, cfg.Alpha, cfg.FRef), cfg.TObs, cfg.Seed)
	require.NoError(t, err)
	geoms, err := orbit.NewTianQin().PositionsAt(res.Times)
	require.NoError(t, err)

	tf := response.XYZ{}
	for fi, f := range grid {
		csd := 2 / cfg.TObs * real(s[fi]*cmplx.Conj(s[fi]))
		for ti, g := range geoms {
			want := make([]float64, 3)
			for _, px := range pixels {
				plus, cross := response.PolarizationTensors(px.U, px.V)
				rp := tf.CombineChannels(tf.SingleLink(px.K, plus, g, f), f, g.ArmTime)
				rc := tf.CombineChannels(tf.SingleLink(px.K, cross, g, f), f, g.ArmTime)
				w := 2 * math.Pi * f * g.ArmTime
				for c := range 3 {
					orf := (sq(cmplx.Abs(rp[c])) + sq(cmplx.Abs(rc[c]))) / (8 * math.Pi * w * w)
					want[c] += 4 * math.Pi / float64(len(pixels)) * csd * orf
				}
			}
			for c := range 3 {
				got := res.Signal.At(c, c, fi, ti)
				require.InEpsilon(t, want[c], real(got), 1e-10, "c=%d f=%d t=%d", c, fi, ti)
				require.InDelta(t, 0, imag(got), 1e-12*want[c])
				require.Equal(t, got, res.Signal.Diagonal(c, fi)[ti])
			}
		}
	}
}

func sq(x float64) float64 { return x * x }

func TestRunDeterministic(t *testing.T) {
	blm := make([]complex128, sphharm.Size(1))
	blm[0] = 1
	blm[sphharm.HalfIndex(1, 1, 0)] = 0.2
	blm[sphharm.HalfIndex(1, 1, 1)] = complex(0.05, 0.1)
	cfg := isotropicConfig(WithSky(1, blm), WithNside(2), WithSeed(42))

	a, err := NewRunner(WithCache(coupling.NewCache(1))).Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := NewRunner(WithCache(coupling.NewCache(3))).Run(context.Background(), cfg)
	require.NoError(t, err)

	require.NotEqual(t, a.RunID, b.RunID)
	require.Equal(t, a.Realization, b.Realization)
	require.Equal(t, a.Sky.Intensity, b.Sky.Intensity)
	nc, nf, nt := a.Signal.Dims()
	for f := range nf {
		for ti := range nt {
			for c1 := range nc {
				for c2 := range nc {
					require.Equal(t, a.Signal.At(c1, c2, f, ti), b.Signal.At(c1, c2, f, ti))
				}
			}
		}
	}
}

func TestRunForcedGenericMatches(t *testing.T) {
	cfg := isotropicConfig(WithNside(2))
	want, err := NewRunner().Run(context.Background(), cfg)
	require.NoError(t, err)

	cpu.SetForcedFeatures(cpu.Features{ForceGeneric: true, Architecture: runtime.GOARCH})
	defer cpu.ResetDetection()

	got, err := NewRunner().Run(context.Background(), cfg)
	require.NoError(t, err)
	nc, nf, nt := want.Signal.Dims()
	for f := range nf {
		for ti := range nt {
			for c := range nc {
				require.InEpsilon(t, real(want.Signal.At(c, c, f, ti)), real(got.Signal.At(c, c, f, ti)), 1e-12)
			}
		}
	}
}

func TestRunInvalidConfig(t *testing.T) {
	res, err := Run(context.Background(), isotropicConfig(WithNside(0)), nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Nil(t, res)
}

func TestRunInvalidConfigRecorded(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := metrics.New()

	for _, cfg := range []Config{
		isotropicConfig(WithNside(0)),
		isotropicConfig(WithDetector("virgo")),
	} {
		_, err := NewRunner(WithLogger(logger), WithMetrics(m)).Run(context.Background(), cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
	}

	require.Contains(t, buf.String(), `"msg":"run rejected"`)
	expected := `
# HELP sgwb_runs_total Completed pipeline runs by outcome.
# TYPE sgwb_runs_total counter
sgwb_runs_total{outcome="error"} 2
`
	require.NoError(t, promtest.GatherAndCompare(m.Registry, strings.NewReader(expected), "sgwb_runs_total"))
}

func TestRunResultOwnsConfig(t *testing.T) {
	cfg := isotropicConfig(WithNside(1))

	res, err := NewRunner(WithCache(coupling.NewCache(1))).Run(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Blm[0] = 42
	require.Equal(t, complex128(1), res.Config.Blm[0])
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, isotropicConfig(), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, res)
}

func TestRunLogsAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := metrics.New()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := NewRunner(WithLogger(logger), WithMetrics(m), WithTracerProvider(tp), WithCache(coupling.NewCache(1)))
	res, err := r.Run(context.Background(), isotropicConfig(WithNside(1)))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `"msg":"run finished"`)
	require.Contains(t, out, res.RunID)
	for _, stage := range []string{StageAnisotropy, StageSkyMap, StageSpectrum, StageGeometry, StageResponse, StageSignal} {
		require.Contains(t, out, `"stage":"`+stage+`"`)
	}

	n, err := promtest.GatherAndCount(m.Registry, "sgwb_stage_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 6, n)
	n, err = promtest.GatherAndCount(m.Registry, "sgwb_response_items_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	spans := recorder.Ended()
	require.Len(t, spans, 7)
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name())
	}
	require.Contains(t, names, "pipeline.Run")
	require.Contains(t, names, "pipeline.response")
}

type failingProvider struct{}

func (failingProvider) Name() string            { return "broken" }
func (failingProvider) NominalArmTime() float64 { return 1 }
func (failingProvider) PositionsAt([]float64) ([]orbit.Geometry, error) {
	return nil, errors.New("ephemeris unavailable")
}

func TestRunStageFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	res, err := NewRunner(WithLogger(logger), WithProvider(failingProvider{})).Run(context.Background(), isotropicConfig(WithNside(1)))
	require.Error(t, err)
	require.Nil(t, res)
	require.True(t, strings.Contains(err.Error(), "pipeline: geometry"), err.Error())
	require.Contains(t, buf.String(), "run failed")
}
