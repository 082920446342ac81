// Package pipeline wires the synthesis stages together: sky anisotropy,
// sky map, stochastic spectrum, detector geometry and response, and the
// final sky-integrated signal.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cwbudde/algo-sgwb/detector/orbit"
	"github.com/cwbudde/algo-sgwb/detector/response"
	"github.com/cwbudde/algo-sgwb/internal/metrics"
	"github.com/cwbudde/algo-sgwb/sky/anisotropy"
	"github.com/cwbudde/algo-sgwb/sky/coupling"
	"github.com/cwbudde/algo-sgwb/sky/skymap"
	"github.com/cwbudde/algo-sgwb/sky/sphharm"
	"github.com/cwbudde/algo-sgwb/stochastic/signal"
	"github.com/cwbudde/algo-sgwb/stochastic/spectrum"
)

const tracerName = "algo-sgwb/pipeline"

// Stage names, used for logs, spans and metrics.
const (
	StageAnisotropy = "anisotropy"
	StageSkyMap     = "skymap"
	StageSpectrum   = "spectrum"
	StageGeometry   = "geometry"
	StageResponse   = "response"
	StageSignal     = "signal"
)

// Result holds the intermediate and final products of a run.
type Result struct {
	RunID    string
	Config   Config
	Detector string

	Alm         anisotropy.AngularPower
	Sky         *skymap.Map
	Freqs       spectrum.Grid
	Times       []float64
	Realization []complex128
	Response    *response.Tensor
	Signal      *signal.Matrix
}

// Runner executes runs with shared collaborators. A Runner is safe for
// concurrent use.
type Runner struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cache    *coupling.Cache
	transfer response.TransferFunction
	provider orbit.Provider
	tp       trace.TracerProvider
	tracer   trace.Tracer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger. nil discards output.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records stage metrics on m.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithCache shares a coupling tensor cache between runners.
func WithCache(c *coupling.Cache) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithTransfer overrides the channel transfer function.
func WithTransfer(tf response.TransferFunction) RunnerOption {
	return func(r *Runner) { r.transfer = tf }
}

// WithProvider overrides the geometry provider selected by Config.Detector.
func WithProvider(p orbit.Provider) RunnerOption {
	return func(r *Runner) { r.provider = p }
}

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) RunnerOption {
	return func(r *Runner) { r.tp = tp }
}

// NewRunner returns a Runner using the default coupling cache, the XYZ
// transfer function and the global tracer provider.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:    coupling.Default,
		transfer: response.XYZ{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.transfer == nil {
		r.transfer = response.XYZ{}
	}
	if r.tp == nil {
		r.tp = otel.GetTracerProvider()
	}
	r.tracer = r.tp.Tracer(tracerName)
	return r
}

// Run executes cfg with a default Runner logging to logger.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	return NewRunner(WithLogger(logger)).Run(ctx, cfg)
}

// Run validates cfg and executes every stage. A failing stage aborts the
// run and no partial result is returned.
func (r *Runner) Run(ctx context.Context, cfg Config) (res *Result, err error) {
	// The result keeps its own copy of the sky amplitudes.
	cfg.Blm = slices.Clone(cfg.Blm)

	if err := cfg.Validate(); err != nil {
		return nil, r.reject(err)
	}

	provider := r.provider
	if provider == nil {
		if provider, err = orbit.Lookup(cfg.Detector); err != nil {
			return nil, r.reject(fmt.Errorf("%w: %v", ErrInvalidConfig, err))
		}
	}

	res = &Result{RunID: uuid.NewString(), Config: cfg, Detector: provider.Name()}
	log := r.logger.With("run_id", res.RunID)

	ctx, span := r.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("sgwb.run_id", res.RunID),
		attribute.String("sgwb.detector", res.Detector),
		attribute.Int("sgwb.nside", cfg.Nside),
		attribute.Int("sgwb.lmax", cfg.Lmax),
		attribute.Int("sgwb.frequencies", cfg.FN),
	))
	defer span.End()

	features := cpu.DetectFeatures()
	log.Info("run started",
		"detector", res.Detector,
		"nside", cfg.Nside,
		"lmax", cfg.Lmax,
		"frequencies", cfg.FN,
		"workers", cfg.Workers,
		"arch", features.Architecture,
		"avx2", features.HasAVX2,
	)
	start := time.Now()

	defer func() {
		r.metrics.RunFinished(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error("run failed", "error", err)
			res = nil
			return
		}
		log.Info("run finished", "duration", time.Since(start))
	}()

	if err = r.stage(ctx, log, StageAnisotropy, func(ctx context.Context) error {
		return r.anisotropy(ctx, cfg, res)
	}); err != nil {
		return nil, err
	}

	if err = r.stage(ctx, log, StageSkyMap, func(ctx context.Context) error {
		sky, err := skymap.Synthesize(ctx, res.Alm, cfg.Nside, cfg.Workers)
		if err != nil {
			return err
		}
		res.Sky = sky
		neg := sky.NegativePixels()
		r.metrics.SetNegativePixels(neg)
		if neg > 0 {
			log.Warn("sky map has negative intensities", "pixels", neg, "npix", sky.Npix())
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err = r.stage(ctx, log, StageSpectrum, func(context.Context) error {
		grid, err := spectrum.NewGrid(cfg.FMin, cfg.FMax, cfg.FN)
		if err != nil {
			return err
		}
		pl := spectrum.PowerLaw{Omega0: cfg.Omega0, Alpha: cfg.Alpha, FRef: cfg.FRef, H0: cfg.H0}
		s, err := spectrum.Generate(grid, pl, cfg.TObs, cfg.Seed)
		if err != nil {
			return err
		}
		res.Freqs, res.Realization = grid, s
		return nil
	}); err != nil {
		return nil, err
	}

	var geoms []orbit.Geometry
	if err = r.stage(ctx, log, StageGeometry, func(context.Context) error {
		times, err := orbit.TimeGrid(cfg.TObs, cfg.TSeg)
		if err != nil {
			return err
		}
		geoms, err = provider.PositionsAt(times)
		if err != nil {
			return err
		}
		res.Times = times
		return nil
	}); err != nil {
		return nil, err
	}

	if err = r.stage(ctx, log, StageResponse, func(ctx context.Context) error {
		m, err := response.Build(ctx, response.BuildInput{
			Pixels:     res.Sky.Pixels,
			Freqs:      res.Freqs,
			Geometries: geoms,
			Transfer:   r.transfer,
			Workers:    cfg.Workers,
		})
		if err != nil {
			return err
		}
		res.Response = m
		r.metrics.AddResponseItems(len(res.Sky.Pixels) * len(res.Freqs) * len(geoms))
		return nil
	}); err != nil {
		return nil, err
	}

	if err = r.stage(ctx, log, StageSignal, func(context.Context) error {
		m, err := signal.Project(res.Realization, cfg.TObs, res.Sky, res.Response)
		if err != nil {
			return err
		}
		res.Signal = m
		return nil
	}); err != nil {
		return nil, err
	}

	return res, nil
}

// reject records a run that failed before any stage started.
func (r *Runner) reject(err error) error {
	r.metrics.RunFinished(err)
	r.logger.Error("run rejected", "error", err)
	return err
}

func (r *Runner) anisotropy(ctx context.Context, cfg Config, res *Result) error {
	c, err := sphharm.NewCoefficients(cfg.Lmax, cfg.Blm)
	if err != nil {
		return err
	}

	hits, misses := r.cache.Stats()
	alm, err := anisotropy.FromCoefficients(ctx, r.cache, c)
	h2, m2 := r.cache.Stats()
	r.metrics.AddCacheLookups(h2-hits, m2-misses)
	if err != nil {
		return err
	}
	res.Alm = alm
	return nil
}

func (r *Runner) stage(ctx context.Context, log *slog.Logger, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline: %s: %w", name, err)
	}

	ctx, span := r.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	r.metrics.ObserveStage(name, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("pipeline: %s: %w", name, err)
	}
	log.Debug("stage finished", "stage", name, "duration", elapsed)
	return nil
}
