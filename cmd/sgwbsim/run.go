package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sgwb/internal/config"
	"github.com/cwbudde/algo-sgwb/internal/metrics"
	"github.com/cwbudde/algo-sgwb/pipeline"
)

type runFlags struct {
	configPath  string
	fmin, fmax  float64
	fn          int
	tobs, tseg  float64
	omega0      float64
	alpha       float64
	fref        float64
	nside       int
	lmax        int
	blm         []string
	detector    string
	seed        uint64
	workers     int
	trace       bool
	metricsFile string
	logLevel    string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	def := pipeline.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the synthesis and print a YAML summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSynthesis(cmd, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML run file; flags given explicitly override it")
	fl.Float64Var(&f.fmin, "fmin", def.FMin, "lowest frequency in Hz")
	fl.Float64Var(&f.fmax, "fmax", def.FMax, "highest frequency in Hz")
	fl.IntVar(&f.fn, "fn", def.FN, "number of frequencies")
	fl.Float64Var(&f.tobs, "tobs", def.TObs, "total observation time in s")
	fl.Float64Var(&f.tseg, "tseg", def.TSeg, "time segment length in s")
	fl.Float64Var(&f.omega0, "omega0", def.Omega0, "energy density at the reference frequency")
	fl.Float64Var(&f.alpha, "alpha", def.Alpha, "power-law index")
	fl.Float64Var(&f.fref, "fref", def.FRef, "reference frequency in Hz")
	fl.IntVar(&f.nside, "nside", def.Nside, "pixelization resolution")
	fl.IntVar(&f.lmax, "lmax", def.Lmax, "degree of the amplitude coefficients")
	fl.StringArrayVar(&f.blm, "blm", nil, `amplitude coefficient "re,im" in half-index order (repeat)`)
	fl.StringVar(&f.detector, "detector", def.Detector, "detector: TQ, TianQin or LISA")
	fl.Uint64Var(&f.seed, "seed", def.Seed, "realization seed")
	fl.IntVar(&f.workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	fl.BoolVar(&f.trace, "trace", false, "print OpenTelemetry spans to stderr")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	fl.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	return cmd
}

func runSynthesis(cmd *cobra.Command, f *runFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []pipeline.RunnerOption{pipeline.WithLogger(logger)}

	var m *metrics.Metrics
	if f.metricsFile != "" {
		m = metrics.New()
		opts = append(opts, pipeline.WithMetrics(m))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if f.trace {
		tp, err := newTracerProvider(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
		opts = append(opts, pipeline.WithTracerProvider(tp))
	}

	res, runErr := pipeline.NewRunner(opts...).Run(ctx, cfg)
	if m != nil {
		if err := m.WriteFile(f.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	return writeYAML(cmd.OutOrStdout(), summarize(res))
}

func resolveConfig(cmd *cobra.Command, f *runFlags) (pipeline.Config, error) {
	var opts []pipeline.Option
	if f.configPath != "" {
		file, err := config.Load(f.configPath)
		if err != nil {
			return pipeline.Config{}, err
		}
		opts = file.Options()
	}

	cfg := pipeline.NewConfig(opts...)
	changed := cmd.Flags().Changed
	if changed("fmin") {
		cfg.FMin = f.fmin
	}
	if changed("fmax") {
		cfg.FMax = f.fmax
	}
	if changed("fn") {
		cfg.FN = f.fn
	}
	if changed("tobs") {
		cfg.TObs = f.tobs
	}
	if changed("tseg") {
		cfg.TSeg = f.tseg
	}
	if changed("omega0") {
		cfg.Omega0 = f.omega0
	}
	if changed("alpha") {
		cfg.Alpha = f.alpha
	}
	if changed("fref") {
		cfg.FRef = f.fref
	}
	if changed("nside") {
		cfg.Nside = f.nside
	}
	if changed("lmax") {
		cfg.Lmax = f.lmax
	}
	if changed("blm") {
		blm, err := parseBlm(f.blm)
		if err != nil {
			return pipeline.Config{}, err
		}
		cfg.Blm = blm
	}
	if changed("detector") {
		cfg.Detector = f.detector
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("workers") {
		cfg.Workers = max(f.workers, 0)
	}

	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, err
	}
	return cfg, nil
}

func parseBlm(values []string) ([]complex128, error) {
	out := make([]complex128, len(values))
	for i, v := range values {
		re, im, _ := strings.Cut(v, ",")
		r, err := strconv.ParseFloat(strings.TrimSpace(re), 64)
		if err != nil {
			return nil, fmt.Errorf("blm %q: %w", v, err)
		}
		var x float64
		if s := strings.TrimSpace(im); s != "" {
			if x, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("blm %q: %w", v, err)
			}
		}
		out[i] = complex(r, x)
	}
	return out, nil
}

func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

type skySummary struct {
	Nside          int     `yaml:"nside"`
	Npix           int     `yaml:"npix"`
	Mean           float64 `yaml:"mean"`
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
	StdDev         float64 `yaml:"stddev"`
	NegativePixels int     `yaml:"negative_pixels"`
}

type frequencySummary struct {
	Frequency float64 `yaml:"frequency"`
	// Auto-spectra of each channel in the first time segment.
	Diagonal []float64 `yaml:"diagonal"`
}

type runSummary struct {
	RunID       string             `yaml:"run_id"`
	Detector    string             `yaml:"detector"`
	Sky         skySummary         `yaml:"sky"`
	Segments    int                `yaml:"segments"`
	Frequencies []frequencySummary `yaml:"frequencies"`
}

func summarize(res *pipeline.Result) runSummary {
	st := res.Sky.Stats()
	s := runSummary{
		RunID:    res.RunID,
		Detector: res.Detector,
		Sky: skySummary{
			Nside:          res.Sky.Nside,
			Npix:           st.Npix,
			Mean:           st.Mean,
			Min:            st.Min,
			Max:            st.Max,
			StdDev:         math.Sqrt(st.Variance),
			NegativePixels: st.Negative,
		},
		Segments: len(res.Times),
	}

	nc, _, _ := res.Signal.Dims()
	for fi, f := range res.Freqs {
		fs := frequencySummary{Frequency: f, Diagonal: make([]float64, nc)}
		for c := range nc {
			fs.Diagonal[c] = real(res.Signal.At(c, c, fi, 0))
		}
		s.Frequencies = append(s.Frequencies, fs)
	}
	return s
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
