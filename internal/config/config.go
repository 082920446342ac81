// Package config reads synthesis runs from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sgwb/pipeline"
)

// ErrInvalidFile is returned for files that do not decode or validate.
var ErrInvalidFile = errors.New("config: invalid file")

var validate = validator.New()

// File is the on-disk form of a run. Omitted sections keep the pipeline
// defaults.
type File struct {
	Frequency   *Frequency   `yaml:"frequency,omitempty"`
	Observation *Observation `yaml:"observation,omitempty"`
	PowerLaw    *PowerLaw    `yaml:"power_law,omitempty"`
	Sky         *Sky         `yaml:"sky,omitempty"`
	Detector    string       `yaml:"detector,omitempty"`
	Seed        *uint64      `yaml:"seed,omitempty"`
	Workers     int          `yaml:"workers,omitempty" validate:"gte=0"`
}

// Frequency is the frequency grid in Hz.
type Frequency struct {
	Min   float64 `yaml:"min" validate:"gt=0"`
	Max   float64 `yaml:"max" validate:"gtefield=Min"`
	Count int     `yaml:"count" validate:"gte=1"`
}

// Observation holds durations in s.
type Observation struct {
	Total   float64 `yaml:"total" validate:"gt=0"`
	Segment float64 `yaml:"segment" validate:"gt=0"`
}

// PowerLaw is the energy density spectrum. H0 is optional, in 1/s.
type PowerLaw struct {
	Omega0 float64  `yaml:"omega0" validate:"gte=0"`
	Alpha  float64  `yaml:"alpha"`
	FRef   float64  `yaml:"fref" validate:"gt=0"`
	H0     *float64 `yaml:"h0,omitempty" validate:"omitempty,gt=0"`
}

// Sky is the anisotropy. Blm holds [re, im] pairs in half-index order.
type Sky struct {
	Lmax  int         `yaml:"lmax" validate:"gte=0"`
	Nside int         `yaml:"nside" validate:"gte=1"`
	Blm   [][]float64 `yaml:"blm" validate:"required,dive,len=2"`
}

// Load reads and validates path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML data. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &f, nil
}

// Options converts f into pipeline options.
func (f *File) Options() []pipeline.Option {
	var opts []pipeline.Option
	if f.Frequency != nil {
		opts = append(opts, pipeline.WithFrequencyRange(f.Frequency.Min, f.Frequency.Max, f.Frequency.Count))
	}
	if f.Observation != nil {
		opts = append(opts, pipeline.WithObservation(f.Observation.Total, f.Observation.Segment))
	}
	if p := f.PowerLaw; p != nil {
		opts = append(opts, pipeline.WithPowerLaw(p.Omega0, p.Alpha, p.FRef))
		if p.H0 != nil {
			opts = append(opts, pipeline.WithHubble(*p.H0))
		}
	}
	if s := f.Sky; s != nil {
		blm := make([]complex128, len(s.Blm))
		for i, pair := range s.Blm {
			blm[i] = complex(pair[0], pair[1])
		}
		opts = append(opts, pipeline.WithSky(s.Lmax, blm), pipeline.WithNside(s.Nside))
	}
	if f.Detector != "" {
		opts = append(opts, pipeline.WithDetector(f.Detector))
	}
	if f.Seed != nil {
		opts = append(opts, pipeline.WithSeed(*f.Seed))
	}
	if f.Workers > 0 {
		opts = append(opts, pipeline.WithWorkers(f.Workers))
	}
	return opts
}

// Config applies f and extra on top of the pipeline defaults and validates
// the result.
func (f *File) Config(extra ...pipeline.Option) (pipeline.Config, error) {
	cfg := pipeline.NewConfig(append(f.Options(), extra...)...)
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, err
	}
	return cfg, nil
}

// FromConfig returns the file form of cfg.
func FromConfig(cfg pipeline.Config) *File {
	blm := make([][]float64, len(cfg.Blm))
	for i, b := range cfg.Blm {
		blm[i] = []float64{real(b), imag(b)}
	}
	h0 := cfg.H0
	seed := cfg.Seed

	return &File{
		Frequency:   &Frequency{Min: cfg.FMin, Max: cfg.FMax, Count: cfg.FN},
		Observation: &Observation{Total: cfg.TObs, Segment: cfg.TSeg},
		PowerLaw:    &PowerLaw{Omega0: cfg.Omega0, Alpha: cfg.Alpha, FRef: cfg.FRef, H0: &h0},
		Sky:         &Sky{Lmax: cfg.Lmax, Nside: cfg.Nside, Blm: blm},
		Detector:    cfg.Detector,
		Seed:        &seed,
		Workers:     cfg.Workers,
	}
}

// Marshal encodes f as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
