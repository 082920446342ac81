// Package metrics holds the Prometheus collectors of a synthesis run. All
// methods are no-ops on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sgwb"

// Metrics is a private registry with the run collectors.
type Metrics struct {
	Registry *prometheus.Registry

	stageDuration  *prometheus.HistogramVec
	responseItems  prometheus.Counter
	couplingCache  *prometheus.CounterVec
	negativePixels prometheus.Gauge
	runs           *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each synthesis stage.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 12),
		}, []string{"stage"}),
		responseItems: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_items_total",
			Help:      "Pixel, frequency and time samples evaluated by the response builder.",
		}),
		couplingCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupling_cache_requests_total",
			Help:      "Coupling tensor cache lookups by result.",
		}, []string{"result"}),
		negativePixels: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "skymap_negative_pixels",
			Help:      "Pixels with negative intensity in the last synthesized map.",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveStage records the duration of a named stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddResponseItems counts evaluated response samples.
func (m *Metrics) AddResponseItems(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.responseItems.Add(float64(n))
}

// AddCacheLookups counts coupling cache hits and misses.
func (m *Metrics) AddCacheLookups(hits, misses uint64) {
	if m == nil {
		return
	}
	m.couplingCache.WithLabelValues("hit").Add(float64(hits))
	m.couplingCache.WithLabelValues("miss").Add(float64(misses))
}

// SetNegativePixels records the negative pixel count of the current map.
func (m *Metrics) SetNegativePixels(n int) {
	if m == nil {
		return
	}
	m.negativePixels.Set(float64(n))
}

// RunFinished counts a run by outcome ("ok" or "error").
func (m *Metrics) RunFinished(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// WriteFile writes the registry in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
