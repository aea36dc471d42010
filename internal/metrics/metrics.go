// Package metrics defines the Prometheus collectors of document generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Degradation kinds. Degradations are recovered locally and only counted.
const (
	ResourceDegraded = "resource"
	ShapingDegraded  = "shaping"
	LayoutOverflow   = "layout_overflow"
)

// Generation statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the collectors. The zero value is not usable; use New.
type Metrics struct {
	Generations  *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Size         *prometheus.HistogramVec
	Pages        *prometheus.HistogramVec
	Degradations *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Generations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtldoc_generations_total",
				Help: "Total number of document generations",
			},
			[]string{"kind", "format", "status"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtldoc_generation_duration_seconds",
				Help:    "Duration of document generation in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"kind", "format"},
		),
		Size: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtldoc_document_size_bytes",
				Help:    "Size of generated documents in bytes",
				Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024},
			},
			[]string{"format"},
		),
		Pages: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtldoc_pages",
				Help:    "Number of pages of generated documents",
				Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
			},
			[]string{"format"},
		),
		Degradations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtldoc_degradations_total",
				Help: "Total number of recovered degradations",
			},
			[]string{"kind"},
		),
	}
}

// ObserveGeneration records a finished generation. Size and pages are only
// recorded for successful ones.
func (m *Metrics) ObserveGeneration(kind, format string, err error, d time.Duration, size, pages int) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.Generations.WithLabelValues(kind, format, status).Inc()
	m.Duration.WithLabelValues(kind, format).Observe(d.Seconds())
	if err == nil {
		m.Size.WithLabelValues(format).Observe(float64(size))
		m.Pages.WithLabelValues(format).Observe(float64(pages))
	}
}

// Degraded counts one degradation of the given kind.
func (m *Metrics) Degraded(kind string) {
	m.Degradations.WithLabelValues(kind).Inc()
}
