// Package metric provides Prometheus metrics for the modeling service:
// a private registry, the core transform/layout metrics, and an HTTP
// handler for scraping.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dgraphview"

// Metrics contains the service-level metrics for the modeling engine.
type Metrics struct {
	// Transform metrics
	SchemaParses   prometheus.Counter
	GraphBuilds    prometheus.Counter
	GeoExtractions prometheus.Counter
	GeoChecks      prometheus.Counter
	Autocompletes  prometheus.Counter
	BuildDuration  *prometheus.HistogramVec

	// Layout metrics
	LayoutSessions prometheus.Gauge
	LayoutTicks    prometheus.Counter

	// HTTP metrics
	RequestsTotal  *prometheus.CounterVec
	RequestsFailed *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all service metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SchemaParses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schema",
			Name:      "parses_total",
			Help:      "Total number of schema texts parsed",
		}),

		GraphBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Total number of result graphs built",
		}),

		GeoExtractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geo",
			Name:      "extractions_total",
			Help:      "Total number of geo model extractions",
		}),

		GeoChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geo",
			Name:      "presence_checks_total",
			Help:      "Total number of geo presence checks",
		}),

		Autocompletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autocomplete",
			Name:      "resolutions_total",
			Help:      "Total number of autocomplete resolutions",
		}),

		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "transform",
				Name:      "duration_seconds",
				Help:      "Transform duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"stage"},
		),

		LayoutSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "sessions",
			Help:      "Number of live continuous layout sessions",
		}),

		LayoutTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "ticks_total",
			Help:      "Total number of layout relaxation steps",
		}),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by route",
			},
			[]string{"route"},
		),

		RequestsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_failed_total",
				Help:      "Total failed HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}

// ObserveStage records a transform duration for a named stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.BuildDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// collectors returns every metric for bulk registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SchemaParses,
		m.GraphBuilds,
		m.GeoExtractions,
		m.GeoChecks,
		m.Autocompletes,
		m.BuildDuration,
		m.LayoutSessions,
		m.LayoutTicks,
		m.RequestsTotal,
		m.RequestsFailed,
	}
}
