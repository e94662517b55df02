package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sqlmongo"

// Metrics holds the Prometheus collectors of the API
type Metrics struct {
	Registry *prometheus.Registry

	TranslationsTotal   *prometheus.CounterVec
	TranslationDuration *prometheus.HistogramVec
	TranslationErrors   *prometheus.CounterVec
	TranslationWarnings prometheus.Counter

	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		TranslationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "translator",
				Name:      "translations_total",
				Help:      "Successful translations by MongoDB operation",
			},
			[]string{"operation"},
		),
		TranslationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "translator",
				Name:      "translation_duration_seconds",
				Help:      "Time spent parsing and translating one statement",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"operation"},
		),
		TranslationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "translator",
				Name:      "errors_total",
				Help:      "Failed translations by error kind",
			},
			[]string{"kind"},
		),
		TranslationWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "translator",
				Name:      "warnings_total",
				Help:      "Warnings attached to translation results",
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by path and status code",
			},
			[]string{"path", "code"},
		),
	}
}
