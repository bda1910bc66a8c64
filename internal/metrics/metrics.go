// Package metrics exposes scan instrumentation for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan outcomes
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidInput = "invalid_input"
	OutcomePageError    = "page_error"
)

// Script fetch results
const (
	ScriptFetched    = "fetched"
	ScriptHTTPError  = "http_error"
	ScriptEmpty      = "empty"
	ScriptFetchError = "fetch_error"
)

// Metrics owns a private registry so tests and multiple instances never
// collide on the global one
type Metrics struct {
	registry *prometheus.Registry

	scansTotal      *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	scriptFetches   *prometheus.CounterVec
	detectionsTotal *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techprint_scans_total",
				Help: "Total number of scans by outcome",
			},
			[]string{"outcome"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "techprint_scan_duration_seconds",
				Help:    "Wall time of completed scans",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		scriptFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techprint_script_fetches_total",
				Help: "Script fetch attempts by result",
			},
			[]string{"result"},
		),
		detectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techprint_detections_total",
				Help: "Detected technologies by category",
			},
			[]string{"category"},
		),
	}

	m.registry.MustRegister(
		m.scansTotal,
		m.scanDuration,
		m.scriptFetches,
		m.detectionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveScan records one finished scan. Safe on a nil receiver.
func (m *Metrics) ObserveScan(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.scanDuration.Observe(elapsed.Seconds())
	}
}

// ObserveScript records one script fetch attempt. Safe on a nil receiver.
func (m *Metrics) ObserveScript(result string) {
	if m == nil {
		return
	}
	m.scriptFetches.WithLabelValues(result).Inc()
}

// ObserveDetection records one detected technology. Safe on a nil receiver.
func (m *Metrics) ObserveDetection(category string) {
	if m == nil {
		return
	}
	m.detectionsTotal.WithLabelValues(category).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
