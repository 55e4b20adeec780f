// Package metrics provides Prometheus metrics for document exports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Export outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Collector holds the export metrics, registered on its own registry.
type Collector struct {
	registry *prometheus.Registry

	ExportsTotal   *prometheus.CounterVec
	ExportDuration prometheus.Histogram
	RulesDerived   prometheus.Gauge
	JobsInFlight   prometheus.Gauge
}

// New creates a collector with all metrics registered on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xsdform",
				Name:      "exports_total",
				Help:      "Total number of export jobs processed",
			},
			[]string{"status"},
		),
		ExportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "xsdform",
				Name:      "export_duration_seconds",
				Help:      "Time to load, edit and serialize one document",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		RulesDerived: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "xsdform",
				Name:      "rules_derived",
				Help:      "Logical rules derived by the most recent export",
			},
		),
		JobsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "xsdform",
				Name:      "jobs_in_flight",
				Help:      "Export jobs currently being processed",
			},
		),
	}
}

// RecordExport records one finished export.
func (c *Collector) RecordExport(status string, duration time.Duration, rules int) {
	c.ExportsTotal.WithLabelValues(status).Inc()
	c.ExportDuration.Observe(duration.Seconds())
	if status == StatusOK {
		c.RulesDerived.Set(float64(rules))
	}
}

// Handler returns the HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
