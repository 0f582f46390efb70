// Package metrics exposes prometheus instrumentation for the dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the process-local prometheus registry.
type Collector struct {
	reg *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	DataSource      *prometheus.GaugeVec
}

// NewCollector builds and registers all dashboard metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request handling duration.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		DataSource: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dashboard_overview_data_source",
			Help: "1 for the backing that served the last overview, 0 otherwise.",
		}, []string{"source"}),
	}

	reg.MustRegister(c.HTTPRequests, c.RequestDuration, c.DataSource)
	return c
}

// SetDataSource marks which backing served the latest overview.
func (c *Collector) SetDataSource(label string) {
	for _, l := range []string{"Database", "CSV Files"} {
		v := 0.0
		if l == label {
			v = 1.0
		}
		c.DataSource.WithLabelValues(l).Set(v)
	}
}

// Handler serves the /metrics endpoint for this registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
