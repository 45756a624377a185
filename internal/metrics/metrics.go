// Package metrics exposes Prometheus instruments for the HACCP service.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	// Core operation outcomes by operation and result
	Operations *prometheus.CounterVec

	OperationLatency *prometheus.HistogramVec

	// HTTP requests by route, method and status code
	Requests *prometheus.CounterVec

	ReportsArchived *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "haccp_operations_total",
			Help: "Total core operations by name and result",
		}, []string{"operation", "result"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "haccp_operation_duration_seconds",
			Help:    "Duration of core operations including persistence",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "haccp_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),

		ReportsArchived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "haccp_reports_archived_total",
			Help: "Reports uploaded to the archive by format",
		}, []string{"format"}),
	}
}

// Observe records a core operation. It satisfies core.MetricsRecorder.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	m.Operations.WithLabelValues(operation, result).Inc()
	m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrementRequest records a served HTTP request.
func (m *Metrics) IncrementRequest(route, method string, status int) {
	if m != nil {
		m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
}

// IncrementReportsArchived records an uploaded report.
func (m *Metrics) IncrementReportsArchived(format string) {
	if m != nil {
		m.ReportsArchived.WithLabelValues(format).Inc()
	}
}
