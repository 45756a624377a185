package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsByResult(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.Observe(ctx, "add_monitoring_log", true, 2*time.Millisecond)
	m.Observe(ctx, "add_monitoring_log", true, time.Millisecond)
	m.Observe(ctx, "add_monitoring_log", false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("add_monitoring_log", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("add_monitoring_log", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationLatency))
}

func TestRequestAndReportCounters(t *testing.T) {
	m := New()
	m.IncrementRequest("/api/plans", "GET", 200)
	m.IncrementRequest("/api/plans", "GET", 200)
	m.IncrementReportsArchived("csv")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/plans", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsArchived.WithLabelValues("csv")))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["haccp_http_requests_total"])
	assert.True(t, names["go_goroutines"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Observe(context.Background(), "op", true, time.Millisecond)
	m.IncrementRequest("/", "GET", 200)
	m.IncrementReportsArchived("text")
}

func TestInstancesUseSeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.IncrementReportsArchived("text")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReportsArchived.WithLabelValues("text")))
}
