package providers

import (
	"postit/internal/services"
	"postit/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metricsTestService only answers Stats; any other call panics.
type metricsTestService struct {
	services.SocialServiceInterface
	stats services.Stats
}

func (m *metricsTestService) Stats() services.Stats { return m.stats }

func useTestRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	prevReg, prevGath := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prevReg
		prometheus.DefaultGatherer = prevGath
	})
	return reg
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			require.Equal(t, dto.MetricType_GAUGE, f.GetType())
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/posts", 200)
	m.ObserveRequestDuration("/posts", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.IncPersistenceFailures()
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	reg := useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})

	m.IncRequestsTotal("/posts", 200)
	m.IncRequestsTotal("/posts", 404)
	m.ObserveRequestDuration("/posts", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(100 * time.Millisecond)
	m.IncPersistenceFailures()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["postit_requests_total"])
	assert.True(t, names["postit_persistence_failures_total"])
	assert.True(t, names["postit_cache_hits_total"])
}

func TestMetricsProvider_StateGauges(t *testing.T) {
	reg := useTestRegistry(t)

	svc := &metricsTestService{stats: services.Stats{Users: 3, Posts: 2, Comments: 7}}
	NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}}, svc)

	assert.Equal(t, 3.0, gaugeValue(t, reg, "postit_users_total"))
	assert.Equal(t, 2.0, gaugeValue(t, reg, "postit_posts_total"))
	assert.Equal(t, 7.0, gaugeValue(t, reg, "postit_comments_total"))

	svc.stats.Posts = 5
	assert.Equal(t, 5.0, gaugeValue(t, reg, "postit_posts_total"))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
