package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAllMetrics(t *testing.T) {
	m := New("arctecfox")
	require.NotNil(t, m)

	m.DueDateFallbackTotal.Inc()
	m.DueDateFallbackTotal.Inc()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.DueDateFallbackTotal))

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/signoffs/pending", "200").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal))
}

func TestNew_IsolatedRegistries(t *testing.T) {
	// Two instances must not clash; each owns its registry.
	a := New("arctecfox")
	b := New("arctecfox")
	a.CacheHitsTotal.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(a.CacheHitsTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.CacheHitsTotal))
}

func TestHandler_ServesMetrics(t *testing.T) {
	m := New("arctecfox")
	m.SignoffsSeededTotal.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "arctecfox_signoffs_seeded_total 1")
}
