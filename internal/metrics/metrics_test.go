package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yectos/projects-api/internal/metrics"
)

func TestRecordProjectMutation(t *testing.T) {
	before := testutil.ToFloat64(metrics.ProjectMutations.WithLabelValues("create", "true"))
	metrics.RecordProjectMutation("create", true)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProjectMutations.WithLabelValues("create", "true")))
}

func TestRecordCacheResult(t *testing.T) {
	before := testutil.ToFloat64(metrics.DashboardCacheResults.WithLabelValues("hit"))
	metrics.RecordCacheResult("hit")
	metrics.RecordCacheResult("hit")
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.DashboardCacheResults.WithLabelValues("hit")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	metrics.RecordHTTPRequest(http.MethodGet, "/api/v1/projects", http.StatusOK, 5*time.Millisecond)
	metrics.RecordJobRun("dashboard_snapshot", true, time.Second)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "projects_http_request_duration_seconds")
	assert.Contains(t, string(body), "projects_job_duration_seconds")
}
