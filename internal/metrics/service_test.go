package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/shuttle-league/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCountersAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := metrics.NewService(reg)

	svc.IncLifecycleEvent("league_created")
	svc.IncLifecycleEvent("league_created")
	svc.IncOperationError("CONFLICT")
	svc.IncStandingsComputed()
	svc.SetActiveSubscriptions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.LifecycleEvents.WithLabelValues("league_created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.OperationErrors.WithLabelValues("CONFLICT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.StandingsComputed))
	assert.Equal(t, 3.0, testutil.ToFloat64(svc.ActiveSubscriptions))

	rec := httptest.NewRecorder()
	metrics.NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `shuttle_lifecycle_events_total{event="league_created"} 2`)
}

func TestMock(t *testing.T) {
	m := metrics.NewMock()
	m.IncLifecycleEvent("invitation_sent")
	m.IncSlackNotifFailed()

	assert.Equal(t, 1, m.LifecycleEvents("invitation_sent"))
	assert.Zero(t, m.LifecycleEvents("league_created"))
	assert.Equal(t, 1, m.SlackNotifFailed())
}
