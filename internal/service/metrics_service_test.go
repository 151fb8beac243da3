package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

func TestMetricsDispatchAndLogins(t *testing.T) {
	m := NewMetricsService()

	m.DispatchStarted(OpListColleges)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dispatchInFlight))
	m.DispatchRejected(OpGetParticipant)
	m.DispatchCompleted(OpListColleges, 10*time.Millisecond, nil)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.dispatchInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dispatchRejected.WithLabelValues(OpGetParticipant)))

	m.RecordLogin(nil)
	m.RecordLogin(appErrors.Clone(appErrors.ErrInvalidCredentials, ""))
	m.RecordLogin(errors.New("boom"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.logins.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.logins.WithLabelValues("INVALID_CREDENTIALS")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.logins.WithLabelValues("error")))

	m.DeskOpened()
	m.DeskOpened()
	m.DeskClosed()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.openDesks))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/colleges", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "desk_open_sessions")

	var nilMetrics *MetricsService
	nilMetrics.DispatchStarted("x")
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
