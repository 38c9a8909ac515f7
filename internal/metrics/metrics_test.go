package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-rems/internal/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareCountsByCode(t *testing.T) {
	m := metrics.New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	for _, p := range []string{"/", "/", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `rems_http_requests_total{code="200",method="GET"} 2`)
	assert.Contains(t, out, `rems_http_requests_total{code="404",method="GET"} 1`)
	assert.Contains(t, out, `rems_http_request_duration_seconds_count{method="GET"} 3`)
}

func TestObservers(t *testing.T) {
	m := metrics.New()
	m.ObserveDecision("listing", "approve")
	m.ObserveDecision("listing", "approve")
	m.ObserveDecision("agent", "reject")
	m.MessageSent()
	m.SubscribersChanged(1)
	m.SubscribersChanged(1)
	m.SubscribersChanged(-1)

	out := scrape(t, m)
	assert.Contains(t, out, `rems_moderation_decisions_total{decision="approve",gate="listing"} 2`)
	assert.Contains(t, out, `rems_moderation_decisions_total{decision="reject",gate="agent"} 1`)
	assert.Contains(t, out, "rems_chat_messages_total 1")
	assert.Contains(t, out, "rems_chat_subscribers 1")
}

func TestMiddlewareKeepsFlusher(t *testing.T) {
	m := metrics.New()
	var flushable bool
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, flushable = w.(http.Flusher)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.True(t, flushable)
}
