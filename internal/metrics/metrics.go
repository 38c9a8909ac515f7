// Package metrics exposes the Prometheus collectors of the marketplace:
// HTTP traffic, moderation decisions and chat activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diewo77/go-rems/httpx"
)

// Metrics owns a private registry so tests can build as many as they like.
// It implements moderation.Observer and chat.Observer.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	decisions   *prometheus.CounterVec
	messages    prometheus.Counter
	subscribers prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rems_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rems_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rems_moderation_decisions_total",
			Help: "Moderation decisions by gate (listing, review, agent) and decision.",
		}, []string{"gate", "decision"}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rems_chat_messages_total",
			Help: "Chat messages stored.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rems_chat_subscribers",
			Help: "Open chat streams.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.decisions, m.messages, m.subscribers,
	)
	return m
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the exposition format on /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := httpx.NewStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.requests.WithLabelValues(r.Method, strconv.Itoa(rec.Status)).Inc()
		m.duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveDecision(gate, decision string) {
	m.decisions.WithLabelValues(gate, decision).Inc()
}

func (m *Metrics) MessageSent() { m.messages.Inc() }

func (m *Metrics) SubscribersChanged(delta int) { m.subscribers.Add(float64(delta)) }
