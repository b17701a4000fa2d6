// Package metrics — Prometheus-коллекторы marketplace-сервиса.
// Методы безопасны для nil-получателя: без метрик вызовы ничего не делают.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketplace"

// События аутентификации.
const (
	EventLoginOK         = "login_ok"
	EventLoginFailed     = "login_failed"
	EventRefreshOK       = "refresh_ok"
	EventRefreshRejected = "refresh_rejected"
	EventLogout          = "logout"
)

// Metrics — набор коллекторов сервиса.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	authEvents      *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Credential lifecycle events.",
		}, []string{"event"}),
	}

	reg.MustRegister(m.requestDuration, m.authEvents)

	return m
}

// ObserveRequest фиксирует длительность обработанного HTTP-запроса.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}

	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// AuthEvent увеличивает счётчик события аутентификации.
func (m *Metrics) AuthEvent(event string) {
	if m == nil {
		return
	}

	m.authEvents.WithLabelValues(event).Inc()
}
