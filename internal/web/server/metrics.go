package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"WebCore/internal/web"
)

// Metrics 是 Dispatcher 的 Prometheus 指标。注册到调用方传入的 Registerer，不使用全局注册表。
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	rejectedTotal   *prometheus.CounterVec
}

// 请求分类，用作 kind 标签。
const (
	kindDynamic  = "dynamic"
	kindStatic   = "static"
	kindNotFound = "not_found"
	kindRejected = "rejected"
)

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "webcore",
				Name:      "requests_total",
				Help:      "Total number of finalized requests",
			},
			[]string{"method", "status", "kind"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "webcore",
				Name:      "request_duration_seconds",
				Help:      "Time from dispatch to finalization",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "kind"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "webcore",
				Name:      "in_flight",
				Help:      "Requests accepted but not yet finalized",
			},
		),
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "webcore",
				Name:      "rejected_total",
				Help:      "Requests rejected before reaching a worker",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.requestDuration, m.inFlight, m.rejectedTotal)
	}
	return m
}

func (m *Metrics) begin() {
	if m != nil {
		m.inFlight.Inc()
	}
}

func (m *Metrics) done(method, kind string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	// 未知方法归为一类，避免标签基数失控。
	if !web.KnownMethod(method) {
		method = "OTHER"
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status), kind).Inc()
	m.requestDuration.WithLabelValues(method, kind).Observe(elapsed.Seconds())
}

func (m *Metrics) rejected(reason string) {
	if m != nil {
		m.rejectedTotal.WithLabelValues(reason).Inc()
	}
}
