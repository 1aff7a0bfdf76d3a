// Package observability exposes prometheus metrics and process health.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Delivery outcomes recorded by the dispatcher.
const (
	DeliveryPushed  = "pushed"
	DeliveryDropped = "dropped"
	DeliveryOffline = "offline"
)

// Metrics groups the chat relay collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	messagesStored prometheus.Counter
	storeErrors    prometheus.Counter
	deliveries     *prometheus.CounterVec
	onlineUsers    prometheus.Gauge
	requestLatency *prometheus.HistogramVec
	processRSS     prometheus.Gauge
	processCPU     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		messagesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_stored_total",
			Help: "Messages accepted and persisted by the message store.",
		}),
		storeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_store_errors_total",
			Help: "Durable write failures of the message store.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_deliveries_total",
			Help: "Best-effort pushes of new messages grouped by outcome.",
		}, []string{"outcome"}),
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_presence_online",
			Help: "Identities currently registered with a live connection.",
		}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_request_latency_seconds",
			Help:    "Latency of HTTP operations.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		processRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_process_rss_bytes",
			Help: "Resident memory of the chat relay process.",
		}),
		processCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_process_cpu_percent",
			Help: "CPU usage of the chat relay process.",
		}),
	}

	reg.MustRegister(
		m.messagesStored,
		m.storeErrors,
		m.deliveries,
		m.onlineUsers,
		m.requestLatency,
		m.processRSS,
		m.processCPU,
	)
	return m
}

func (m *Metrics) IncStored() {
	if m == nil {
		return
	}
	m.messagesStored.Inc()
}

func (m *Metrics) IncStoreError() {
	if m == nil {
		return
	}
	m.storeErrors.Inc()
}

func (m *Metrics) RecordDelivery(outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetOnline(n int) {
	if m == nil {
		return
	}
	m.onlineUsers.Set(float64(n))
}

func (m *Metrics) ObserveLatency(op string, dur time.Duration) {
	if m == nil || op == "" {
		return
	}
	m.requestLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func (m *Metrics) SetProcessStats(stats ProcessStats) {
	if m == nil {
		return
	}
	m.processRSS.Set(float64(stats.RSSBytes))
	m.processCPU.Set(stats.CPUPercent)
}
