// Package metrics exposes the connection runtime's Prometheus surface (spec §4.5, §6): PDU
// throughput, outstanding correlation-table depth, v5.0 congestion state, and enquire-link
// round-trip latency. Scoped to what the session layer itself can observe — no SMS delivery or
// routing metrics, since those belong to the out-of-scope SMSC business layer (spec §1).
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector wraps the Prometheus metrics a Session reports to. The zero value is not usable;
// construct with New.
type Collector struct {
	registry *prometheus.Registry

	pduTotal        *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	pendingRequests *prometheus.GaugeVec
	congestionState *prometheus.GaugeVec
	enquireLinkRTT  prometheus.Histogram
}

// New builds a Collector registered against a fresh, private registry (so multiple Sessions in
// one process, or repeated tests, never collide on Prometheus's global default registry).
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		pduTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smpp_pdu_total",
			Help: "PDUs encoded or decoded by a session, by command, direction, and result.",
		}, []string{"command_id", "direction", "result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "smpp_active_sessions",
			Help: "Number of sessions currently open (counted from transport start, before bind).",
		}),
		pendingRequests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smpp_pending_requests",
			Help: "Outstanding requests awaiting a correlated response, per session.",
		}, []string{"session_id"}),
		congestionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smpp_congestion_state",
			Help: "Smoothed peer-reported congestion_state (0-100), per session.",
		}, []string{"session_id"}),
		enquireLinkRTT: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smpp_enquire_link_rtt_seconds",
			Help:    "Round-trip time of the enquire_link keep-alive.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
	reg.MustRegister(c.pduTotal, c.activeSessions, c.pendingRequests, c.congestionState, c.enquireLinkRTT)
	return c
}

// Handler returns the /metrics HTTP handler for this Collector's registry.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// PDU records one encoded or decoded PDU. direction is "in" or "out"; result is "ok" or "error".
func (c *Collector) PDU(commandID uint32, direction, result string) {
	if c == nil {
		return
	}
	c.pduTotal.WithLabelValues(fmtCommandID(commandID), direction, result).Inc()
}

// SessionOpened increments the active-sessions gauge.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.activeSessions.Inc()
}

// SessionClosed decrements the active-sessions gauge.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.activeSessions.Dec()
}

// SetPending reports the current correlation-table depth for sessionID.
func (c *Collector) SetPending(sessionID string, n int) {
	if c == nil {
		return
	}
	c.pendingRequests.WithLabelValues(sessionID).Set(float64(n))
}

// SetCongestion reports the current smoothed congestion sample for sessionID.
func (c *Collector) SetCongestion(sessionID string, v float64) {
	if c == nil {
		return
	}
	c.congestionState.WithLabelValues(sessionID).Set(v)
}

// ObserveEnquireLinkRTT records one enquire_link round-trip.
func (c *Collector) ObserveEnquireLinkRTT(d time.Duration) {
	if c == nil {
		return
	}
	c.enquireLinkRTT.Observe(d.Seconds())
}

func fmtCommandID(id uint32) string {
	const hexDigits = "0123456789ABCDEF"
	b := make([]byte, 10)
	b[0], b[1] = '0', 'x'
	for i := 0; i < 8; i++ {
		shift := uint(28 - i*4)
		b[2+i] = hexDigits[(id>>shift)&0xF]
	}
	return string(b)
}
