package metrics

import "github.com/prometheus/client_golang/prometheus"

// Webhook kinds used as the "kind" label.
const (
	KindVerification = "verification"
	KindDelivery     = "delivery"
)

// WebhookMetrics exposes counters/histograms for the WhatsApp webhook and
// reply flows. All methods are safe on a nil receiver.
type WebhookMetrics struct {
	inboundTotal   *prometheus.CounterVec
	repliesTotal   *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	sendLatency    *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riverfront",
			Subsystem: "whatsapp",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhook requests",
		}, []string{"kind", "status"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riverfront",
			Subsystem: "whatsapp",
			Name:      "replies_selected_total",
			Help:      "Replies selected per keyword group",
		}, []string{"group"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riverfront",
			Subsystem: "whatsapp",
			Name:      "outbound_total",
			Help:      "Total outbound Graph API sends",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riverfront",
			Subsystem: "whatsapp",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of webhook handling up to the acknowledgement",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		sendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riverfront",
			Subsystem: "whatsapp",
			Name:      "send_latency_seconds",
			Help:      "Latency of outbound Graph API sends",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.repliesTotal, m.outboundTotal, m.webhookLatency, m.sendLatency)
	return m
}

func (m *WebhookMetrics) ObserveInbound(kind, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(kind, status).Inc()
}

func (m *WebhookMetrics) ObserveReply(group string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(group).Inc()
}

func (m *WebhookMetrics) ObserveOutbound(status string, seconds float64) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
	m.sendLatency.WithLabelValues(status).Observe(seconds)
}

func (m *WebhookMetrics) ObserveWebhookLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(kind).Observe(seconds)
}
