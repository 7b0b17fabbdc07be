package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	MessagesSeen    prometheus.Counter
	SpamVerdicts    *prometheus.CounterVec
	WarningsIssued  prometheus.Counter
	ManualActions   *prometheus.CounterVec
	VoiceReconnects prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		MessagesSeen: factory.NewCounter(prometheus.CounterOpts{
			Name: "warden_messages_seen_total",
			Help: "Guild messages observed by the gateway handler.",
		}),
		SpamVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_spam_verdicts_total",
			Help: "Spam detector verdicts by outcome.",
		}, []string{"verdict"}),
		WarningsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "warden_warnings_issued_total",
			Help: "Warnings recorded by the warn pipeline.",
		}),
		ManualActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_manual_actions_total",
			Help: "Manual moderator actions correlated from the audit log.",
		}, []string{"kind"}),
		VoiceReconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "warden_voice_reconnects_total",
			Help: "Voice guard reconnect attempts.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
