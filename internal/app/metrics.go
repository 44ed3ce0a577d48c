package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	envelopesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meet_envelopes_received_total",
		Help: "Signaling envelopes received, by event kind.",
	}, []string{"event"})

	envelopesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meet_envelopes_sent_total",
		Help: "Signaling envelopes sent, by event kind.",
	}, []string{"event"})

	envelopesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meet_envelopes_dropped_total",
		Help: "Envelopes dropped because they failed to decode.",
	})

	answersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meet_negotiation_answers_total",
		Help: "Answers created in response to remote offers.",
	})

	activeSlots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meet_render_slots",
		Help: "Currently attributed remote render slots.",
	})
)
