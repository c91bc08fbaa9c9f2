package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HostMessages counts inbound host messages by outcome:
	// accepted, rejected_origin, malformed, unsolvable.
	HostMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchgame_host_messages_total",
			Help: "Inbound host messages by outcome",
		},
		[]string{"result"},
	)

	Matches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchgame_matches_total",
			Help: "Recorded question/explanation matches",
		},
		[]string{"correct"},
	)

	// RoundsCompleted counts reports of fully matched rounds. Partial
	// manual submits are not counted.
	RoundsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchgame_rounds_completed_total",
			Help: "Fully matched rounds reported to the host",
		},
		[]string{"answered_correctly"},
	)

	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchgame_dispatches_total",
			Help: "Outbound envelopes posted per target origin",
		},
		[]string{"type", "status"},
	)

	SinkWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchgame_sink_writes_total",
			Help: "Result sink writes",
		},
		[]string{"sink", "status"},
	)

	// ActiveChannels is the number of open widget channels.
	ActiveChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchgame_active_channels",
			Help: "Open widget channels",
		},
	)
)

// Outcome labels for HostMessages.
const (
	Accepted       = "accepted"
	RejectedOrigin = "rejected_origin"
	Malformed      = "malformed"
	Unsolvable     = "unsolvable"
)

func Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
