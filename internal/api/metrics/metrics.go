// Package metrics defines all custom Prometheus metrics for the chat
// backend. It is the single source of truth for metric names, labels,
// and help strings; metrics register themselves with the default
// registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "conflict", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unauthorized", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionVerificationsTotal counts token verifications performed by the
// auth middleware.
// Label:
//   - result: "ok" or "rejected"
var SessionVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_verifications_total",
		Help:      "Total number of session token verifications, by result.",
	},
	[]string{"result"},
)

// SessionTouchDroppedTotal counts last-used updates dropped because the
// touch queue was full.
var SessionTouchDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_touch_dropped_total",
		Help:      "Total number of last-used updates dropped under backpressure.",
	},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// ChannelsCreatedTotal counts newly created channels.
// Label:
//   - type: "public", "private", or "direct"
var ChannelsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "channels_created_total",
		Help:      "Total number of channels created, by channel type.",
	},
	[]string{"type"},
)

// MessagesPostedTotal counts messages successfully posted.
var MessagesPostedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_posted_total",
		Help:      "Total number of messages posted.",
	},
)
