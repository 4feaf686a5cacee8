// Package metrics defines and registers the custom Prometheus metrics of the
// robot access service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Every metric is registered with the default registry through promauto when
// the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "robot_access"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or the error kind (e.g. "invalid_credentials", "account_disabled")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// SessionVerificationsTotal counts token checks made by the HTTP guard and the gateway.
// Label:
//   - result: "ok" or the error kind (e.g. "session_superseded", "invalid_token")
var SessionVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_verifications_total",
		Help:      "Total number of session token verifications, labelled by result.",
	},
	[]string{"result"},
)

// ── Policy metrics ────────────────────────────────────────────────────────────

// PolicyDecisionsTotal counts can_operate decisions.
// Labels:
//   - resource: "ros" or "iot"
//   - result: "allowed", "unallocated", "wrong_resource" or "outside_window"
var PolicyDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_decisions_total",
		Help:      "Total number of resource access decisions.",
	},
	[]string{"resource", "result"},
)

// TimeslotAllocationsTotal counts allocation attempts.
// Label:
//   - result: "ok" or the error kind
var TimeslotAllocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timeslot_allocations_total",
		Help:      "Total number of timeslot allocation attempts.",
	},
	[]string{"result"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayHandshakesTotal counts streaming handshakes.
// Label:
//   - result: "accepted" or the rejection kind
var GatewayHandshakesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_handshakes_total",
		Help:      "Total number of streaming handshakes, labelled by result.",
	},
	[]string{"result"},
)

// GatewayConnections tracks live authorized connections per subscribed resource.
var GatewayConnections = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gateway_connections",
		Help:      "Current number of authorized streaming connections per resource.",
	},
	[]string{"resource"},
)

// ── Telemetry metrics ─────────────────────────────────────────────────────────

// TelemetryEventsTotal counts robot output lines and faults relayed to clients.
// Labels:
//   - resource: "ros" or "iot"
//   - kind: "output" or "fault"
var TelemetryEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_events_total",
		Help:      "Total number of robot telemetry events relayed.",
	},
	[]string{"resource", "kind"},
)

// TelemetryEventsDroppedTotal counts events discarded because the worker
// channel for their resource was full.
// Label:
//   - resource: "ros" or "iot"
var TelemetryEventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_events_dropped_total",
		Help:      "Total number of robot telemetry events dropped on a full dispatcher queue.",
	},
	[]string{"resource"},
)

// TelemetryQueueDepth tracks the events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var TelemetryQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "telemetry_queue_depth",
		Help:      "Current number of telemetry events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
