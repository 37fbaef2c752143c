// Package metrics implements the performance monitor of spec.md §4.7:
// operation counters, security-event counters, and system gauges, backed by
// Prometheus. Grounded on
// RoseWrightdev-Video-Conferencing/internal/v1/metrics's promauto
// declarations and namespace_subsystem_name convention, adapted from that
// repo's websocket/webrtc subsystems to this engine's dispatcher/security
// subsystems.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lair_chat",
		Subsystem: "dispatcher",
		Name:      "operations_total",
		Help:      "Total commands executed, by command kind",
	}, []string{"command"})

	operationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lair_chat",
		Subsystem: "dispatcher",
		Name:      "operation_errors_total",
		Help:      "Total command executions that returned an error reply",
	}, []string{"command", "kind"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lair_chat",
		Subsystem: "dispatcher",
		Name:      "operation_duration_seconds",
		Help:      "Time spent executing one command",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	securityEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lair_chat",
		Subsystem: "security",
		Name:      "events_total",
		Help:      "Total security events recorded, by kind",
	}, []string{"kind"})

	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lair_chat",
		Subsystem: "transport",
		Name:      "connections_active",
		Help:      "Current number of live TCP connections",
	})

	usersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lair_chat",
		Subsystem: "session",
		Name:      "users_connected",
		Help:      "Current number of authenticated, connected users",
	})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lair_chat",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})
)

// RecordOperation records one command execution and its latency, whether or
// not the command produced an error reply.
func RecordOperation(command string, seconds float64) {
	operationsTotal.WithLabelValues(command).Inc()
	operationDuration.WithLabelValues(command).Observe(seconds)
}

// RecordOperationError records a command execution that surfaced an error
// reply, tagged with the reply's wire error tag (e.g. ROOM_ERROR).
func RecordOperationError(command, kind string) {
	operationErrorsTotal.WithLabelValues(command, kind).Inc()
}

// RecordSecurityEvent records one security event by kind (rate_limited,
// login_lockout, suspicious_content, ...).
func RecordSecurityEvent(kind string) {
	securityEventsTotal.WithLabelValues(kind).Inc()
}

// SystemSnapshot is the input to UpdateSystemMetrics: a point-in-time read
// of the gauges spec.md §4.7 names.
type SystemSnapshot struct {
	ConnectionsActive int
	UsersConnected    int
	RoomsActive       int
}

// UpdateSystemMetrics overwrites the system-level gauges from a snapshot.
// Callers that only track one of the three counters (e.g. the accept loop
// tracking live connections) should use SetConnectionsActive instead, to
// avoid zeroing the other two gauges.
func UpdateSystemMetrics(s SystemSnapshot) {
	connectionsActive.Set(float64(s.ConnectionsActive))
	usersConnected.Set(float64(s.UsersConnected))
	roomsActive.Set(float64(s.RoomsActive))
}

// SetConnectionsActive updates only the live-connection gauge, for the
// accept loop's per-connection open/close bookkeeping.
func SetConnectionsActive(n int) {
	connectionsActive.Set(float64(n))
}

// Thresholds are the configuration-supplied alert levels of spec.md §4.7;
// compiled-in invariants are deliberately avoided so operators can tune
// them without a rebuild.
type Thresholds struct {
	MaxConnections int
	MaxRoomsActive int
}

// CheckThresholds reports which of s's gauges exceed t, as a list of
// human-readable reasons (empty when nothing is breached).
func CheckThresholds(s SystemSnapshot, t Thresholds) []string {
	var breaches []string
	if t.MaxConnections > 0 && s.ConnectionsActive > t.MaxConnections {
		breaches = append(breaches, "connections_active exceeds configured threshold")
	}
	if t.MaxRoomsActive > 0 && s.RoomsActive > t.MaxRoomsActive {
		breaches = append(breaches, "rooms_active exceeds configured threshold")
	}
	return breaches
}
