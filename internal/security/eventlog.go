package security

import "go.uber.org/zap"

// EventLog records the structured security events of spec.md §4.3 — rate
// limit trips, lockouts, suspicious content — through the process logger at
// a dedicated, filterable field set, rather than ad-hoc log lines scattered
// across call sites.
type EventLog struct {
	l *zap.Logger
}

// NewEventLog wraps l (typically logging.L()) for security events.
func NewEventLog(l *zap.Logger) *EventLog {
	return &EventLog{l: l.With(zap.String("component", "security"))}
}

// Record writes one security event: kind names the rule tripped (e.g.
// "rate_limited", "login_lockout", "suspicious_content"), ip and username
// identify the offender (username may be empty pre-auth), message carries
// any extra detail (the matched pattern, the bucket name, ...).
func (e *EventLog) Record(kind, ip, username, message string) {
	e.l.Warn("security event",
		zap.String("kind", kind),
		zap.String("ip", ip),
		zap.String("username", username),
		zap.String("message", message),
	)
}
