package security

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/berrym/lair-chat/internal/logging"
)

// Middleware is the single process-wide security handle of spec.md §4.3 and
// SPEC_FULL.md §5.3: one instance created at startup and passed into every
// connection task, rather than reached for as ambient global state deep in
// the call stack (spec.md §9).
type Middleware struct {
	Limiter *RateLimiter
	Guard   *LoginGuard
	Events  *EventLog
}

// NewMiddleware builds a Middleware. redisClient may be nil, in which case
// rate limiting falls back to an in-memory store.
func NewMiddleware(redisClient *redis.Client) (*Middleware, error) {
	limiter, err := NewRateLimiter(redisClient)
	if err != nil {
		return nil, err
	}
	return &Middleware{
		Limiter: limiter,
		Guard:   NewLoginGuard(),
		Events:  NewEventLog(logging.L()),
	}, nil
}

// CheckAuth runs the auth-path gates for one login/register attempt: rate
// limit, then lockout. Call RecordAuthResult afterward with the outcome.
func (m *Middleware) CheckAuth(ctx context.Context, ip, username string) error {
	if err := m.Limiter.Allow(ctx, BucketAuth, ip); err != nil {
		m.Events.Record("rate_limited", ip, username, "auth bucket exhausted")
		return err
	}
	if err := m.Guard.ShouldBlock(ip, username); err != nil {
		m.Events.Record("login_lockout", ip, username, "blocked by login guard")
		return err
	}
	return nil
}

// RecordAuthResult updates the login guard's failure/success bookkeeping
// after an authentication attempt completes.
func (m *Middleware) RecordAuthResult(ip, username string, success bool) {
	if success {
		m.Guard.RecordSuccess(ip, username)
		return
	}
	m.Guard.RecordFailure(ip, username)
}

// CheckCommand runs the command-path rate limit gate.
func (m *Middleware) CheckCommand(ctx context.Context, ip, username string) error {
	if err := m.Limiter.Allow(ctx, BucketCommand, ip); err != nil {
		m.Events.Record("rate_limited", ip, username, "command bucket exhausted")
		return err
	}
	return nil
}

// ScanAndRecord runs content scanning and logs a suspicious_message_pattern
// event on a hit. A flagged message must not be dispatched (spec.md §4.3);
// the caller is responsible for rejecting it instead of proceeding.
func (m *Middleware) ScanAndRecord(ip, username, content string) (suspicious bool, reason string) {
	suspicious, reason = ScanContent(content)
	if suspicious {
		m.Events.Record("suspicious_message_pattern", ip, username, reason)
	}
	return suspicious, reason
}
