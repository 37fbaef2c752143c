package security

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/logging"
)

// Lockout tuning. spec.md §4.3: a run of failed logins from either an ip or
// a username blocks further attempts for a cooldown window.
const (
	maxFailedAttempts = 5
	lockoutWindow     = 15 * time.Minute
)

type failureRecord struct {
	count      int
	lockedAt   time.Time
	lockedTill time.Time
}

func (f *failureRecord) locked(now time.Time) bool {
	return now.Before(f.lockedTill)
}

// LoginGuard tracks failed authentication attempts per ip and per username,
// locking either out for lockoutWindow once maxFailedAttempts is reached.
// Grounded on the teacher's per-connection failure bookkeeping in
// server/session.go, generalized here into its own stateful component.
type LoginGuard struct {
	mu        sync.Mutex
	byIP      map[string]*failureRecord
	byUser    map[string]*failureRecord
}

// NewLoginGuard builds an empty LoginGuard.
func NewLoginGuard() *LoginGuard {
	return &LoginGuard{
		byIP:   make(map[string]*failureRecord),
		byUser: make(map[string]*failureRecord),
	}
}

// ShouldBlock reports whether ip or username is currently locked out.
func (g *LoginGuard) ShouldBlock(ip, username string) error {
	now := time.Now()
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.byIP[ip]; ok && r.locked(now) {
		return errs.RateLimited("auth_lockout_ip")
	}
	if username != "" {
		if r, ok := g.byUser[username]; ok && r.locked(now) {
			return errs.RateLimited("auth_lockout_user")
		}
	}
	return nil
}

// RecordFailure increments the failure counters for ip and username,
// locking either out once the threshold is reached.
func (g *LoginGuard) RecordFailure(ip, username string) {
	now := time.Now()
	g.mu.Lock()
	defer g.mu.Unlock()

	g.bump(g.byIP, ip, now)
	if username != "" {
		g.bump(g.byUser, username, now)
	}
}

func (g *LoginGuard) bump(table map[string]*failureRecord, key string, now time.Time) {
	r, ok := table[key]
	if !ok {
		r = &failureRecord{}
		table[key] = r
	}
	r.count++
	if r.count >= maxFailedAttempts {
		r.lockedAt = now
		r.lockedTill = now.Add(lockoutWindow)
		logging.L().Warn("login guard locked out key", zap.String("key", key))
	}
}

// RecordSuccess clears any failure history for ip and username, per spec.md
// §4.3's reset-on-success rule.
func (g *LoginGuard) RecordSuccess(ip, username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.byIP, ip)
	if username != "" {
		delete(g.byUser, username)
	}
}
