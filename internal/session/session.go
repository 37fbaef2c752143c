// Package session implements the per-connection Session and the
// process-wide SharedState of spec.md §3/§5, grounded on tinode's
// server/session.go Session struct: a buffered outbound channel drained by
// one writer goroutine, and a stop channel for forced teardown. Where the
// teacher tracks many topic subscriptions per session (its `subs` map),
// this spec allows only one room at a time, so that map collapses to a
// single *string pointer (nil means Lobby).
package session

import (
	"sync"
	"time"

	"github.com/berrym/lair-chat/internal/crypto"
	"github.com/berrym/lair-chat/internal/types"
)

// outboundQueueSize is the buffered capacity of a Session's send channel,
// matching the order of magnitude of the teacher's own send buffer.
const outboundQueueSize = 256

// Session is the live, per-connection state for one authenticated (or
// pre-authentication) TCP client.
type Session struct {
	SID      string
	PeerAddr string

	// Cipher is nil until the handshake completes.
	Cipher *crypto.Cipher

	mu            sync.RWMutex
	userID        string
	username      string
	currentRoomID *string // nil means Lobby

	send chan string
	stop chan struct{}

	createdAt   time.Time
	lastAction  time.Time
}

// New creates a fresh, unauthenticated Session for one accepted connection.
func New(sid, peerAddr string) *Session {
	now := time.Now()
	return &Session{
		SID:        sid,
		PeerAddr:   peerAddr,
		send:       make(chan string, outboundQueueSize),
		stop:       make(chan struct{}),
		createdAt:  now,
		lastAction: now,
	}
}

// Authenticate attaches the authenticated identity to the session.
func (s *Session) Authenticate(userID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.username = username
}

// UserID returns the authenticated user id, or "" if not yet authenticated.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Username returns the authenticated username, or "" if not yet authenticated.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// CurrentRoomID returns the room the session is currently joined to, or nil
// for the Lobby.
func (s *Session) CurrentRoomID() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoomID
}

// SetCurrentRoomID moves the session into roomID (nil returns it to Lobby).
func (s *Session) SetCurrentRoomID(roomID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoomID = roomID
}

// Touch records client activity for idle-timeout bookkeeping.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAction = time.Now()
}

// IdleSince reports how long it has been since the last recorded activity.
func (s *Session) IdleSince() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastAction)
}

// QueueOut enqueues one outbound line, waiting at most 50µs for queue space
// and dropping the line rather than blocking longer, after the teacher's
// queueOut discipline. It reports whether the line was accepted.
func (s *Session) QueueOut(line string) bool {
	select {
	case s.send <- line:
		return true
	case <-time.After(50 * time.Microsecond):
		return false
	}
}

// Outbound returns the channel the connection's writer goroutine drains.
func (s *Session) Outbound() <-chan string {
	return s.send
}

// Stop signals the connection's goroutines to tear down.
func (s *Session) Stop() {
	close(s.stop)
}

// Done returns the channel closed by Stop.
func (s *Session) Done() <-chan struct{} {
	return s.stop
}

// ToConnectedUser snapshots the session as a types.ConnectedUser record for
// SharedState's user-directory map.
func (s *Session) ToConnectedUser() types.ConnectedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.ConnectedUser{
		UserID:        s.userID,
		Username:      s.username,
		PeerAddr:      s.PeerAddr,
		ConnectedAt:   uint64(s.createdAt.Unix()),
		CurrentRoomID: s.currentRoomID,
	}
}
