package session

import (
	"sync"

	"github.com/berrym/lair-chat/internal/types"
)

// PeerEntry is one live peer's shared symmetric key and outbound handle, the
// "(shared symmetric key, outbound-message sender handle)" pair of spec.md
// §5.
type PeerEntry struct {
	Session *Session
}

// SharedState is the single process-wide (peers, connected_users) pair of
// spec.md §5: one mutex guards both maps, and any operation that reads one
// map then mutates the other (e.g. "look up recipient then push to queue")
// holds the lock across the whole sequence to avoid a disconnect race.
// Grounded on tinode's Hub holding the single map of live sessions behind
// one mutex (server/hub.go), generalized here to the two maps this spec
// names explicitly.
type SharedState struct {
	mu             sync.Mutex
	peers          map[string]*PeerEntry          // peer address -> entry
	connectedUsers map[string]*types.ConnectedUser // username -> user
}

// NewSharedState builds an empty SharedState.
func NewSharedState() *SharedState {
	return &SharedState{
		peers:          make(map[string]*PeerEntry),
		connectedUsers: make(map[string]*types.ConnectedUser),
	}
}

// AddPeer registers a newly handshaken connection.
func (s *SharedState) AddPeer(peerAddr string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[peerAddr] = &PeerEntry{Session: sess}
}

// RemovePeer removes a disconnected peer's entry. It does not touch the
// connected-user directory; callers that also need to log out a username
// atomically alongside the peer removal must use Disconnect instead.
func (s *SharedState) RemovePeer(peerAddr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, peerAddr)
}

// Disconnect removes peerAddr from the peer directory and, if username is
// non-empty, username from the connected-user directory, in a single
// locked step. spec.md §3/§5 require disconnection to remove both
// atomically under the shared-state lock, closing the window where the
// two maps could otherwise briefly disagree.
func (s *SharedState) Disconnect(peerAddr, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, peerAddr)
	if username != "" {
		delete(s.connectedUsers, username)
	}
}

// Login inserts the connected-user entry for a peer already registered with
// AddPeer (the peer entry itself is not touched here), matching spec.md §4.6's "construct the ConnectedUser, insert into
// SharedState" step.
func (s *SharedState) Login(username string, user *types.ConnectedUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectedUsers[username] = user
}

// Logout removes a connected user entry (on disconnect or explicit logout).
func (s *SharedState) Logout(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connectedUsers, username)
}

// LookupSessionByPeer returns the live Session for peerAddr, if connected.
func (s *SharedState) LookupSessionByPeer(peerAddr string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.peers[peerAddr]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

// LookupSessionByUsername resolves a connected user's live Session. Holds
// the single mutex across both the connected_users lookup and the peers
// lookup, per spec.md §5's race-avoidance rule.
func (s *SharedState) LookupSessionByUsername(username string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.connectedUsers[username]
	if !ok {
		return nil, false
	}
	e, ok := s.peers[u.PeerAddr]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

// ConnectedUser returns a snapshot of username's connected-user record.
func (s *SharedState) ConnectedUser(username string) (types.ConnectedUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.connectedUsers[username]
	if !ok {
		return types.ConnectedUser{}, false
	}
	return *u, true
}

// SetCurrentRoom updates username's current-room pointer in the
// connected-user directory, keeping it consistent with the Session's own
// pointer.
func (s *SharedState) SetCurrentRoom(username string, roomID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.connectedUsers[username]; ok {
		u.CurrentRoomID = roomID
	}
}

// AllConnectedUsers returns a snapshot slice of every connected user, for
// REQUEST_USER_LIST and presence broadcasts (spec.md §4.5).
func (s *SharedState) AllConnectedUsers() []types.ConnectedUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ConnectedUser, 0, len(s.connectedUsers))
	for _, u := range s.connectedUsers {
		out = append(out, *u)
	}
	return out
}

// UsersInRoom returns the connected users whose current room matches
// roomID, or the Lobby (roomID == nil) occupants when roomID is nil.
func (s *SharedState) UsersInRoom(roomID *string) []types.ConnectedUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ConnectedUser, 0)
	for _, u := range s.connectedUsers {
		switch {
		case roomID == nil && u.CurrentRoomID == nil:
			out = append(out, *u)
		case roomID != nil && u.CurrentRoomID != nil && *u.CurrentRoomID == *roomID:
			out = append(out, *u)
		}
	}
	return out
}

// IsUsernameConnected reports whether username currently has a live session.
func (s *SharedState) IsUsernameConnected(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.connectedUsers[username]
	return ok
}
