// Package notify implements the notification fabric of spec.md §4.5: four
// addressing modes over SharedState's peer map, each a bounded-wait push
// (Session.QueueOut) onto a per-connection queue drained by that connection's own writer
// goroutine. Grounded on tinode's server/hub.go broadcast-by-topic pattern
// and server/pres.go presence-notification shape, collapsed here to
// SharedState addressing since this spec has no topic-actor layer. Per §9,
// Fabric holds only a SharedState reference, never a back-pointer to the
// dispatcher.
package notify

import (
	"context"
	"fmt"

	"github.com/berrym/lair-chat/internal/logging"
	"github.com/berrym/lair-chat/internal/session"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/types"
	"go.uber.org/zap"
)

// Fabric fans outbound lines out to connected peers.
type Fabric struct {
	shared *session.SharedState
	rooms  store.RoomStore
}

// NewFabric builds a Fabric over shared and the room store (needed to
// enumerate room membership for room-addressed sends).
func NewFabric(shared *session.SharedState, rooms store.RoomStore) *Fabric {
	return &Fabric{shared: shared, rooms: rooms}
}

func (f *Fabric) push(sess *session.Session, line string) {
	if sess == nil {
		return
	}
	if !sess.QueueOut(line) {
		logging.L().Warn("notify: dropped outbound line, queue full", zap.String("peer_addr", sess.PeerAddr))
	}
}

// ToUser resolves username to its live session and pushes line, returning
// whether delivery was attempted against a connected peer (spec.md §4.5:
// "Returns a delivered/undelivered flag").
func (f *Fabric) ToUser(username, line string) (delivered bool) {
	sess, ok := f.shared.LookupSessionByUsername(username)
	if !ok {
		return false
	}
	f.push(sess, line)
	return true
}

// ToRoom enumerates roomID's members from storage and pushes line to every
// connected member other than excludeUserID (typically the sender).
func (f *Fabric) ToRoom(ctx context.Context, roomID, excludeUserID, line string) error {
	members, err := f.rooms.ListMembersByRoom(ctx, roomID, store.Page{Limit: 10000})
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID == excludeUserID {
			continue
		}
		f.toUserID(m.UserID, line)
	}
	return nil
}

// toUserID resolves a user id to a live session via SharedState's connected
// user directory and pushes line, if connected.
func (f *Fabric) toUserID(userID, line string) {
	for _, u := range f.shared.AllConnectedUsers() {
		if u.UserID == userID {
			if sess, ok := f.shared.LookupSessionByPeer(u.PeerAddr); ok {
				f.push(sess, line)
			}
			return
		}
	}
}

// ToAllPeers pushes line to every connected peer, unconditionally.
func (f *Fabric) ToAllPeers(line string) {
	for _, u := range f.shared.AllConnectedUsers() {
		if sess, ok := f.shared.LookupSessionByPeer(u.PeerAddr); ok {
			f.push(sess, line)
		}
	}
}

// ToAllPeersExcept pushes line to every connected peer other than
// excludeUserID, used for the Lobby chat-line fan-out of spec.md §4.4.
func (f *Fabric) ToAllPeersExcept(excludeUserID, line string) {
	for _, u := range f.shared.AllConnectedUsers() {
		if u.UserID == excludeUserID {
			continue
		}
		if sess, ok := f.shared.LookupSessionByPeer(u.PeerAddr); ok {
			f.push(sess, line)
		}
	}
}

// BroadcastUserList constructs and pushes a USER_LIST:<...> record to every
// connected peer (spec.md §4.5).
func (f *Fabric) BroadcastUserList() {
	users := f.shared.AllConnectedUsers()
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	f.ToAllPeers(formatUserList(names))
}

// BroadcastRoomStatus constructs and pushes a
// ROOM_STATUS:<room_or_Lobby>,<username> record to every connected peer
// (spec.md §4.5).
func (f *Fabric) BroadcastRoomStatus(roomID *string, username string) {
	roomLabel := types.LobbyName
	if roomID != nil {
		roomLabel = *roomID
	}
	f.ToAllPeers(fmt.Sprintf("ROOM_STATUS:%s,%s", roomLabel, username))
}

func formatUserList(names []string) string {
	out := "USER_LIST:"
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}
