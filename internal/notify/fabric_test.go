package notify

import (
	"testing"

	"github.com/berrym/lair-chat/internal/session"
	"github.com/berrym/lair-chat/internal/types"
)

func connect(shared *session.SharedState, sid, peerAddr, userID, username string) *session.Session {
	sess := session.New(sid, peerAddr)
	sess.Authenticate(userID, username)
	shared.AddPeer(peerAddr, sess)
	shared.Login(username, &types.ConnectedUser{UserID: userID, Username: username, PeerAddr: peerAddr})
	return sess
}

func TestToUserDeliversToConnectedPeer(t *testing.T) {
	shared := session.NewSharedState()
	sess := connect(shared, "sid-1", "127.0.0.1:7000", "u1", "alice")

	fab := NewFabric(shared, nil)
	if !fab.ToUser("alice", "hi") {
		t.Fatal("expected delivery to connected user")
	}
	select {
	case line := <-sess.Outbound():
		if line != "hi" {
			t.Fatalf("unexpected line %q", line)
		}
	default:
		t.Fatal("expected line to be queued")
	}
}

func TestToUserUndeliveredWhenOffline(t *testing.T) {
	shared := session.NewSharedState()
	fab := NewFabric(shared, nil)
	if fab.ToUser("ghost", "hi") {
		t.Fatal("expected no delivery for an offline user")
	}
}

func TestBroadcastUserListReachesAllPeers(t *testing.T) {
	shared := session.NewSharedState()
	s1 := connect(shared, "sid-1", "127.0.0.1:7001", "u1", "alice")
	s2 := connect(shared, "sid-2", "127.0.0.1:7002", "u2", "bob")

	fab := NewFabric(shared, nil)
	fab.BroadcastUserList()

	for _, s := range []*session.Session{s1, s2} {
		select {
		case line := <-s.Outbound():
			if line[:10] != "USER_LIST:" {
				t.Fatalf("expected USER_LIST prefix, got %q", line)
			}
		default:
			t.Fatal("expected every peer to receive the broadcast")
		}
	}
}
