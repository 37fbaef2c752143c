package session

import (
	"testing"

	"github.com/berrym/lair-chat/internal/types"
)

func TestSharedStateLoginLookup(t *testing.T) {
	ss := NewSharedState()
	sess := New("sid-1", "127.0.0.1:5000")
	ss.AddPeer(sess.PeerAddr, sess)

	u := &types.ConnectedUser{UserID: "u1", Username: "mob", PeerAddr: sess.PeerAddr}
	ss.Login("mob", u)

	got, ok := ss.LookupSessionByUsername("mob")
	if !ok || got != sess {
		t.Fatalf("expected to resolve session for mob, got %v ok=%v", got, ok)
	}

	if !ss.IsUsernameConnected("mob") {
		t.Fatal("expected mob to be connected")
	}

	ss.Logout("mob")
	if ss.IsUsernameConnected("mob") {
		t.Fatal("expected mob to be disconnected after logout")
	}
}

func TestSharedStateUsersInRoom(t *testing.T) {
	ss := NewSharedState()
	room := "room-1"

	s1 := New("sid-1", "127.0.0.1:5001")
	ss.AddPeer(s1.PeerAddr, s1)
	ss.Login("alice", &types.ConnectedUser{Username: "alice", PeerAddr: s1.PeerAddr, CurrentRoomID: &room})

	s2 := New("sid-2", "127.0.0.1:5002")
	ss.AddPeer(s2.PeerAddr, s2)
	ss.Login("bob", &types.ConnectedUser{Username: "bob", PeerAddr: s2.PeerAddr})

	inRoom := ss.UsersInRoom(&room)
	if len(inRoom) != 1 || inRoom[0].Username != "alice" {
		t.Fatalf("expected only alice in room, got %+v", inRoom)
	}

	inLobby := ss.UsersInRoom(nil)
	if len(inLobby) != 1 || inLobby[0].Username != "bob" {
		t.Fatalf("expected only bob in lobby, got %+v", inLobby)
	}
}

func TestSessionTracksRoomPointerAndQueuesOut(t *testing.T) {
	s := New("sid-3", "127.0.0.1:6000")
	if s.CurrentRoomID() != nil {
		t.Fatal("new session should start in Lobby")
	}
	room := "r1"
	s.SetCurrentRoomID(&room)
	if s.CurrentRoomID() == nil || *s.CurrentRoomID() != room {
		t.Fatal("expected current room to be set")
	}

	if !s.QueueOut("hello") {
		t.Fatal("expected queue to accept one line")
	}
	select {
	case line := <-s.Outbound():
		if line != "hello" {
			t.Fatalf("unexpected line %q", line)
		}
	default:
		t.Fatal("expected queued line to be available")
	}
}
