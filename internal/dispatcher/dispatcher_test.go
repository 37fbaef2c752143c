package dispatcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/berrym/lair-chat/internal/idgen"
	"github.com/berrym/lair-chat/internal/notify"
	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/session"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/store/memory"
	"github.com/berrym/lair-chat/internal/types"
)

func newTestExecutor(t *testing.T) (*Executor, *session.SharedState, *memory.Adapter) {
	t.Helper()
	adapter, err := memory.New()
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	shared := session.NewSharedState()
	fabric := notify.NewFabric(shared, adapter.Rooms())
	secmw, err := security.NewMiddleware(nil)
	if err != nil {
		t.Fatalf("security.NewMiddleware: %v", err)
	}
	return NewExecutor(adapter, fabric, shared, secmw), shared, adapter
}

func connectUser(t *testing.T, ex *Executor, shared *session.SharedState, adapter *memory.Adapter, username string) *session.Session {
	t.Helper()
	ctx := context.Background()
	user := &types.User{ID: idgen.New(), Username: username, IsActive: true, Role: types.RoleUser, CreatedAt: uint64(time.Now().Unix())}
	if err := adapter.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess := session.New(idgen.New(), "127.0.0.1:"+username)
	sess.Authenticate(user.ID, username)
	shared.AddPeer(sess.PeerAddr, sess)
	shared.Login(username, &types.ConnectedUser{UserID: user.ID, Username: username, PeerAddr: sess.PeerAddr})
	return sess
}

// drainRoomStatus consumes the two ROOM_STATUS broadcasts (one for
// CREATE_ROOM, one for JOIN_ROOM) that every connected peer receives.
func drainRoomStatus(t *testing.T, sessions ...*session.Session) {
	t.Helper()
	for _, s := range sessions {
		for i := 0; i < 2; i++ {
			select {
			case line := <-s.Outbound():
				if !strings.HasPrefix(line, "ROOM_STATUS:") {
					t.Fatalf("expected a ROOM_STATUS broadcast, got %q", line)
				}
			default:
				t.Fatal("expected a queued ROOM_STATUS broadcast")
			}
		}
	}
}

func TestCreateRoomThenJoinRoom(t *testing.T) {
	ex, shared, adapter := newTestExecutor(t)
	ctx := context.Background()
	alice := connectUser(t, ex, shared, adapter, "alice")
	bob := connectUser(t, ex, shared, adapter, "bob")

	out := ex.Execute(ctx, alice, ParseCommand("CREATE_ROOM:general"))
	if len(out) != 2 || out[0] != "ROOM_CREATED:general" {
		t.Fatalf("unexpected create_room reply: %+v", out)
	}
	if alice.CurrentRoomID() == nil || *alice.CurrentRoomID() == "" {
		t.Fatal("expected alice's current room to be set")
	}

	out = ex.Execute(ctx, bob, ParseCommand("JOIN_ROOM:general"))
	if len(out) != 2 || out[0] != "ROOM_JOINED:general" {
		t.Fatalf("unexpected join_room reply: %+v", out)
	}

	out = ex.Execute(ctx, alice, ParseCommand("CREATE_ROOM:general"))
	if out[0] != "ROOM_ERROR:Room 'general' already exists" {
		t.Fatalf("expected duplicate room error, got %+v", out)
	}
}

func TestChatLineInRoomFansOutToOtherMembers(t *testing.T) {
	ex, shared, adapter := newTestExecutor(t)
	ctx := context.Background()
	alice := connectUser(t, ex, shared, adapter, "alice")
	bob := connectUser(t, ex, shared, adapter, "bob")

	ex.Execute(ctx, alice, ParseCommand("CREATE_ROOM:general"))
	ex.Execute(ctx, bob, ParseCommand("JOIN_ROOM:general"))
	drainRoomStatus(t, alice, bob)

	ex.Execute(ctx, alice, ParseCommand("hello room"))

	select {
	case line := <-bob.Outbound():
		if line != "alice: hello room" {
			t.Fatalf("unexpected line: %q", line)
		}
	default:
		t.Fatal("expected bob to receive the chat line")
	}
}

func TestEditMessageDoesNotDoubleSendToAuthor(t *testing.T) {
	ex, shared, adapter := newTestExecutor(t)
	ctx := context.Background()
	alice := connectUser(t, ex, shared, adapter, "alice")
	bob := connectUser(t, ex, shared, adapter, "bob")

	ex.Execute(ctx, alice, ParseCommand("CREATE_ROOM:general"))
	ex.Execute(ctx, bob, ParseCommand("JOIN_ROOM:general"))
	drainRoomStatus(t, alice, bob)
	ex.Execute(ctx, alice, ParseCommand("hello room"))
	<-bob.Outbound() // drain the plain chat line fan-out

	msgs, err := adapter.Messages().ListByRoom(ctx, *alice.CurrentRoomID(), store.Page{Limit: 10})
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected one persisted message, got %v, err %v", msgs, err)
	}

	out := ex.Execute(ctx, alice, ParseCommand("EDIT_MESSAGE:"+msgs[0].ID+":hello room, edited"))
	if len(out) != 1 || !strings.HasPrefix(out[0], "MESSAGE_EDITED:") {
		t.Fatalf("unexpected edit reply: %+v", out)
	}

	select {
	case line := <-bob.Outbound():
		if !strings.HasPrefix(line, "MESSAGE_EDITED:") {
			t.Fatalf("unexpected line: %q", line)
		}
	default:
		t.Fatal("expected bob to receive the MESSAGE_EDITED fan-out")
	}

	select {
	case line := <-alice.Outbound():
		t.Fatalf("expected the author not to receive a second copy, got %q", line)
	default:
	}
}

func TestLobbyChatLineIsNotPersisted(t *testing.T) {
	ex, shared, adapter := newTestExecutor(t)
	ctx := context.Background()
	alice := connectUser(t, ex, shared, adapter, "alice")
	_ = connectUser(t, ex, shared, adapter, "bob")

	ex.Execute(ctx, alice, ParseCommand("hi everyone"))

	msgs, err := adapter.Messages().ListByRoom(ctx, types.LobbyName, store.Page{Limit: 10})
	if err != nil {
		t.Fatalf("list by room: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected Lobby chat not to be persisted, got %d messages", len(msgs))
	}
}

func TestDMDeliversToOnlineRecipient(t *testing.T) {
	ex, shared, adapter := newTestExecutor(t)
	ctx := context.Background()
	alice := connectUser(t, ex, shared, adapter, "alice")
	bob := connectUser(t, ex, shared, adapter, "bob")

	out := ex.Execute(ctx, alice, ParseCommand("DM:bob:hey there"))
	if !strings.Contains(out[0], "DM sent to bob") {
		t.Fatalf("unexpected reply: %+v", out)
	}

	select {
	case line := <-bob.Outbound():
		if line != "PRIVATE_MESSAGE:alice:hey there" {
			t.Fatalf("unexpected line: %q", line)
		}
	default:
		t.Fatal("expected bob to receive the DM")
	}
}

func TestDMToOfflineUserStillPersists(t *testing.T) {
	ex, shared, adapter := newTestExecutor(t)
	ctx := context.Background()
	alice := connectUser(t, ex, shared, adapter, "alice")

	offline := &types.User{ID: idgen.New(), Username: "carol", IsActive: true, Role: types.RoleUser}
	if err := adapter.Users().Create(ctx, offline); err != nil {
		t.Fatalf("create offline user: %v", err)
	}

	out := ex.Execute(ctx, alice, ParseCommand("DM:carol:are you there"))
	if !strings.Contains(out[0], "is not online") {
		t.Fatalf("expected offline notice, got %+v", out)
	}
}
