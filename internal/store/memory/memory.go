// Package memory is the in-memory reference implementation of the storage
// contract (internal/store). It is the adapter the engine and its tests run
// against; spec.md §1 places the physical database backend out of scope, so
// this rewrite ships only this reference adapter rather than a production
// SQL/NoSQL one (see DESIGN.md).
//
// Locking discipline mirrors tinode's per-adapter-family approach: one
// sync.RWMutex guards each entity family's map, held for the minimum span
// needed to preserve the uniqueness and visibility invariants of spec.md §3.
package memory

import (
	"github.com/berrym/lair-chat/internal/store"
)

// Adapter is the in-memory Store implementation.
type Adapter struct {
	users       *userStore
	rooms       *roomStore
	messages    *messageStore
	invitations *invitationStore
	sessions    *sessionStore
}

// New constructs an empty in-memory adapter.
func New() (*Adapter, error) {
	ms, err := newMessageStore()
	if err != nil {
		return nil, err
	}
	return &Adapter{
		users:       newUserStore(),
		rooms:       newRoomStore(),
		messages:    ms,
		invitations: newInvitationStore(),
		sessions:    newSessionStore(),
	}, nil
}

func (a *Adapter) Users() store.UserStore             { return a.users }
func (a *Adapter) Rooms() store.RoomStore             { return a.rooms }
func (a *Adapter) Messages() store.MessageStore       { return a.messages }
func (a *Adapter) Invitations() store.InvitationStore { return a.invitations }
func (a *Adapter) Sessions() store.SessionStore       { return a.sessions }

// Close releases any resources (the bleve index) held by the adapter.
func (a *Adapter) Close() error {
	return a.messages.close()
}
