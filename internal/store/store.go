// Package store defines the storage contract the engine consumes
// (spec.md §4.1): typed asynchronous-at-the-call-site CRUD over users,
// rooms, memberships, messages, invitations, and sessions, partitioned by
// entity family exactly as server/store/adapter/adapter.go partitions
// tinode's adapter interface. The engine only ever talks to this interface;
// the physical database backend is an external collaborator (spec.md §1).
package store

import (
	"context"

	"github.com/berrym/lair-chat/internal/types"
)

// Page describes a simple offset/limit page request.
type Page struct {
	Limit  int
	Offset int
}

// SearchQuery describes a full-text message search request (spec.md §4.1).
type SearchQuery struct {
	Text      string
	RoomID    string // optional filter
	UserID    string // optional filter
	Type      types.MessageType
	Since     uint64 // optional, 0 means unbounded
	Until     uint64 // optional, 0 means unbounded
	Limit     int
	Offset    int
}

// SearchResult is the composite result of a full-text message search,
// carrying the pagination/telemetry fields spec.md §4.1 requires.
type SearchResult struct {
	Messages        []types.Message
	TotalCount      int
	HasMore         bool
	ExecutionTimeMS float64
}

// UserStore is the users partition of the storage contract.
type UserStore interface {
	Create(ctx context.Context, u *types.User) error
	Get(ctx context.Context, id string) (*types.User, error)
	GetByUsername(ctx context.Context, username string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	Update(ctx context.Context, u *types.User) error
	UpdateLastSeen(ctx context.Context, id string, lastSeen uint64) error
	UpdatePassword(ctx context.Context, id, passwordHash, salt string) error
	UpdateProfile(ctx context.Context, id string, profile types.UserProfile) error
	UpdateSettings(ctx context.Context, id string, settings types.UserSettings) error
	UpdateRole(ctx context.Context, id string, role types.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	ListByRole(ctx context.Context, role types.Role, page Page) ([]types.User, error)
	ListActiveSince(ctx context.Context, since uint64, page Page) ([]types.User, error)
	Count(ctx context.Context) (int, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Search(ctx context.Context, query string, page Page) ([]types.User, error)
}

// RoomStore is the rooms + memberships partition of the storage contract.
type RoomStore interface {
	Create(ctx context.Context, r *types.Room) error
	Get(ctx context.Context, id string) (*types.Room, error)
	GetByName(ctx context.Context, name string) (*types.Room, error)
	Update(ctx context.Context, r *types.Room) error
	UpdateSettings(ctx context.Context, id string, settings types.RoomSettings) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, roomType *types.RoomType, page Page) ([]types.Room, error)
	Search(ctx context.Context, query string, page Page) ([]types.Room, error)
	NameExists(ctx context.Context, name string) (bool, error)

	AddMember(ctx context.Context, m *types.RoomMembership) error
	RemoveMember(ctx context.Context, roomID, userID string) error
	UpdateMemberRole(ctx context.Context, roomID, userID string, role types.MemberRole) error
	UpdateMemberSettings(ctx context.Context, roomID, userID string, settings map[string]any) error
	GetMembership(ctx context.Context, roomID, userID string) (*types.RoomMembership, error)
	ListMembersByRoom(ctx context.Context, roomID string, page Page) ([]types.RoomMembership, error)
	ListMembershipsByUser(ctx context.Context, userID string, page Page) ([]types.RoomMembership, error)
	ListMembersActiveSince(ctx context.Context, roomID string, since uint64) ([]types.RoomMembership, error)
	CountMembers(ctx context.Context, roomID string) (int, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
}

// MessageStore is the messages partition of the storage contract, including
// reactions, read receipts, search, threads and cursor-based listings.
type MessageStore interface {
	Save(ctx context.Context, m *types.Message) error
	Update(ctx context.Context, id, newContent string, editedAt uint64) error
	SoftDelete(ctx context.Context, id string, deletedAt uint64) error
	HardDelete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*types.Message, error)
	ListByRoom(ctx context.Context, roomID string, page Page) ([]types.Message, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]types.Message, error)
	ListByTimeRange(ctx context.Context, roomID string, from, to uint64) ([]types.Message, error)
	ListAfter(ctx context.Context, roomID, afterMessageID string, limit int) ([]types.Message, error)
	ListBefore(ctx context.Context, roomID, beforeMessageID string, limit int) ([]types.Message, error)
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	ListThread(ctx context.Context, parentMessageID string) ([]types.Message, error)

	AddReaction(ctx context.Context, messageID, userID, emoji string, at uint64) error
	RemoveReaction(ctx context.Context, messageID, userID, emoji string) error

	AddReadReceipt(ctx context.Context, r types.ReadReceipt) error
	ListUnreadSince(ctx context.Context, roomID, userID string, since uint64) ([]types.Message, error)
	MarkReadUpTo(ctx context.Context, roomID, userID, upToMessageID string, at uint64) (int, error)
}

// InvitationStore is the invitations partition of the storage contract.
type InvitationStore interface {
	Create(ctx context.Context, inv *types.Invitation) error
	UpdateStatus(ctx context.Context, id string, status types.InvitationStatus, respondedAt uint64) error
	Get(ctx context.Context, id string) (*types.Invitation, error)
	Find(ctx context.Context, recipientID, roomID string, status *types.InvitationStatus) (*types.Invitation, error)
	ListForUser(ctx context.Context, userID string, status types.InvitationStatus) ([]types.Invitation, error)
	PendingCount(ctx context.Context, userID string) (int, error)
}

// SessionStore is the sessions partition of the storage contract.
type SessionStore interface {
	Create(ctx context.Context, s *types.Session) error
	Get(ctx context.Context, id string) (*types.Session, error)
	GetByToken(ctx context.Context, token string) (*types.Session, error)
	TouchActivity(ctx context.Context, id string, at uint64) error
	UpdateMetadata(ctx context.Context, id string, metadata map[string]any) error
	Deactivate(ctx context.Context, id string) error
	DeactivateAllForUser(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context, now uint64) (int, error)
	Stats(ctx context.Context) (active int, total int, err error)
}

// Store aggregates every entity-family partition. The engine holds a single
// Store value, injected at startup (spec.md §9: singletons become explicit
// injected handles, not ambient globals).
type Store interface {
	Users() UserStore
	Rooms() RoomStore
	Messages() MessageStore
	Invitations() InvitationStore
	Sessions() SessionStore
}
