// Package types defines the durable and in-memory data model of the chat
// engine: users, rooms, memberships, messages, invitations, sessions, and
// the transient per-connection state that sits on top of them.
package types

import (
	"fmt"
	"strings"
)

// Role is a user's system-wide role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
	RoleGuest     Role = "guest"
)

// MemberRole is a user's role within a single room.
type MemberRole string

const (
	MemberOwner     MemberRole = "owner"
	MemberAdmin     MemberRole = "admin"
	MemberModerator MemberRole = "moderator"
	MemberMember    MemberRole = "member"
	MemberGuest     MemberRole = "guest"
)

// RoomType classifies what a room is for.
type RoomType string

const (
	RoomChannel       RoomType = "channel"
	RoomGroup         RoomType = "group"
	RoomDirectMessage RoomType = "direct_message"
	RoomSystem        RoomType = "system"
	RoomTemporary     RoomType = "temporary"
)

// RoomPrivacy classifies who may join a room.
type RoomPrivacy string

const (
	PrivacyPublic    RoomPrivacy = "public"
	PrivacyPrivate   RoomPrivacy = "private"
	PrivacyProtected RoomPrivacy = "protected"
	PrivacySystem    RoomPrivacy = "system"
)

// MessageType distinguishes how a message's content should be interpreted.
type MessageType string

const (
	MessageText      MessageType = "text"
	MessageSystem    MessageType = "system"
	MessageFile      MessageType = "file"
	MessageImage     MessageType = "image"
	MessageVoice     MessageType = "voice"
	MessageVideo     MessageType = "video"
	MessageCode      MessageType = "code"
	MessageMarkdown  MessageType = "markdown"
	MessageEncrypted MessageType = "encrypted"
)

// InvitationStatus is the lifecycle state of an Invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// LobbyName is the literal, reserved name of the virtual Lobby room.
// Lobby has no row: any user whose CurrentRoomID is nil is implicitly there.
const LobbyName = "Lobby"

// IsLobby reports whether name is the reserved literal "Lobby" (case-sensitive,
// per spec.md §4.4: only the exact literal is reserved, not e.g. "LOBBY").
func IsLobby(name string) bool {
	return name == LobbyName
}

// UserProfile holds the free-form, user-editable profile fields.
// Supplemented from original_source (src/server/storage/sqlite.rs): named
// but undetailed by spec.md §3 as "embedded profile record".
type UserProfile struct {
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Status    string `json:"status,omitempty"`
}

// UserSettings holds per-user client preferences.
// Supplemented from original_source: spec.md §3 names this "embedded
// settings record" without detailing its shape.
type UserSettings struct {
	Theme         string `json:"theme,omitempty"`
	Notifications bool   `json:"notifications"`
}

// User is a durable account record.
type User struct {
	ID           string       `json:"id" validate:"required,uuid4"`
	Username     string       `json:"username" validate:"required,min=3,max=32"`
	Email        *string      `json:"email,omitempty" validate:"omitempty,email"`
	PasswordHash string       `json:"-"`
	Salt         string       `json:"-"`
	CreatedAt    uint64       `json:"created_at"`
	UpdatedAt    uint64       `json:"updated_at"`
	LastSeen     *uint64      `json:"last_seen,omitempty"`
	IsActive     bool         `json:"is_active"`
	Role         Role         `json:"role"`
	Profile      UserProfile  `json:"profile"`
	Settings     UserSettings `json:"settings"`
}

// Room is a durable, named chat room.
type Room struct {
	ID          string      `json:"id"`
	Name        string      `json:"name" validate:"required,ne=Lobby"`
	DisplayName string      `json:"display_name"`
	Description *string     `json:"description,omitempty"`
	Topic       *string     `json:"topic,omitempty"`
	Type        RoomType    `json:"type"`
	Privacy     RoomPrivacy `json:"privacy"`
	Settings    RoomSettings `json:"settings"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   uint64      `json:"created_at"`
	UpdatedAt   uint64      `json:"updated_at"`
	IsActive    bool        `json:"is_active"`
}

// RoomSettings holds room-level configuration knobs.
type RoomSettings struct {
	MaxMembers      int  `json:"max_members,omitempty"`
	HistoryVisible  bool `json:"history_visible"`
	AllowInvites    bool `json:"allow_invites"`
}

// RoomMembership ties a user to a room with a role.
type RoomMembership struct {
	ID           string          `json:"id"`
	RoomID       string          `json:"room_id"`
	UserID       string          `json:"user_id"`
	Role         MemberRole      `json:"role"`
	JoinedAt     uint64          `json:"joined_at"`
	LastActivity *uint64         `json:"last_activity,omitempty"`
	IsActive     bool            `json:"is_active"`
	Settings     map[string]any  `json:"settings,omitempty"`
}

// MessageReaction records a single (user, emoji) reaction to a message.
type MessageReaction struct {
	UserID     string `json:"user_id"`
	Emoji      string `json:"emoji"`
	ReactedAt  uint64 `json:"reacted_at"`
}

// ReadReceipt records that a user has read up through a message.
type ReadReceipt struct {
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`
	ReadAt    uint64 `json:"read_at"`
}

// Message is a durable chat message, optionally threaded and soft-deletable.
type Message struct {
	ID              string            `json:"id"`
	RoomID          string            `json:"room_id"`
	UserID          string            `json:"user_id"`
	Content         string            `json:"content"`
	Type            MessageType       `json:"type"`
	Timestamp       uint64            `json:"timestamp"`
	EditedAt        *uint64           `json:"edited_at,omitempty"`
	ParentMessageID *string           `json:"parent_message_id,omitempty"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
	IsDeleted       bool              `json:"is_deleted"`
	DeletedAt       *uint64           `json:"deleted_at,omitempty"`
	Reactions       []MessageReaction `json:"reactions,omitempty"`
}

// DMRoomID computes the canonical synthetic room id for a direct-message
// conversation between two users, independent of send direction (spec.md §3,
// testable property P2).
func DMRoomID(a, b string) string {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("dm_%s_%s", lo, hi)
}

// IsDMRoom reports whether a room id is a synthetic DM room id.
func IsDMRoom(roomID string) bool {
	return strings.HasPrefix(roomID, "dm_")
}

// Invitation is a durable room invitation between two users.
type Invitation struct {
	ID               string           `json:"id"`
	SenderUserID     string           `json:"sender_user_id"`
	RecipientUserID  string           `json:"recipient_user_id"`
	RoomID           string           `json:"room_id"`
	Type             string           `json:"type"`
	Status           InvitationStatus `json:"status"`
	Message          *string          `json:"message,omitempty"`
	CreatedAt        uint64           `json:"created_at"`
	ExpiresAt        *uint64          `json:"expires_at,omitempty"`
	RespondedAt      *uint64          `json:"responded_at,omitempty"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
}

// DefaultInvitationLifetimeSeconds is the default sender+7-days expiry window.
const DefaultInvitationLifetimeSeconds = 7 * 24 * 60 * 60

// Session is a durable, token-addressable authentication session. This is
// distinct from the in-memory ConnectedUser: a Session's expires_at governs
// token-based re-authentication, not the lifetime of a live TCP connection
// (spec.md §5, Timeouts).
type Session struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Token        string         `json:"token"`
	CreatedAt    uint64         `json:"created_at"`
	ExpiresAt    uint64         `json:"expires_at"`
	LastActivity uint64         `json:"last_activity"`
	IPAddress    *string        `json:"ip_address,omitempty"`
	UserAgent    *string        `json:"user_agent,omitempty"`
	IsActive     bool           `json:"is_active"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// IsValid reports whether the session is active and unexpired as of now
// (unix seconds).
func (s *Session) IsValid(nowUnix uint64) bool {
	return s.IsActive && s.ExpiresAt > nowUnix
}

// ConnectedUser is the in-memory record of one authenticated, live
// connection. It is created on successful authentication, mutated only by
// its owning connection's dispatcher, and destroyed on disconnect.
type ConnectedUser struct {
	UserID        string
	Username      string
	PeerAddr      string
	ConnectedAt   uint64
	CurrentRoomID *string // nil means Lobby
}

// InLobby reports whether the user's current room pointer is unset.
func (c *ConnectedUser) InLobby() bool {
	return c.CurrentRoomID == nil
}
