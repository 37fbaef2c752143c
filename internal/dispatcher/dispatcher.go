package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/berrym/lair-chat/internal/idgen"
	"github.com/berrym/lair-chat/internal/logging"
	"github.com/berrym/lair-chat/internal/metrics"
	"github.com/berrym/lair-chat/internal/notify"
	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/session"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/types"
	"go.uber.org/zap"
)

// kindNames labels metrics by command kind without reflection.
var kindNames = map[Kind]string{
	KindCreateRoom: "CREATE_ROOM", KindJoinRoom: "JOIN_ROOM", KindLeaveRoom: "LEAVE_ROOM",
	KindListRooms: "LIST_ROOMS", KindDM: "DM", KindInviteUser: "INVITE_USER",
	KindAcceptInvitation: "ACCEPT_INVITATION", KindDeclineInvitation: "DECLINE_INVITATION",
	KindListInvitations: "LIST_INVITATIONS", KindAcceptAllInvitations: "ACCEPT_ALL_INVITATIONS",
	KindRequestUserList: "REQUEST_USER_LIST", KindEditMessage: "EDIT_MESSAGE",
	KindDeleteMessage: "DELETE_MESSAGE", KindReactMessage: "REACT_MESSAGE",
	KindUnreactMessage: "UNREACT_MESSAGE", KindSearchMessages: "SEARCH_MESSAGES",
	KindGetHistory: "GET_HISTORY", KindReplyMessage: "REPLY_MESSAGE",
	KindMarkRead: "MARK_READ", KindShowHelp: "SHOW_HELP", KindChatLine: "CHAT_LINE",
}

const (
	searchResultLimit  = 20
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// helpText is the fixed multi-line SHOW_HELP reply of spec.md §4.4.
const helpText = "SYSTEM_MESSAGE:Commands:\nCREATE_ROOM:<name>\nJOIN_ROOM:<name>\nLEAVE_ROOM\nLIST_ROOMS\n" +
	"DM:<user>:<msg>\nINVITE_USER:<user>:<room>\nACCEPT_INVITATION:<room|LATEST>\n" +
	"DECLINE_INVITATION:<room|LATEST>\nLIST_INVITATIONS\nACCEPT_ALL_INVITATIONS\nREQUEST_USER_LIST\n" +
	"EDIT_MESSAGE:<id>:<content>\nDELETE_MESSAGE:<id>\nREACT_MESSAGE:<id>:<emoji>\n" +
	"UNREACT_MESSAGE:<id>:<emoji>\nSEARCH_MESSAGES:<query>\nGET_HISTORY:<limit>\n" +
	"REPLY_MESSAGE:<id>:<content>\nMARK_READ:<id>\nSHOW_HELP"

// Executor drives Execute over the storage contract, the notification
// fabric, and the shared connection state. One Executor is shared across
// every connection (spec.md §9: singleton becomes an injected handle).
type Executor struct {
	store  store.Store
	fabric *notify.Fabric
	shared *session.SharedState
	secmw  *security.Middleware
}

// NewExecutor builds an Executor.
func NewExecutor(st store.Store, fabric *notify.Fabric, shared *session.SharedState, secmw *security.Middleware) *Executor {
	return &Executor{store: st, fabric: fabric, shared: shared, secmw: secmw}
}

func now() uint64 { return uint64(time.Now().Unix()) }

// Execute runs cmd on behalf of sess, returning the lines to send directly
// back to the sender. Side effects on other peers go out through the
// fabric as they occur.
func (ex *Executor) Execute(ctx context.Context, sess *session.Session, cmd Command) []string {
	userID := sess.UserID()
	username := sess.Username()

	if err := ex.secmw.CheckCommand(ctx, sess.PeerAddr, username); err != nil {
		return []string{"SYSTEM_MESSAGE:Request blocked for security reasons"}
	}
	if suspicious, reason := ex.secmw.ScanAndRecord(sess.PeerAddr, username, cmd.Raw); suspicious {
		logging.L().Warn("rejected suspicious command content", zap.String("reason", reason), zap.String("username", username))
		return []string{"SYSTEM_MESSAGE:Message blocked: Suspicious content detected"}
	}

	start := time.Now()
	out := ex.dispatch(ctx, sess, cmd, userID, username)

	name := kindNames[cmd.Kind]
	metrics.RecordOperation(name, time.Since(start).Seconds())
	for _, line := range out {
		if strings.Contains(line, "_ERROR:") {
			metrics.RecordOperationError(name, errorKindOf(line))
			break
		}
	}
	return out
}

func (ex *Executor) dispatch(ctx context.Context, sess *session.Session, cmd Command, userID, username string) []string {
	switch cmd.Kind {
	case KindCreateRoom:
		return ex.createRoom(ctx, sess, userID, username, cmd.Name)
	case KindJoinRoom:
		return ex.joinRoom(ctx, sess, userID, username, cmd.Name)
	case KindLeaveRoom:
		return ex.leaveRoom(ctx, sess, userID, username)
	case KindListRooms:
		return ex.listRooms(ctx)
	case KindDM:
		return ex.dm(ctx, userID, username, cmd.Recipient, cmd.Body)
	case KindInviteUser:
		return ex.inviteUser(ctx, userID, username, cmd.Recipient, cmd.Name)
	case KindAcceptInvitation:
		return ex.respondInvitation(ctx, sess, userID, username, cmd.RoomOrID, types.InvitationAccepted)
	case KindDeclineInvitation:
		return ex.respondInvitation(ctx, sess, userID, username, cmd.RoomOrID, types.InvitationDeclined)
	case KindListInvitations:
		return ex.listInvitations(ctx, userID)
	case KindAcceptAllInvitations:
		return ex.acceptAllInvitations(ctx, userID)
	case KindRequestUserList:
		return []string{ex.userListLine()}
	case KindEditMessage:
		return ex.editMessage(ctx, userID, username, cmd.MessageID, cmd.Body)
	case KindDeleteMessage:
		return ex.deleteMessage(ctx, userID, cmd.MessageID)
	case KindReactMessage:
		return ex.react(ctx, userID, cmd.MessageID, cmd.Emoji, true)
	case KindUnreactMessage:
		return ex.react(ctx, userID, cmd.MessageID, cmd.Emoji, false)
	case KindSearchMessages:
		return ex.searchMessages(ctx, sess, cmd.Query)
	case KindGetHistory:
		return ex.getHistory(ctx, sess, cmd.Limit)
	case KindReplyMessage:
		return ex.replyMessage(ctx, sess, userID, username, cmd.MessageID, cmd.Body)
	case KindMarkRead:
		return ex.markRead(ctx, sess, userID, cmd.MessageID)
	case KindShowHelp:
		return []string{helpText}
	case KindChatLine:
		return ex.chatLine(ctx, sess, userID, username, cmd.Body)
	default:
		return nil
	}
}

// errorKindOf extracts the wire-level error tag (e.g. "ROOM_ERROR",
// "MESSAGE_ERROR") from an outbound error line, for metrics labeling.
func errorKindOf(line string) string {
	if i := strings.Index(line, "_ERROR:"); i >= 0 {
		return line[:i+len("_ERROR")]
	}
	return "UNKNOWN_ERROR"
}

func (ex *Executor) createRoom(ctx context.Context, sess *session.Session, userID, username, name string) []string {
	if name == "" || types.IsLobby(name) {
		return []string{fmt.Sprintf("ROOM_ERROR:Room '%s' already exists", name)}
	}
	exists, err := ex.store.Rooms().NameExists(ctx, name)
	if err != nil {
		logging.L().Error("create_room: name_exists", zap.Error(err))
		return []string{"ROOM_ERROR:internal error"}
	}
	if exists {
		return []string{fmt.Sprintf("ROOM_ERROR:Room '%s' already exists", name)}
	}

	room := &types.Room{
		ID:        idgen.New(),
		Name:      name,
		Type:      types.RoomGroup,
		Privacy:   types.PrivacyPublic,
		CreatedBy: userID,
		CreatedAt: now(),
		UpdatedAt: now(),
		IsActive:  true,
	}
	if err := types.Validate(room); err != nil {
		return []string{fmt.Sprintf("ROOM_ERROR:Room '%s' already exists", name)}
	}
	if err := ex.store.Rooms().Create(ctx, room); err != nil {
		logging.L().Error("create_room: create", zap.Error(err))
		return []string{fmt.Sprintf("ROOM_ERROR:Room '%s' already exists", name)}
	}
	_ = ex.store.Rooms().AddMember(ctx, &types.RoomMembership{
		ID: idgen.New(), RoomID: room.ID, UserID: userID, Role: types.MemberOwner, JoinedAt: now(), IsActive: true,
	})

	sess.SetCurrentRoomID(&room.ID)
	ex.shared.SetCurrentRoom(username, &room.ID)
	ex.fabric.BroadcastRoomStatus(&room.ID, username)

	return []string{fmt.Sprintf("ROOM_CREATED:%s", name), fmt.Sprintf("CURRENT_ROOM:%s", name)}
}

func (ex *Executor) joinRoom(ctx context.Context, sess *session.Session, userID, username, name string) []string {
	room, err := ex.store.Rooms().GetByName(ctx, name)
	if err != nil {
		return []string{fmt.Sprintf("ROOM_ERROR:Room '%s' does not exist", name)}
	}
	if err := ex.store.Rooms().AddMember(ctx, &types.RoomMembership{
		ID: idgen.New(), RoomID: room.ID, UserID: userID, Role: types.MemberMember, JoinedAt: now(), IsActive: true,
	}); err != nil {
		logging.L().Error("join_room: add_member", zap.Error(err))
	}

	sess.SetCurrentRoomID(&room.ID)
	ex.shared.SetCurrentRoom(username, &room.ID)
	ex.fabric.BroadcastRoomStatus(&room.ID, username)

	return []string{fmt.Sprintf("ROOM_JOINED:%s", name), fmt.Sprintf("CURRENT_ROOM:%s", name)}
}

func (ex *Executor) leaveRoom(ctx context.Context, sess *session.Session, userID, username string) []string {
	roomID := sess.CurrentRoomID()
	if roomID == nil {
		return []string{"CURRENT_ROOM:Lobby"}
	}
	room, err := ex.store.Rooms().Get(ctx, *roomID)
	name := *roomID
	if err == nil {
		name = room.Name
	}
	_ = ex.store.Rooms().RemoveMember(ctx, *roomID, userID)

	sess.SetCurrentRoomID(nil)
	ex.shared.SetCurrentRoom(username, nil)
	ex.fabric.BroadcastRoomStatus(nil, username)

	return []string{fmt.Sprintf("ROOM_LEFT:%s", name), "CURRENT_ROOM:Lobby"}
}

func (ex *Executor) listRooms(ctx context.Context) []string {
	rooms, err := ex.store.Rooms().List(ctx, nil, store.Page{Limit: 1000})
	if err != nil {
		return []string{"ROOM_ERROR:internal error"}
	}
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		if types.IsDMRoom(r.ID) {
			continue
		}
		names = append(names, r.Name)
	}
	return []string{"ROOM_LIST:" + strings.Join(names, ",")}
}

func (ex *Executor) dm(ctx context.Context, senderID, senderName, recipient, body string) []string {
	recipientUser, err := ex.store.Users().GetByUsername(ctx, recipient)
	if err != nil {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:No such user '%s'", recipient)}
	}

	roomID := types.DMRoomID(senderID, recipientUser.ID)
	msg := &types.Message{
		ID: idgen.New(), RoomID: roomID, UserID: senderID, Content: body,
		Type: types.MessageText, Timestamp: now(),
	}
	if err := ex.store.Messages().Save(ctx, msg); err != nil {
		return []string{"SYSTEM_MESSAGE:Failed to send DM"}
	}

	delivered := ex.fabric.ToUser(recipient, fmt.Sprintf("PRIVATE_MESSAGE:%s:%s", senderName, body))
	if !delivered {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:%s is not online, message saved", recipient)}
	}
	return []string{fmt.Sprintf("SYSTEM_MESSAGE:DM sent to %s: %s", recipient, body)}
}

func (ex *Executor) inviteUser(ctx context.Context, senderID, senderName, recipient, roomName string) []string {
	room, err := ex.store.Rooms().GetByName(ctx, roomName)
	if err != nil {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:Room '%s' does not exist", roomName)}
	}
	recipientUser, err := ex.store.Users().GetByUsername(ctx, recipient)
	if err != nil {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:No such user '%s'", recipient)}
	}
	if isMember, _ := ex.store.Rooms().IsMember(ctx, room.ID, recipientUser.ID); isMember {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:%s is already a member of '%s'", recipient, roomName)}
	}
	pending := types.InvitationPending
	if existing, err := ex.store.Invitations().Find(ctx, recipientUser.ID, room.ID, &pending); err == nil && existing != nil {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:An invitation to '%s' is already pending for %s", roomName, recipient)}
	}

	expiresAt := now() + types.DefaultInvitationLifetimeSeconds
	inv := &types.Invitation{
		ID: idgen.New(), SenderUserID: senderID, RecipientUserID: recipientUser.ID,
		RoomID: room.ID, Type: "room_invite", Status: types.InvitationPending,
		CreatedAt: now(), ExpiresAt: &expiresAt,
	}
	if err := ex.store.Invitations().Create(ctx, inv); err != nil {
		return []string{"SYSTEM_MESSAGE:Failed to create invitation"}
	}

	ex.fabric.ToUser(recipient, fmt.Sprintf("SYSTEM_MESSAGE:%s invited you to join room '%s'", senderName, roomName))
	return []string{fmt.Sprintf("SYSTEM_MESSAGE:Invitation sent to %s for '%s'", recipient, roomName)}
}

func (ex *Executor) resolveInvitation(ctx context.Context, userID, roomOrID string) (*types.Invitation, string, error) {
	pending := types.InvitationPending
	if roomOrID == LatestInvitationTarget {
		invs, err := ex.store.Invitations().ListForUser(ctx, userID, types.InvitationPending)
		if err != nil || len(invs) == 0 {
			return nil, "", fmt.Errorf("no pending invitations")
		}
		latest := invs[0]
		for _, inv := range invs[1:] {
			if inv.CreatedAt > latest.CreatedAt {
				latest = inv
			}
		}
		room, err := ex.store.Rooms().Get(ctx, latest.RoomID)
		name := latest.RoomID
		if err == nil {
			name = room.Name
		}
		return &latest, name, nil
	}

	room, err := ex.store.Rooms().GetByName(ctx, roomOrID)
	if err != nil {
		return nil, "", err
	}
	inv, err := ex.store.Invitations().Find(ctx, userID, room.ID, &pending)
	if err != nil || inv == nil {
		return nil, "", fmt.Errorf("no pending invitation for %s", roomOrID)
	}
	return inv, room.Name, nil
}

func (ex *Executor) respondInvitation(ctx context.Context, sess *session.Session, userID, username, roomOrID string, decision types.InvitationStatus) []string {
	inv, roomName, err := ex.resolveInvitation(ctx, userID, roomOrID)
	if err != nil {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:%v", err)}
	}

	if err := ex.store.Invitations().UpdateStatus(ctx, inv.ID, decision, now()); err != nil {
		return []string{"SYSTEM_MESSAGE:Failed to update invitation"}
	}

	if decision == types.InvitationDeclined {
		return []string{fmt.Sprintf("SYSTEM_MESSAGE:Declined invitation to '%s'", roomName)}
	}

	if err := ex.store.Rooms().AddMember(ctx, &types.RoomMembership{
		ID: idgen.New(), RoomID: inv.RoomID, UserID: userID, Role: types.MemberMember, JoinedAt: now(), IsActive: true,
	}); err != nil {
		logging.L().Error("accept_invitation: add_member", zap.Error(err))
	}

	sess.SetCurrentRoomID(&inv.RoomID)
	ex.shared.SetCurrentRoom(username, &inv.RoomID)
	ex.fabric.BroadcastRoomStatus(&inv.RoomID, username)

	return []string{
		fmt.Sprintf("ROOM_JOINED:%s", roomName),
		fmt.Sprintf("CURRENT_ROOM:%s", roomName),
		fmt.Sprintf("SYSTEM_MESSAGE:You joined room '%s'", roomName),
	}
}

func (ex *Executor) listInvitations(ctx context.Context, userID string) []string {
	invs, err := ex.store.Invitations().ListForUser(ctx, userID, types.InvitationPending)
	if err != nil || len(invs) == 0 {
		return []string{"SYSTEM_MESSAGE:No pending invitations"}
	}
	var b strings.Builder
	b.WriteString("SYSTEM_MESSAGE:Pending invitations:\n")
	for _, inv := range invs {
		roomName := inv.RoomID
		if room, err := ex.store.Rooms().Get(ctx, inv.RoomID); err == nil {
			roomName = room.Name
		}
		senderName := inv.SenderUserID
		if sender, err := ex.store.Users().Get(ctx, inv.SenderUserID); err == nil {
			senderName = sender.Username
		}
		fmt.Fprintf(&b, "%s from %s (%s)\n", roomName, senderName, inv.ID)
	}
	return []string{strings.TrimRight(b.String(), "\n")}
}

func (ex *Executor) acceptAllInvitations(ctx context.Context, userID string) []string {
	invs, err := ex.store.Invitations().ListForUser(ctx, userID, types.InvitationPending)
	if err != nil {
		return []string{"SYSTEM_MESSAGE:Failed to load invitations"}
	}
	accepted, failed := 0, 0
	for _, inv := range invs {
		if _, err := ex.store.Rooms().Get(ctx, inv.RoomID); err != nil {
			_ = ex.store.Invitations().UpdateStatus(ctx, inv.ID, types.InvitationExpired, now())
			failed++
			continue
		}
		if err := ex.store.Rooms().AddMember(ctx, &types.RoomMembership{
			ID: idgen.New(), RoomID: inv.RoomID, UserID: userID, Role: types.MemberMember, JoinedAt: now(), IsActive: true,
		}); err != nil {
			failed++
			continue
		}
		_ = ex.store.Invitations().UpdateStatus(ctx, inv.ID, types.InvitationAccepted, now())
		accepted++
	}
	return []string{fmt.Sprintf("SYSTEM_MESSAGE:Accepted %d invitation(s), %d failed", accepted, failed)}
}

func (ex *Executor) userListLine() string {
	users := ex.shared.AllConnectedUsers()
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return "USER_LIST:" + strings.Join(names, ",")
}

func (ex *Executor) editMessage(ctx context.Context, userID, username, messageID, newContent string) []string {
	msg, err := ex.store.Messages().Get(ctx, messageID)
	if err != nil {
		return []string{"MESSAGE_ERROR:message not found"}
	}
	if msg.UserID != userID {
		return []string{"MESSAGE_ERROR:Permission denied: not the author"}
	}
	if err := ex.store.Messages().Update(ctx, messageID, newContent, now()); err != nil {
		return []string{"MESSAGE_ERROR:update failed"}
	}
	line := fmt.Sprintf("MESSAGE_EDITED:%s:%s:%s", username, messageID, newContent)
	_ = ex.fabric.ToRoom(ctx, msg.RoomID, userID, line)
	return []string{line}
}

func (ex *Executor) deleteMessage(ctx context.Context, userID, messageID string) []string {
	msg, err := ex.store.Messages().Get(ctx, messageID)
	if err != nil {
		return []string{"MESSAGE_ERROR:message not found"}
	}
	if msg.UserID != userID {
		return []string{"MESSAGE_ERROR:Permission denied: not the author"}
	}
	if err := ex.store.Messages().SoftDelete(ctx, messageID, now()); err != nil {
		return []string{"MESSAGE_ERROR:delete failed"}
	}
	return []string{fmt.Sprintf("MESSAGE_DELETED:%s", messageID)}
}

func (ex *Executor) react(ctx context.Context, userID, messageID, emoji string, add bool) []string {
	var err error
	if add {
		err = ex.store.Messages().AddReaction(ctx, messageID, userID, emoji, now())
	} else {
		err = ex.store.Messages().RemoveReaction(ctx, messageID, userID, emoji)
	}
	if err != nil {
		return []string{"MESSAGE_ERROR:reaction failed"}
	}
	if add {
		return []string{fmt.Sprintf("REACTION_ADDED:%s:%s", messageID, emoji)}
	}
	return []string{fmt.Sprintf("REACTION_REMOVED:%s:%s", messageID, emoji)}
}

func (ex *Executor) searchMessages(ctx context.Context, sess *session.Session, query string) []string {
	roomID := ""
	if r := sess.CurrentRoomID(); r != nil {
		roomID = *r
	}
	result, err := ex.store.Messages().Search(ctx, store.SearchQuery{Text: query, RoomID: roomID, Limit: searchResultLimit})
	if err != nil || result == nil || len(result.Messages) == 0 {
		return []string{"SEARCH_RESULTS:"}
	}
	parts := make([]string, 0, len(result.Messages))
	for _, m := range result.Messages {
		username := m.UserID
		if u, err := ex.store.Users().Get(ctx, m.UserID); err == nil {
			username = u.Username
		}
		parts = append(parts, fmt.Sprintf("SEARCH_RESULTS:%s:%s:%s", m.ID, username, m.Content))
	}
	return []string{strings.Join(parts, "|")}
}

func (ex *Executor) getHistory(ctx context.Context, sess *session.Session, limit int) []string {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	roomID := types.LobbyName
	if r := sess.CurrentRoomID(); r != nil {
		roomID = *r
	}
	msgs, err := ex.store.Messages().ListByRoom(ctx, roomID, store.Page{Limit: limit})
	if err != nil {
		return []string{"SYSTEM_MESSAGE:Failed to load history"}
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		username := m.UserID
		if u, err := ex.store.Users().Get(ctx, m.UserID); err == nil {
			username = u.Username
		}
		lines = append(lines, fmt.Sprintf("HISTORY:%s:%s", username, m.Content))
	}
	return lines
}

func (ex *Executor) replyMessage(ctx context.Context, sess *session.Session, userID, username, parentID, body string) []string {
	roomID := types.LobbyName
	if r := sess.CurrentRoomID(); r != nil {
		roomID = *r
	}
	msg := &types.Message{
		ID: idgen.New(), RoomID: roomID, UserID: userID, Content: body,
		Type: types.MessageText, Timestamp: now(), ParentMessageID: &parentID,
	}
	if err := ex.store.Messages().Save(ctx, msg); err != nil {
		return []string{"MESSAGE_ERROR:reply failed"}
	}
	line := fmt.Sprintf("REPLY:%s:%s:%s", username, parentID, body)
	_ = ex.fabric.ToRoom(ctx, roomID, userID, line)
	return []string{line}
}

func (ex *Executor) markRead(ctx context.Context, sess *session.Session, userID, messageID string) []string {
	roomID := types.LobbyName
	if r := sess.CurrentRoomID(); r != nil {
		roomID = *r
	}
	target, err := ex.store.Messages().Get(ctx, messageID)
	if err != nil {
		return []string{"MESSAGE_ERROR:message not found"}
	}
	if _, err := ex.store.Messages().MarkReadUpTo(ctx, roomID, userID, messageID, target.Timestamp); err != nil {
		return []string{"MESSAGE_ERROR:mark read failed"}
	}
	return []string{fmt.Sprintf("MESSAGES_READ:%s", messageID)}
}

func (ex *Executor) chatLine(ctx context.Context, sess *session.Session, userID, username, body string) []string {
	roomID := sess.CurrentRoomID()
	line := fmt.Sprintf("%s: %s", username, body)

	if roomID == nil {
		ex.fabric.ToAllPeersExcept(userID, line)
		return nil
	}

	msg := &types.Message{
		ID: idgen.New(), RoomID: *roomID, UserID: userID, Content: body,
		Type: types.MessageText, Timestamp: now(),
	}
	if err := ex.store.Messages().Save(ctx, msg); err != nil {
		logging.L().Error("chat_line: save", zap.Error(err))
	}
	_ = ex.fabric.ToRoom(ctx, *roomID, userID, line)
	return nil
}
