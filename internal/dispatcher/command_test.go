package dispatcher

import "testing"

func TestParseCommandCreateRoom(t *testing.T) {
	cmd := ParseCommand("CREATE_ROOM:general")
	if cmd.Kind != KindCreateRoom || cmd.Name != "general" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandDMKeepsExtraColons(t *testing.T) {
	cmd := ParseCommand("DM:bob:hello: there: friend")
	if cmd.Kind != KindDM {
		t.Fatalf("expected KindDM, got %v", cmd.Kind)
	}
	if cmd.Recipient != "bob" {
		t.Fatalf("unexpected recipient: %q", cmd.Recipient)
	}
	if cmd.Body != "hello: there: friend" {
		t.Fatalf("expected trailing colons preserved in body, got %q", cmd.Body)
	}
}

func TestParseCommandIsCaseSensitive(t *testing.T) {
	cmd := ParseCommand("create_room:general")
	if cmd.Kind != KindChatLine {
		t.Fatalf("expected lowercase command to fall through to chat line, got %v", cmd.Kind)
	}
}

func TestParseCommandAnythingElseIsChatLine(t *testing.T) {
	cmd := ParseCommand("hey everyone")
	if cmd.Kind != KindChatLine || cmd.Body != "hey everyone" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandWhoAliasesRequestUserList(t *testing.T) {
	cmd := ParseCommand("WHO")
	if cmd.Kind != KindRequestUserList {
		t.Fatalf("expected WHO to alias REQUEST_USER_LIST, got %v", cmd.Kind)
	}
}

func TestParseCommandAcceptInvitationLatest(t *testing.T) {
	cmd := ParseCommand("ACCEPT_INVITATION:LATEST")
	if cmd.Kind != KindAcceptInvitation || cmd.RoomOrID != LatestInvitationTarget {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandGetHistoryParsesLimit(t *testing.T) {
	cmd := ParseCommand("GET_HISTORY:25")
	if cmd.Kind != KindGetHistory || cmd.Limit != 25 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}
