package clientproto

import "testing"

func TestIsProtocolFrameRecognizesPrefixedLines(t *testing.T) {
	cases := []string{
		"ROOM_CREATED:general",
		"USER_LIST:alice,bob",
		"SYSTEM_MESSAGE:Request blocked for security reasons",
		"alice: ROOM_JOINED:general",
		"true",
		"alice: true",
	}
	for _, line := range cases {
		if !IsProtocolFrame(line) {
			t.Errorf("expected %q to be a protocol frame", line)
		}
	}
}

func TestIsProtocolFrameLetsChatThrough(t *testing.T) {
	cases := []string{
		"alice: hey, did you see the game last night?",
		"* alice waves",
	}
	for _, line := range cases {
		if IsProtocolFrame(line) {
			t.Errorf("expected %q to NOT be a protocol frame", line)
		}
	}
}

func TestParseIgnoresReconciliationArtifacts(t *testing.T) {
	cases := []string{"true", "alice: true", "alice: ROOM_JOINED:general"}
	for _, line := range cases {
		p := Parse(line)
		if p.Action != ActionIgnore {
			t.Errorf("expected %q to parse as ActionIgnore, got %v", line, p.Action)
		}
	}
}

func TestParseDisplaysTaggedSystemLines(t *testing.T) {
	p := Parse("SYSTEM_MESSAGE:Authentication successful!")
	if p.Action != ActionDisplay {
		t.Fatalf("expected ActionDisplay for a tagged system line, got %v", p.Action)
	}
	if p.Text != "SYSTEM_MESSAGE:Authentication successful!" {
		t.Fatalf("unexpected text: %q", p.Text)
	}
}

func TestParseUserListSplitsNames(t *testing.T) {
	p := Parse("USER_LIST:alice,bob,carol")
	if p.Action != ActionUserListUpdate {
		t.Fatalf("expected ActionUserListUpdate, got %v", p.Action)
	}
	if len(p.Users) != 3 || p.Users[0] != "alice" {
		t.Fatalf("unexpected users: %v", p.Users)
	}
}

func TestParsePrivateMessageRoutesToDM(t *testing.T) {
	p := Parse("PRIVATE_MESSAGE:bob:hello there")
	if p.Action != ActionDM {
		t.Fatalf("expected ActionDM, got %v", p.Action)
	}
	if p.From != "bob" || p.Body != "hello there" {
		t.Fatalf("unexpected from/body: %q/%q", p.From, p.Body)
	}
}

func TestDMBuffersTrackUnreadUntilMarkedRead(t *testing.T) {
	bufs := NewDMBuffers()
	bufs.Receive("bob", "hi")
	bufs.Receive("bob", "you there?")

	buf := bufs.Buffer("bob")
	if buf == nil || buf.Unread != 2 || len(buf.Messages) != 2 {
		t.Fatalf("unexpected buffer state: %+v", buf)
	}

	bufs.MarkRead("bob")
	if bufs.Buffer("bob").Unread != 0 {
		t.Fatalf("expected unread reset to 0")
	}
	if len(bufs.Buffer("bob").Messages) != 2 {
		t.Fatalf("expected message history retained after MarkRead")
	}
}

func TestDMBuffersKeyedIndependentlyPerPartner(t *testing.T) {
	bufs := NewDMBuffers()
	bufs.Receive("bob", "hi")
	bufs.Receive("carol", "yo")

	if bufs.Buffer("bob").Unread != 1 || bufs.Buffer("carol").Unread != 1 {
		t.Fatalf("expected independent unread counts per partner")
	}
	if bufs.Buffer("dave") != nil {
		t.Fatalf("expected nil buffer for untouched partner")
	}
}
