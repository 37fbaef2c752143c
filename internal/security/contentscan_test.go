package security

import (
	"strings"
	"testing"
)

func TestScanContentLetsOrdinaryChatThrough(t *testing.T) {
	suspicious, reason := ScanContent("hey, did you see the game last night?")
	if suspicious {
		t.Fatalf("expected ordinary chat to pass, got reason %q", reason)
	}
}

func TestScanContentFlagsEmbeddedScriptTag(t *testing.T) {
	suspicious, reason := ScanContent("click here <script>alert(1)</script>")
	if !suspicious {
		t.Fatalf("expected script tag to be flagged")
	}
	if reason != "pattern:<script>" {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestScanContentFlagsExcessiveLength(t *testing.T) {
	suspicious, reason := ScanContent(strings.Repeat("a", maxMessageLength+1))
	if !suspicious || reason != "content_too_long" {
		t.Fatalf("expected content_too_long, got suspicious=%v reason=%q", suspicious, reason)
	}
}

func TestScanContentFlagsRepeatedCommandMarkers(t *testing.T) {
	suspicious, reason := ScanContent("INVITE_USER:bob INVITE_USER:carol")
	if !suspicious || reason != "repeated_command_marker" {
		t.Fatalf("expected repeated_command_marker, got suspicious=%v reason=%q", suspicious, reason)
	}
}

func TestScanContentFlagsSQLSelectFrom(t *testing.T) {
	suspicious, reason := ScanContent("select password from users")
	if !suspicious || reason != "sql_select" {
		t.Fatalf("expected sql_select, got suspicious=%v reason=%q", suspicious, reason)
	}
}
