package auth

import (
	"testing"
	"time"
)

func TestTokenIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret-at-least-32-bytes!!"), time.Hour)

	token, expiresAt, err := issuer.Issue("user-1", "sess-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expected expiry in the future")
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "sess-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a-at-least-32-bytes-long!"), time.Hour)
	token, _, err := issuer.Issue("user-1", "sess-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenIssuer([]byte("secret-b-at-least-32-bytes-long!"), time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected verification to fail under a different secret")
	}
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-c-at-least-32-bytes-long!"), -time.Hour)
	token, _, err := issuer.Issue("user-1", "sess-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expected verification to fail for an already-expired token")
	}
}
