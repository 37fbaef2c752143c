package auth

import (
	"context"
	"testing"
	"time"

	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/store/memory"
)

func newTestFlow(t *testing.T) (*Flow, func()) {
	t.Helper()
	adapter, err := memory.New()
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	secmw, err := security.NewMiddleware(nil)
	if err != nil {
		t.Fatalf("security.NewMiddleware: %v", err)
	}
	tokens := NewTokenIssuer([]byte("flow-test-secret-at-least-32-b!"), time.Hour)
	flow := NewFlow(adapter.Users(), adapter.Sessions(), tokens, secmw)
	return flow, func() { _ = adapter.Close() }
}

func TestRegisterThenLoginSucceeds(t *testing.T) {
	flow, cleanup := newTestFlow(t)
	defer cleanup()
	ctx := context.Background()

	req := &Request{Kind: "register", Username: "mob", Password: "correct horse battery staple"}
	res, err := flow.Register(ctx, "10.0.0.1", req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Username != "mob" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if res.Token == "" {
		t.Fatal("expected a session token")
	}

	loginRes, err := flow.Login(ctx, "10.0.0.1", &Request{Username: "mob", Password: "correct horse battery staple"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginRes.User.ID != res.User.ID {
		t.Fatal("expected login to resolve to the same user")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	flow, cleanup := newTestFlow(t)
	defer cleanup()
	ctx := context.Background()

	req := &Request{Kind: "register", Username: "dup", Password: "password1"}
	if _, err := flow.Register(ctx, "10.0.0.2", req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := flow.Register(ctx, "10.0.0.2", req); err == nil {
		t.Fatal("expected duplicate username to be rejected")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	flow, cleanup := newTestFlow(t)
	defer cleanup()
	ctx := context.Background()

	req := &Request{Kind: "register", Username: "wrongpw", Password: "rightpassword"}
	if _, err := flow.Register(ctx, "10.0.0.3", req); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := flow.Login(ctx, "10.0.0.3", &Request{Username: "wrongpw", Password: "nope"}); err == nil {
		t.Fatal("expected login with wrong password to fail")
	}
}
