package types

import "testing"

func TestValidateRejectsShortUsername(t *testing.T) {
	u := &User{ID: "11111111-1111-4111-8111-111111111111", Username: "ab"}
	if err := Validate(u); err == nil {
		t.Fatalf("expected a two-character username to fail min=3")
	}
}

func TestValidateAcceptsWellFormedUser(t *testing.T) {
	u := &User{ID: "11111111-1111-4111-8111-111111111111", Username: "alice"}
	if err := Validate(u); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsRoomNamedLobby(t *testing.T) {
	r := &Room{Name: "Lobby"}
	if err := Validate(r); err == nil {
		t.Fatalf("expected a room named Lobby to fail the ne=Lobby rule")
	}
}

func TestValidateAcceptsOrdinaryRoomName(t *testing.T) {
	r := &Room{Name: "general"}
	if err := Validate(r); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
