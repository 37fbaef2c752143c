package crypto

import "testing"

func TestHandshakeDerivesMatchingKeys(t *testing.T) {
	alice, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	bob, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	aliceKey, err := alice.DeriveSharedKey(bob.Public[:])
	if err != nil {
		t.Fatalf("alice.DeriveSharedKey: %v", err)
	}
	bobKey, err := bob.DeriveSharedKey(alice.Public[:])
	if err != nil {
		t.Fatalf("bob.DeriveSharedKey: %v", err)
	}
	if aliceKey != bobKey {
		t.Fatalf("derived keys diverge: %x != %x", aliceKey, bobKey)
	}
}

func TestDeriveSharedKeyRejectsWrongLength(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if _, err := kp.DeriveSharedKey([]byte("too-short")); err != ErrInvalidKeyLength {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
}

func TestCipherSealOpenRoundTrip(t *testing.T) {
	alice, _ := GenerateKeyPair()
	bob, _ := GenerateKeyPair()
	key, err := alice.DeriveSharedKey(bob.Public[:])
	if err != nil {
		t.Fatalf("DeriveSharedKey: %v", err)
	}

	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	record, err := c.Seal([]byte("hello lobby"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	plain, err := c.Open(record)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(plain) != "hello lobby" {
		t.Fatalf("round trip mismatch: got %q", plain)
	}
}

func TestCipherOpenRejectsTamperedRecord(t *testing.T) {
	key := [32]byte{1, 2, 3}
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	record, err := c.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	i := len(record) / 2
	replacement := byte('A')
	if record[i] == replacement {
		replacement = 'B'
	}
	tampered := record[:i] + string(replacement) + record[i+1:]
	if _, err := c.Open(tampered); err == nil {
		t.Fatalf("expected tampered record to fail to open")
	}
}

func TestCipherOpenRejectsShortRecord(t *testing.T) {
	key := [32]byte{9, 9, 9}
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	if _, err := c.Open(""); err != ErrShortRecord {
		t.Fatalf("expected ErrShortRecord, got %v", err)
	}
}
