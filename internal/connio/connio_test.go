package connio

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/berrym/lair-chat/internal/auth"
	"github.com/berrym/lair-chat/internal/crypto"
	"github.com/berrym/lair-chat/internal/dispatcher"
	"github.com/berrym/lair-chat/internal/notify"
	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/session"
	"github.com/berrym/lair-chat/internal/store/memory"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	st, err := memory.New()
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	secmw, err := security.NewMiddleware(nil)
	if err != nil {
		t.Fatalf("security.NewMiddleware: %v", err)
	}
	shared := session.NewSharedState()
	fabric := notify.NewFabric(shared, st.Rooms())
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	flow := auth.NewFlow(st.Users(), st.Sessions(), tokens, secmw)
	executor := dispatcher.NewExecutor(st, fabric, shared, secmw)

	return &Handler{Shared: shared, Fabric: fabric, Flow: flow, Executor: executor, SecMW: secmw}
}

// clientSide drives the peer end of the handshake manually, returning a
// Cipher ready to exchange encrypted lines with the server.
func clientSide(t *testing.T, conn net.Conn) *crypto.Cipher {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	r := bufio.NewReader(conn)
	serverPubLine, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("reading server pubkey: %v", err)
	}
	serverPub, err := base64.StdEncoding.DecodeString(strings.TrimSpace(serverPubLine))
	if err != nil {
		t.Fatalf("decoding server pubkey: %v", err)
	}

	if _, err := conn.Write([]byte(base64.StdEncoding.EncodeToString(kp.Public[:]) + "\n")); err != nil {
		t.Fatalf("writing client pubkey: %v", err)
	}

	key, err := kp.DeriveSharedKey(serverPub)
	if err != nil {
		t.Fatalf("DeriveSharedKey: %v", err)
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	return cipher
}

func sendEncrypted(t *testing.T, conn net.Conn, cipher *crypto.Cipher, plaintext string) {
	t.Helper()
	sealed, err := cipher.Seal([]byte(plaintext))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := conn.Write([]byte(sealed + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readEncrypted(t *testing.T, r *bufio.Reader, cipher *crypto.Cipher) string {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	plain, err := cipher.Open(strings.TrimSpace(line))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return string(plain)
}

func TestHandshakeThenRegisterThenCommand(t *testing.T) {
	h := newTestHandler(t)
	serverConn, clientConn := net.Pipe()

	go h.Serve(context.Background(), serverConn)

	cipher := clientSide(t, clientConn)
	r := bufio.NewReader(clientConn)

	welcome := readEncrypted(t, r, cipher)
	if welcome != "Welcome to The Lair! Please login or register." {
		t.Fatalf("unexpected welcome line: %q", welcome)
	}

	req, _ := json.Marshal(auth.Request{Kind: "register", Username: "alice", Password: "hunter22", Fingerprint: "fp"})
	sendEncrypted(t, clientConn, cipher, string(req))

	reply := readEncrypted(t, r, cipher)
	if reply != "SYSTEM_MESSAGE:Authentication successful!" {
		t.Fatalf("unexpected auth reply: %q", reply)
	}

	userListReply := readEncrypted(t, r, cipher)
	if !strings.HasPrefix(userListReply, "USER_LIST:") {
		t.Fatalf("expected USER_LIST broadcast after login, got %q", userListReply)
	}

	roomStatusReply := readEncrypted(t, r, cipher)
	if !strings.HasPrefix(roomStatusReply, "ROOM_STATUS:Lobby,") {
		t.Fatalf("expected ROOM_STATUS broadcast after login, got %q", roomStatusReply)
	}

	sendEncrypted(t, clientConn, cipher, "SHOW_HELP")
	helpReply := readEncrypted(t, r, cipher)
	if !strings.HasPrefix(helpReply, "SYSTEM_MESSAGE:Commands:") {
		t.Fatalf("expected SHOW_HELP reply, got %q", helpReply)
	}

	clientConn.Close()
}

func TestHandshakeRejectsGarbagePublicKey(t *testing.T) {
	h := newTestHandler(t)
	serverConn, clientConn := net.Pipe()

	go h.Serve(context.Background(), serverConn)

	r := bufio.NewReader(clientConn)
	if _, err := r.ReadString('\n'); err != nil {
		t.Fatalf("reading server pubkey: %v", err)
	}

	if _, err := clientConn.Write([]byte(base64.StdEncoding.EncodeToString([]byte("too-short")) + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 1)
	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := clientConn.Read(buf); err == nil {
		t.Fatalf("expected connection to be closed after invalid public key")
	}
}
