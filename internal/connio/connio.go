// Package connio drives one accepted TCP connection through the two-state
// machine of spec.md §4.2/§4.4: Handshaking, then Authenticating, then
// Active, terminating on any protocol violation or peer disconnect.
// Grounded on tinode's server/session.go per-connection read/write
// goroutine pair (one goroutine reads and dispatches, a second drains the
// session's outbound channel), adapted to this engine's line-oriented,
// AES-GCM-encrypted wire format instead of tinode's JSON-over-websocket
// frames.
package connio

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/berrym/lair-chat/internal/auth"
	"github.com/berrym/lair-chat/internal/crypto"
	"github.com/berrym/lair-chat/internal/dispatcher"
	"github.com/berrym/lair-chat/internal/idgen"
	"github.com/berrym/lair-chat/internal/logging"
	"github.com/berrym/lair-chat/internal/metrics"
	"github.com/berrym/lair-chat/internal/notify"
	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/session"
)

// Handler owns every collaborator one connection needs: the handshake, the
// auth flow, the command executor, shared state, and the fabric. One
// Handler is built once at startup and reused across every accepted
// connection (spec.md §9: injected handles, not globals).
type Handler struct {
	Shared   *session.SharedState
	Fabric   *notify.Fabric
	Flow     *auth.Flow
	Executor *dispatcher.Executor
	SecMW    *security.Middleware
}

// Serve drives conn from accept to close. It never returns an error the
// caller must act on; all failures are logged and the connection is closed.
func (h *Handler) Serve(ctx context.Context, conn net.Conn) {
	peerAddr := conn.RemoteAddr().String()
	sid := idgen.New()
	log := logging.Conn(peerAddr, sid)

	defer conn.Close()
	metrics.RecordSecurityEvent("connection_opened")

	sess := session.New(sid, peerAddr)

	reader := crypto.NewLineReader(conn)
	writer := crypto.NewLineWriter(conn)

	cipher, err := h.handshake(conn, reader, writer, log)
	if err != nil {
		log.Warn("handshake failed, closing connection", zap.Error(err))
		return
	}
	sess.Cipher = cipher

	writerDone := make(chan struct{})
	go h.writeLoop(sess, writer, writerDone)

	defer func() {
		sess.Stop()
		<-writerDone
		username := sess.Username()
		h.Shared.Disconnect(peerAddr, username)
		if username != "" {
			h.Fabric.BroadcastUserList()
		}
	}()

	h.Shared.AddPeer(peerAddr, sess)
	sess.QueueOut("Welcome to The Lair! Please login or register.")

	if !h.authenticate(ctx, sess, reader, peerAddr, log) {
		return
	}

	h.activeLoop(ctx, sess, reader, log)
}

// handshake runs the X25519 key exchange of spec.md §4.2: each side sends
// its base64-encoded 32-byte public key on its own line, then both derive
// the shared AES-256-GCM key.
func (h *Handler) handshake(conn net.Conn, reader *crypto.LineReader, writer *crypto.LineWriter, log *zap.Logger) (*crypto.Cipher, error) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	if err := writer.WriteLine(base64.StdEncoding.EncodeToString(kp.Public[:])); err != nil {
		return nil, err
	}

	line, err := reader.ReadLine()
	if err != nil {
		return nil, err
	}
	peerPublic, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return nil, err
	}

	key, err := kp.DeriveSharedKey(peerPublic)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidKeyLength) {
			h.SecMW.Events.Record("invalid_key_length", conn.RemoteAddr().String(), "", "handshake public key was not 32 bytes")
		}
		return nil, err
	}

	return crypto.NewCipher(key)
}

// authenticate drives the pre-session Login/Register exchange of spec.md
// §4.6. It returns true once sess carries an authenticated identity. Every
// reply goes through sess.QueueOut rather than writing the connection
// directly, so the writeLoop goroutine remains the connection's sole
// writer for its whole lifetime.
func (h *Handler) authenticate(ctx context.Context, sess *session.Session, reader *crypto.LineReader, peerAddr string, log *zap.Logger) bool {
	for {
		record, err := reader.ReadLine()
		if err != nil {
			return false
		}
		plain, err := sess.Cipher.Open(record)
		if err != nil {
			log.Warn("failed to decrypt pre-session record", zap.Error(err))
			return false
		}

		req, err := auth.ParseRequest(string(plain))
		if err != nil {
			sess.QueueOut("SYSTEM_MESSAGE:Malformed request")
			continue
		}

		var result *auth.Result
		switch req.Kind {
		case "register":
			result, err = h.Flow.Register(ctx, peerAddr, req)
		default:
			result, err = h.Flow.Login(ctx, peerAddr, req)
		}

		if err != nil {
			sess.QueueOut("SYSTEM_MESSAGE:" + err.Error())
			continue
		}

		sess.Authenticate(result.User.ID, result.User.Username)
		connected := sess.ToConnectedUser()
		h.Shared.Login(result.User.Username, &connected)

		sess.QueueOut("SYSTEM_MESSAGE:Authentication successful!")
		h.Fabric.BroadcastUserList()
		h.Fabric.BroadcastRoomStatus(nil, result.User.Username)
		return true
	}
}

// activeLoop reads, decrypts, parses, and dispatches commands until the
// peer disconnects or sends an undecryptable record.
func (h *Handler) activeLoop(ctx context.Context, sess *session.Session, reader *crypto.LineReader, log *zap.Logger) {
	for {
		record, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("read error, closing connection", zap.Error(err))
			}
			return
		}
		plain, err := sess.Cipher.Open(record)
		if err != nil {
			log.Warn("failed to decrypt record, closing connection", zap.Error(err))
			return
		}

		sess.Touch()
		cmd := dispatcher.ParseCommand(string(plain))
		for _, line := range h.Executor.Execute(ctx, sess, cmd) {
			sess.QueueOut(line)
		}
	}
}

// writeLoop drains sess's outbound channel, encrypting and writing each
// line until Stop is called.
func (h *Handler) writeLoop(sess *session.Session, writer *crypto.LineWriter, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case line := <-sess.Outbound():
			sealed, err := sess.Cipher.Seal([]byte(line))
			if err != nil {
				logging.L().Warn("failed to seal outbound record", zap.Error(err))
				continue
			}
			if err := writer.WriteLine(sealed); err != nil {
				return
			}
		case <-sess.Done():
			return
		}
	}
}
