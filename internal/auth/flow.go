package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/idgen"
	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/types"
)

// Request is the pre-session, handshake-encrypted JSON object of spec.md
// §4.6: a tagged union of Login and Register, both carrying the same three
// fields.
type Request struct {
	Kind        string `json:"kind"` // "login" or "register"
	Username    string `json:"username"`
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint"`
}

// ParseRequest decodes one pre-session JSON line.
func ParseRequest(line string) (*Request, error) {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return nil, errs.Serialization(err)
	}
	return &req, nil
}

// Result carries the outcome of a successful Login/Register: the user
// record, a fresh session token, and that token's expiry. It carries no
// reply line; the caller queues "Authentication successful!" itself.
type Result struct {
	User      *types.User
	Token     string
	ExpiresAt time.Time
}

// Flow executes the Login/Register state machine against the storage
// contract, the security middleware's login guard, and the token issuer.
type Flow struct {
	users   store.UserStore
	sess    store.SessionStore
	tokens  *TokenIssuer
	secmw   *security.Middleware
}

// NewFlow builds a Flow.
func NewFlow(users store.UserStore, sess store.SessionStore, tokens *TokenIssuer, secmw *security.Middleware) *Flow {
	return &Flow{users: users, sess: sess, tokens: tokens, secmw: secmw}
}

// Register creates a new user with the default User role and profile, then
// falls through to Login, per spec.md §4.6.
func (f *Flow) Register(ctx context.Context, ip string, req *Request) (*Result, error) {
	exists, err := f.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, errs.Storage("users.exists", err)
	}
	if exists {
		return nil, errs.Duplicate("user", req.Username)
	}

	hash, salt, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := uint64(time.Now().Unix())
	user := &types.User{
		ID:           idgen.New(),
		Username:     req.Username,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
		Role:         types.RoleUser,
	}
	if err := types.Validate(user); err != nil {
		return nil, errs.Validation("user", err.Error())
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, errs.Storage("users.create", err)
	}

	return f.Login(ctx, ip, req)
}

// Login verifies credentials, records the outcome with the login guard,
// mints a session token, and returns the authenticated user. On failure it
// always returns a generic error, never revealing whether the username or
// the password was wrong (spec.md §4.6).
func (f *Flow) Login(ctx context.Context, ip string, req *Request) (*Result, error) {
	if err := f.secmw.CheckAuth(ctx, ip, req.Username); err != nil {
		return nil, err
	}

	user, err := f.users.GetByUsername(ctx, req.Username)
	if err != nil {
		f.secmw.RecordAuthResult(ip, req.Username, false)
		return nil, errs.PermissionDenied("invalid credentials")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		f.secmw.RecordAuthResult(ip, req.Username, false)
		return nil, errs.PermissionDenied("invalid credentials")
	}

	f.secmw.RecordAuthResult(ip, req.Username, true)

	now := uint64(time.Now().Unix())
	if err := f.users.UpdateLastSeen(ctx, user.ID, now); err != nil {
		return nil, errs.Storage("users.update_last_seen", err)
	}

	sessionID := idgen.New()
	token, expiresAt, err := f.tokens.Issue(user.ID, sessionID)
	if err != nil {
		return nil, err
	}

	dbSession := &types.Session{
		ID:           sessionID,
		UserID:       user.ID,
		Token:        token,
		CreatedAt:    now,
		ExpiresAt:    uint64(expiresAt.Unix()),
		LastActivity: now,
		IPAddress:    &ip,
		IsActive:     true,
	}
	if err := f.sess.Create(ctx, dbSession); err != nil {
		return nil, errs.Storage("sessions.create", err)
	}

	return &Result{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
