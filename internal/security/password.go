// Package security implements the per-connection security middleware of
// spec.md §4.3: rate limiting, failed-login lockouts, suspicious-content
// detection, Argon2id password hashing, and the structured security-event
// log. A single *Middleware handle is created at startup and injected into
// each connection task (spec.md §9).
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id tuning parameters. Chosen for an interactive login path rather
// than a batch job: low enough to keep handshake-to-Active latency small,
// high enough that brute-forcing leaked hashes is impractical.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// ErrMalformedHash is returned when a stored PHC string cannot be parsed.
var ErrMalformedHash = errors.New("security: malformed argon2id hash")

// HashPassword produces an Argon2id PHC-formatted hash and its salt, per
// spec.md §3 (User.password_hash, User.salt) and §4.6.
func HashPassword(password string) (hash, salt string, err error) {
	saltBytes := make([]byte, saltLen)
	if _, err = rand.Read(saltBytes); err != nil {
		return "", "", err
	}
	digest := argon2.IDKey([]byte(password), saltBytes, argonTime, argonMemory, argonThreads, argonKeyLen)

	encodedSalt := base64.RawStdEncoding.EncodeToString(saltBytes)
	encodedHash := base64.RawStdEncoding.EncodeToString(digest)
	phc := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, encodedSalt, encodedHash)
	return phc, encodedSalt, nil
}

// VerifyPassword checks password against a PHC-formatted Argon2id hash,
// using a constant-time comparison of the derived digests.
func VerifyPassword(password, phcHash string) (bool, error) {
	parts := strings.Split(phcHash, "$")
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", "<salt>", "<hash>"]
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}
	var mem uint32
	var tm uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &tm, &par); err != nil {
		return false, ErrMalformedHash
	}
	saltBytes, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	wantHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	gotHash := argon2.IDKey([]byte(password), saltBytes, tm, mem, par, uint32(len(wantHash)))
	return subtle.ConstantTimeCompare(gotHash, wantHash) == 1, nil
}
