// Package crypto implements the transport handshake and record encryption of
// spec.md §4.2: an ephemeral X25519 ECDH handshake followed by AES-256-GCM
// encrypted, newline-delimited, base64-framed records. AES-GCM itself has no
// ecosystem alternative in the retrieved pack, so it is implemented directly
// against the standard library's crypto/aes + crypto/cipher (see DESIGN.md);
// the ECDH key agreement uses golang.org/x/crypto/curve25519, the same
// dependency the teacher (and element-hq-dendrite) already carries.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/curve25519"
)

// keyDerivationSuffix is appended to the raw ECDH shared secret before
// hashing, exactly as spec.md §4.2 specifies.
const keyDerivationSuffix = "LAIR_CHAT_AES_KEY"

// ErrInvalidKeyLength is returned when a peer's decoded public key is not
// exactly 32 bytes. The caller is responsible for closing the connection and
// recording the invalid_key_length suspicious-activity event (spec.md §4.2).
var ErrInvalidKeyLength = errors.New("crypto: invalid public key length")

// KeyPair is an ephemeral X25519 key pair.
type KeyPair struct {
	Private [32]byte
	Public  [32]byte
}

// GenerateKeyPair creates a fresh ephemeral X25519 key pair using a
// cryptographically secure RNG.
func GenerateKeyPair() (*KeyPair, error) {
	var kp KeyPair
	if _, err := rand.Read(kp.Private[:]); err != nil {
		return nil, err
	}
	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	copy(kp.Public[:], pub)
	return &kp, nil
}

// DeriveSharedKey computes the ECDH shared secret against peerPublic (which
// must be exactly 32 bytes, per spec.md §4.2 step 2) and derives the
// 32-byte symmetric key as SHA-256(shared_secret || "LAIR_CHAT_AES_KEY").
func (kp *KeyPair) DeriveSharedKey(peerPublic []byte) ([32]byte, error) {
	var key [32]byte
	if len(peerPublic) != 32 {
		return key, ErrInvalidKeyLength
	}
	shared, err := curve25519.X25519(kp.Private[:], peerPublic)
	if err != nil {
		return key, err
	}
	h := sha256.New()
	h.Write(shared)
	h.Write([]byte(keyDerivationSuffix))
	copy(key[:], h.Sum(nil))
	return key, nil
}
