// Package salt generates candidate salt strings and converts them to their
// canonical 32-byte on-chain form.
package salt

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/screa/create3-salt-miner/internal/crypto"
)

const (
	// DefaultLength is the random salt length when no salt prefix is used.
	DefaultLength = 10
	// PrefixedTailLength is the random tail length appended to a user salt prefix.
	PrefixedTailLength = 7

	charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// RandomString returns an n-character alphanumeric string drawn from
// crypto/rand. Unpredictability across parallel workers is what matters here,
// not cryptographic strength.
func RandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}
	return string(buf), nil
}

// WithPrefix returns userPrefix followed by a short random tail.
func WithPrefix(userPrefix string) (string, error) {
	tail, err := RandomString(PrefixedTailLength)
	if err != nil {
		return "", err
	}
	return userPrefix + tail, nil
}

// Candidate returns the next candidate salt string: a full-length random salt
// when saltPrefix is empty, otherwise saltPrefix plus a random tail.
func Candidate(saltPrefix string) (string, error) {
	if saltPrefix == "" {
		return RandomString(DefaultLength)
	}
	return WithPrefix(saltPrefix)
}

// ToSaltBytes returns the canonical 32-byte salt for a salt string:
// keccak256 of its UTF-8 bytes. One-way.
func ToSaltBytes(saltString string) [crypto.SaltLen]byte {
	var salt [crypto.SaltLen]byte
	copy(salt[:], crypto.Keccak256([]byte(saltString)))
	return salt
}

// Parse interprets a manually supplied salt. Exactly 64 hex characters
// (0x tolerated) decode directly to the 32-byte form; anything else is
// treated as a UTF-8 salt string and hashed.
func Parse(input string) [crypto.SaltLen]byte {
	h := strings.TrimSpace(input)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	if len(h) == crypto.SaltLen*2 {
		if b, err := hex.DecodeString(h); err == nil {
			var salt [crypto.SaltLen]byte
			copy(salt[:], b)
			return salt
		}
	}
	return ToSaltBytes(input)
}

// DigestHex returns the lowercase hex form of a 32-byte salt.
func DigestHex(salt [crypto.SaltLen]byte) string {
	return hex.EncodeToString(salt[:])
}
