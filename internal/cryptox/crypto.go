// Package cryptox holds the operator password scheme shared by the scanner
// and the server. The password never leaves the device: the scanner derives
// a key with argon2id over the server-issued salt and sends only the SHA-256
// verifier of that key.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"golang.org/x/crypto/argon2"
)

const SaltSize = 32

func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// VerifierFor runs DeriveKey and MakeVerifier and wipes the intermediate key.
func VerifierFor(password []byte, salt []byte) []byte {
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return MakeVerifier(key)
}

// Equal compares verifiers in constant time.
func Equal(a, b []byte) bool {
	return len(a) > 0 && subtle.ConstantTimeCompare(a, b) == 1
}
