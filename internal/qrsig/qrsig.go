// Package qrsig derives the QR signature printed on a registration pass.
//
// A signature is the SHA-256 hex digest of
//
//	orbitId|govIdLast4|firstName|eventId|hex(token)
//
// where token is a fresh 128-bit random value that is thrown away after
// hashing. The field order is a wire contract shared with every scanner in
// the field: reordering it breaks verification of passes issued earlier.
package qrsig

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
)

// TokenSize is the number of random bytes mixed into every signature.
const TokenSize = 16

const delimiter = "|"

// Fields are the registration attributes bound into a signature.
type Fields struct {
	OrbitID    string
	GovIDLast4 string
	FirstName  string
	EventID    string
}

// Validate rejects field sets that would produce ambiguous payloads.
func (f Fields) Validate() error {
	values := map[string]string{
		"orbit id":   f.OrbitID,
		"gov id":     f.GovIDLast4,
		"first name": f.FirstName,
		"event id":   f.EventID,
	}
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is empty", common.ErrValidation, name)
		}
		if strings.Contains(v, delimiter) {
			return fmt.Errorf("%w: %s contains %q", common.ErrValidation, name, delimiter)
		}
	}
	if utf8.RuneCountInString(f.GovIDLast4) != 4 {
		return fmt.Errorf("%w: gov id must be the last 4 characters", common.ErrValidation)
	}
	return nil
}

// Payload renders the canonical pre-image for token.
func Payload(f Fields, token []byte) string {
	return strings.Join([]string{
		f.OrbitID,
		f.GovIDLast4,
		f.FirstName,
		f.EventID,
		hex.EncodeToString(token),
	}, delimiter)
}

// Sign is the pure half of the scheme: same fields and token, same digest.
func Sign(f Fields, token []byte) string {
	sum := sha256.Sum256([]byte(Payload(f, token)))
	return hex.EncodeToString(sum[:])
}

// NewToken draws TokenSize bytes from crypto/rand.
func NewToken() ([]byte, error) {
	token := make([]byte, TokenSize)
	if _, err := randRead(token); err != nil {
		return nil, fmt.Errorf("random token: %w", err)
	}
	return token, nil
}

// Generate validates f, signs it with a fresh token and wipes the token.
// Only the returned digest may be persisted.
func Generate(f Fields) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(token)

	return Sign(f, token), nil
}

// IsWellFormed reports whether s looks like a signature: 64 lowercase hex
// characters. Scanners use it to drop garbage reads before any lookup.
func IsWellFormed(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
