package common

import (
	"crypto/rand"
)

// GenerateRandByteArray returns size bytes from crypto/rand. It panics if the
// system source fails, which only happens on a broken host.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. Used on passwords and random tokens
// once they are no longer needed. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
