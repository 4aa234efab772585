package common

import "crypto/rand"

// GenerateRandByteArray returns n cryptographically random bytes.
// Panics if the system entropy source fails, which is not recoverable.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes the slice in place. Call it on password material as
// soon as it is no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
