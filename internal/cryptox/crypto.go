// Package cryptox implements the key derivation used by the offline unlock
// flow: a master key derived from the password via Argon2id and a short
// verifier cached locally so the password can be checked without the server.
package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

// DeriveMasterKey derives a 32-byte key from the password and salt using
// Argon2id. Parameters are fixed; changing them invalidates cached verifiers.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns the value cached locally to verify a later offline
// unlock. It is a hash of the master key, never the key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}
