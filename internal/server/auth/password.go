package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters: 1 pass over 64 MiB with 4 lanes, 32-byte output.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// HashPassword derives an argon2id hash of password under salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// CheckPassword reports whether candidate hashes to the stored value.
// Constant-time comparison.
func CheckPassword(candidate, salt, stored []byte) bool {
	hash := HashPassword(candidate, salt)
	return subtle.ConstantTimeCompare(hash, stored) == 1
}
