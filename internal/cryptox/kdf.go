// Package cryptox holds the password hashing and sealing primitives used by
// the account manager and the CLI export.
package cryptox

import "golang.org/x/crypto/argon2"

// Argon2id parameters shared by password hashes and sealing keys.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// DeriveKey stretches password with salt into a 32-byte key.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}
