package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// MakeRandHexString returns size random bytes hex-encoded, so the string is
// 2*size characters long. Refresh tokens are minted with it.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size random bytes. It panics only if the
// system random source is broken.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b. Passwords and derived keys are wiped once hashed.
func WipeByteArray(b []byte) {
	clear(b)
}

// NewID returns a fresh record identifier: a random UUID in lower case.
func NewID() string {
	return strings.ToLower(uuid.NewString())
}
