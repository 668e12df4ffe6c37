package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/identitystore/internal/common"
)

// ErrInvalidHash is returned by VerifyPassword for hashes it cannot parse.
var ErrInvalidHash = errors.New("invalid password hash")

var b64 = base64.RawStdEncoding

// maxArgonMemory bounds the m parameter (KiB) accepted from a stored hash.
const maxArgonMemory = 1 << 20

// HashPassword returns password hashed with argon2id in the PHC string
// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
func HashPassword(password string) string {
	salt := common.GenerateRandByteArray(saltLen)
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key))
}

// VerifyPassword reports whether password matches encoded. The parameters
// stored in encoded are used, so older hashes keep verifying after the
// defaults change.
func VerifyPassword(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrInvalidHash
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrInvalidHash
	}
	// argon2 panics on these instead of returning an error.
	if iterations < 1 || threads < 1 || memory < 8*uint32(threads) || memory > maxArgonMemory {
		return false, ErrInvalidHash
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// NewSecurityStamp returns a random stamp to be replaced whenever a user's
// credentials change.
func NewSecurityStamp() string {
	return strings.ToUpper(hex.EncodeToString(common.GenerateRandByteArray(16)))
}
