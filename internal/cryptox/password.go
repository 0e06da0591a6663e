package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"golang.org/x/crypto/argon2"
)

// HashPassword returns a self-describing argon2id hash of password:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//
// The salt and parameters travel with the hash, so the directory needs no
// extra columns and parameters can change without breaking old records.
func HashPassword(password []byte) (string, error) {
	if len(password) == 0 {
		return "", common.ErrInvalidPassword
	}

	salt := common.GenerateRandByteArray(SaltSize)
	hash := argon2.IDKey(password, salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, kdfMemory, kdfTime, kdfThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword reports whether password matches an encoded hash produced
// by HashPassword. Malformed hashes never match.
func VerifyPassword(password []byte, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var (
		memory, iterations uint32
		threads            uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	if !sane(memory, iterations, threads) {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	if len(want) > maxHashLen {
		return false
	}

	got := argon2.IDKey(password, salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1
}

// Bounds for parameters read back from a stored hash. argon2.IDKey panics on
// zero threads and allocates memory KiB without limit.
const (
	maxMemory     = 1 << 22 // 4 GiB
	maxIterations = 64
	maxHashLen    = 1024
)

func sane(memory, iterations uint32, threads uint8) bool {
	if threads == 0 || iterations == 0 || iterations > maxIterations {
		return false
	}
	return memory >= 8*uint32(threads) && memory <= maxMemory
}
