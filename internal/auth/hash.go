package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// QuickHash produces a fast digest of a plaintext token, used as a
// cache key so the raw token never reaches Redis. Not a substitute for
// the stored argon2 hash.
func QuickHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
