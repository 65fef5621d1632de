// Package shortid generates the random short codes links resolve by.
package shortid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
)

// Alphabet is the fixed URL-safe, case-sensitive code alphabet.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength keeps the collision probability negligible at the
// expected scale (62^7 ≈ 3.5e12 codes).
const DefaultLength = 7

// Generator produces random short codes from the fixed alphabet.
// Codes come from crypto/rand, never from a counter, so the sequence
// is not predictable.
type Generator struct {
	length int
}

// New returns a Generator producing codes of the given length.
// Non-positive lengths fall back to DefaultLength.
func New(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate draws one random code. Uniqueness is not checked here; the
// caller retries against the store on collision.
func (g *Generator) Generate() (string, error) {
	b := make([]byte, g.length)
	for i := range b {
		idx, err := randInt(len(Alphabet))
		if err != nil {
			return "", fmt.Errorf("draw random index: %w", err)
		}
		b[i] = Alphabet[idx]
	}
	return string(b), nil
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}

// NewULID returns a time-sortable unique identifier for entities.
func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
}

// randInt returns a cryptographically secure random integer in [0, max).
func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
