// Package slug owns slug syntax rules, the reserved-name set and the
// random slug generator.
package slug

import (
	"crypto/rand"
	"fmt"
	"math/big"

	apperrors "github.com/acolella/linkshort/internal/errors"
)

// Alphabet is the fixed character set slugs are made of. 36 characters
// give 36^4 (about 1.7M) combinations at the shortest auto length, which keeps
// collisions rare while staying typeable.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// reserved lists every path segment the HTTP surface mounts for itself.
// A slug equal to one of these would shadow a route, so the generator
// skips them and user-supplied ones are rejected.
var reserved = map[string]struct{}{
	"add":     {},
	"get":     {},
	"all":     {},
	"stats":   {},
	"qr":      {},
	"health":  {},
	"docs":    {},
	"api":     {},
	"static":  {},
	"favicon": {},
}

// IsReserved reports whether slug collides with a route segment.
// The caller is expected to have lower-cased the slug already.
func IsReserved(slug string) bool {
	_, ok := reserved[slug]
	return ok
}

// ValidateSyntax applies the syntactic slug rules in order: alphabet
// first, then length bounds. The first failing rule determines the
// returned error so callers get deterministic messages.
func ValidateSyntax(slug string, minLen, maxLen int) error {
	for _, c := range slug {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return fmt.Errorf("slug %q: %w", slug, apperrors.ErrInvalidCharacter)
		}
	}
	if len(slug) < minLen || len(slug) > maxLen {
		return fmt.Errorf("slug %q has length %d, allowed range is %d-%d: %w",
			slug, len(slug), minLen, maxLen, apperrors.ErrInvalidLength)
	}
	return nil
}

// Generator produces random slug candidates within its configured
// auto-length range.
type Generator struct {
	minLen int
	maxLen int
}

// NewGenerator returns a Generator drawing slugs of length [minLen, maxLen].
func NewGenerator(minLen, maxLen int) *Generator {
	return &Generator{minLen: minLen, maxLen: maxLen}
}

// maxGenerateAttempts caps GenerateUnique's retry loop. The search space
// makes practical non-termination negligible, but a bound keeps a corrupt
// or full registry from spinning forever.
const maxGenerateAttempts = 1000

// Generate draws one random candidate slug. Each character is chosen
// uniformly from the alphabet using crypto/rand; the slug space is small
// enough that a predictable source would allow enumeration of allocated
// slugs.
func (g *Generator) Generate() (string, error) {
	length, err := randomInt(g.maxLen - g.minLen + 1)
	if err != nil {
		return "", fmt.Errorf("failed to draw slug length: %w", err)
	}
	length += g.minLen

	code := make([]byte, length)
	for i := range code {
		n, err := randomInt(len(Alphabet))
		if err != nil {
			return "", fmt.Errorf("failed to draw slug character: %w", err)
		}
		code[i] = Alphabet[n]
	}
	return string(code), nil
}

// GenerateUnique draws candidates until one is neither reserved nor
// reported as existing by exists. It fails with ErrExhaustedSlugSpace
// after maxGenerateAttempts tries.
func (g *Generator) GenerateUnique(exists func(slug string) (bool, error)) (string, error) {
	for i := 0; i < maxGenerateAttempts; i++ {
		candidate, err := g.Generate()
		if err != nil {
			return "", err
		}
		if IsReserved(candidate) {
			continue
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug existence: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperrors.ErrExhaustedSlugSpace
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
