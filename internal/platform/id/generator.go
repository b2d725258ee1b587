package id

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

const (
	idBytes    = 16
	tokenBytes = 32
)

// RandomGenerator draws size random bytes per ID and renders them with encode.
type RandomGenerator struct {
	size   int
	encode func([]byte) string
}

// NewRandomGenerator returns 32-char hex IDs, used for user ids.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{size: idBytes, encode: hex.EncodeToString}
}

// NewTokenGenerator returns URL-safe access tokens carrying 256 bits.
func NewTokenGenerator() *RandomGenerator {
	return &RandomGenerator{size: tokenBytes, encode: base64.RawURLEncoding.EncodeToString}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read %d random bytes: %w", g.size, err)
	}

	return g.encode(buf), nil
}
