package service

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet: case-insensitive and URL-safe.
var crockford = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// OpaqueTokenGenerator issues session tokens built from 16 UUIDv7 bytes
// followed by 8 CSPRNG bytes, base32-encoded and lowercased. The UUIDv7
// prefix makes tokens sort loosely with creation time, so the token
// index grows mostly append-only; the random suffix keeps the full value
// unguessable. Collisions are outside the entropy budget, so there is no
// retry logic.
type OpaqueTokenGenerator struct{}

func NewTokenGenerator() *OpaqueTokenGenerator {
	return &OpaqueTokenGenerator{}
}

// Generate returns a new 39-character opaque token.
func (g *OpaqueTokenGenerator) Generate() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("token uuid: %w", err)
	}

	buf := make([]byte, 24)
	copy(buf, id[:])
	if _, err := rand.Read(buf[16:]); err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}

	return strings.ToLower(crockford.EncodeToString(buf)), nil
}
