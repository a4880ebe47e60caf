package clientid

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Header carries the anonymous client identifier on every API request.
const Header = "X-Client-Id"

const (
	byteLength = 24
	// MaxLength bounds identifiers accepted from the wire.
	MaxLength = 128
)

// New returns 24 random bytes encoded as 48 lowercase hex characters.
func New() (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Valid reports whether id is usable as a favorites partition key.
// Identifiers minted by other clients need not be hex, only printable and bounded.
func Valid(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > MaxLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
