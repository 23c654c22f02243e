// Package canonical produces the deterministic encoding every ledger hash is
// computed over. Objects are serialized with lexicographically sorted keys,
// arrays keep their order, and numbers and strings follow RFC 8785 (JCS).
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Canonicalize returns the canonical textual form of v.
// Fields tagged omitempty that are absent stay absent; no defaults are added.
func Canonicalize(v any) (string, error) {
	b, err := Bytes(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bytes returns the canonical form of v as raw bytes.
func Bytes(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: marshal: %w", err)
	}

	return FromJSON(raw)
}

// FromJSON canonicalizes an already encoded JSON document.
func FromJSON(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonical: transform: %w", err)
	}
	return out, nil
}

// Hash returns the lower-case hex SHA-256 digest of Canonicalize(v).
func Hash(v any) (string, error) {
	b, err := Bytes(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// HashString hashes raw text without canonicalizing it.
// Merkle nodes hash the concatenation of their children's hex digests this way.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// HashBytes returns the lower-case hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsHexDigest reports whether s looks like a lower-case hex SHA-256 digest.
func IsHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
