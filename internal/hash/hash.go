// Package hash provides deterministic content-addressable identifiers for
// documents and chunks. The scheme is fixed: SHA-256 over the exact UTF-8
// bytes of the text, URL-safe base64 with padding, always 44 characters.
// No whitespace normalisation is applied; the text is hashed as extracted.
package hash

import (
	"crypto/sha256"
	"encoding/base64"
)

// Size is the length of every identifier produced by Text.
const Size = 44

// Text returns the content hash of s. Identical input always yields an
// identical identifier, across processes and platforms.
func Text(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.URLEncoding.EncodeToString(sum[:])
}

// Verify reports whether id is the content hash of s.
func Verify(s, id string) bool {
	return Text(s) == id
}
