package moderation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash fingerprints a submission for duplicate detection. Case and
// surrounding whitespace do not change the result.
func ContentHash(title, description, url string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	sum := sha256.Sum256([]byte(norm(title) + "|" + norm(description) + "|" + norm(url)))
	return hex.EncodeToString(sum[:])
}
