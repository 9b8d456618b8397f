// Package moderation holds the stateless content checks applied to launch
// submissions: sanitization, spam pattern matching and content hashing.
package moderation

import (
	"regexp"
	"strings"
)

const (
	MaxFieldLength = 1000
	MinTextLength  = 10
	MaxTagLength   = 50
	MaxTags        = 10
)

var whitespace = regexp.MustCompile(`\s+`)

// Sanitize trims s, strips angle brackets, collapses whitespace and caps the
// result at MaxFieldLength runes.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return truncate(s, MaxFieldLength)
}

// SanitizeTags sanitizes each tag, drops empties and repeats, and keeps at
// most MaxTags entries in their original order.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = truncate(Sanitize(t), MaxTagLength)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// HasUnsafeScheme reports whether any value embeds a javascript: URI.
func HasUnsafeScheme(values ...string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), "javascript:") {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
