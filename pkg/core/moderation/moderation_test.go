package moderation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  hello world  ", "hello world"},
		{"strips angle brackets", "<b>bold</b> move", "bbold/b move"},
		{"collapses whitespace", "a\t\tb\n\nc", "a b c"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxFieldLength+20)
	got := Sanitize(long)
	assert.Len(t, []rune(got), MaxFieldLength)
}

func TestSanitizeTags(t *testing.T) {
	got := SanitizeTags([]string{" go ", "", "Go", "<cli>", "  ", "devtools"})
	assert.Equal(t, []string{"go", "cli", "devtools"}, got)
}

func TestSanitizeTags_Caps(t *testing.T) {
	var tags []string
	for i := 0; i < MaxTags+5; i++ {
		tags = append(tags, strings.Repeat("t", i+1))
	}
	got := SanitizeTags(tags)
	assert.Len(t, got, MaxTags)
	assert.Equal(t, "t", got[0])

	got = SanitizeTags([]string{strings.Repeat("x", MaxTagLength*2)})
	require.Len(t, got, 1)
	assert.Len(t, got[0], MaxTagLength)
}

func TestHasUnsafeScheme(t *testing.T) {
	assert.True(t, HasUnsafeScheme("fine", "JavaScript:alert(1)"))
	assert.False(t, HasUnsafeScheme("a java script tutorial", "https://example.com"))
}

func TestDetector_DefaultPatterns(t *testing.T) {
	d := DefaultDetector()

	tests := []struct {
		name        string
		title       string
		description string
		url         string
		want        bool
	}{
		{"clean", "Shipped a CLI", "A tool for tailing logs", "https://example.com", false},
		{"phrase in title", "CLICK HERE now", "something", "https://example.com", true},
		{"phrase in url", "My app", "desc", "https://casino.example.com", true},
		{"wildcard pattern", "New coin", "crypto with huge profit", "https://example.com", true},
		{"pattern across fields", "investment tool", "results guaranteed", "https://example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsSpam(tt.title, tt.description, tt.url))
		})
	}
}

func TestLoadDetector(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		d, err := LoadDetector("")
		require.NoError(t, err)
		assert.True(t, d.IsSpam("viagra", "", ""))
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("patterns:\n  - buy followers\n  - \"seo.*backlinks\"\n"), 0o644))

		d, err := LoadDetector(path)
		require.NoError(t, err)
		assert.True(t, d.IsSpam("Buy Followers fast", "", ""))
		assert.True(t, d.IsSpam("", "cheap SEO and backlinks", ""))
		assert.False(t, d.IsSpam("casino", "", ""))
	})

	t.Run("no patterns", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("patterns: []\n"), 0o644))
		_, err := LoadDetector(path)
		assert.Error(t, err)
	})

	t.Run("bad regex", func(t *testing.T) {
		_, err := NewDetector([]string{"("})
		assert.Error(t, err)
	})
}

func TestDetector_Replace(t *testing.T) {
	d := DefaultDetector()
	next, err := NewDetector([]string{"buy followers"})
	require.NoError(t, err)

	d.Replace(next)
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.IsSpam("Buy followers today", "", ""))
	assert.False(t, d.IsSpam("casino", "", ""))
}

func TestContentHash(t *testing.T) {
	a := ContentHash("My Launch", "A description", "https://example.com")
	b := ContentHash("  my launch ", "a DESCRIPTION", "HTTPS://EXAMPLE.COM ")
	c := ContentHash("My Launch", "A description", "https://example.org")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
