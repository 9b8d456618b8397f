package moderation

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultPatterns are the phrases that flag a submission as spam.
var DefaultPatterns = []string{
	`click here`,
	`limited time`,
	`act now`,
	`guaranteed`,
	`make money`,
	`free money`,
	`viagra`,
	`casino`,
	`crypto.*profit`,
	`investment.*guaranteed`,
}

// Rules is the on-disk shape of a spam rules file.
type Rules struct {
	Patterns []string `yaml:"patterns"`
}

// Detector matches submission content against compiled spam patterns.
type Detector struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
}

func NewDetector(patterns []string) (*Detector, error) {
	d := &Detector{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile spam pattern %q: %w", p, err)
		}
		d.patterns = append(d.patterns, re)
	}
	return d, nil
}

// DefaultDetector returns a Detector built from DefaultPatterns.
func DefaultDetector() *Detector {
	d, err := NewDetector(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return d
}

// LoadDetector reads a YAML rules file. An empty path yields DefaultDetector.
func LoadDetector(path string) (*Detector, error) {
	if path == "" {
		return DefaultDetector(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spam rules: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse spam rules: %w", err)
	}
	if len(rules.Patterns) == 0 {
		return nil, fmt.Errorf("spam rules file %s has no patterns", path)
	}
	return NewDetector(rules.Patterns)
}

// IsSpam reports whether title, description or url trips any pattern.
func (d *Detector) IsSpam(title, description, url string) bool {
	content := strings.ToLower(title + " " + description + " " + url)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, re := range d.patterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// Replace swaps in the patterns of next. In-flight checks finish against the
// old set.
func (d *Detector) Replace(next *Detector) {
	next.mu.RLock()
	patterns := next.patterns
	next.mu.RUnlock()

	d.mu.Lock()
	d.patterns = patterns
	d.mu.Unlock()
}

// Len returns the number of active patterns.
func (d *Detector) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.patterns)
}
