package process

import (
	"path/filepath"

	"github.com/Veraticus/worktime/pkg/config"
)

// Matcher checks process names against the configured target patterns.
type Matcher struct {
	patterns []config.Pattern
}

// NewMatcher keeps only enabled patterns that have a compiled regex.
func NewMatcher(patterns []config.Pattern) *Matcher {
	enabled := make([]config.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Enabled && p.CompiledRegex() != nil {
			enabled = append(enabled, p)
		}
	}
	return &Matcher{patterns: enabled}
}

// Match returns the name of the first pattern that matches p.
// The kernel truncates comm, so the argv[0] basename is tried as well.
func (m *Matcher) Match(p Info) (string, bool) {
	candidates := []string{p.Name}
	if base := filepath.Base(p.Name); base != p.Name {
		candidates = append(candidates, base)
	}
	if p.Exe != "" && p.Exe != p.Name {
		candidates = append(candidates, p.Exe)
	}

	for _, pattern := range m.patterns {
		re := pattern.CompiledRegex()
		for _, c := range candidates {
			if c != "" && re.MatchString(c) {
				return pattern.Name, true
			}
		}
	}
	return "", false
}

// Patterns returns the active patterns.
func (m *Matcher) Patterns() []config.Pattern {
	return m.patterns
}
