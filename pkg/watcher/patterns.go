package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// PatternFilter matches base names against include and ignore glob patterns.
// A name passes if it matches at least one include pattern (or the include
// set is empty) and no ignore pattern.
type PatternFilter struct {
	Include []string
	Ignore  []string
}

// ParsePatterns splits s on FilterSeparators, trims blanks and validates
// every pattern with filepath.Match.
func ParsePatterns(s string) ([]string, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(FilterSeparators, r)
	})

	patterns := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || slices.Contains(patterns, f) {
			continue
		}
		if _, err := filepath.Match(f, ""); err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidConfiguration, f, err)
		}
		patterns = append(patterns, f)
	}
	return patterns, nil
}

// NewPatternFilter normalizes include so that a match-all pattern turns into
// an empty set.
func NewPatternFilter(include, ignore []string) PatternFilter {
	for _, p := range include {
		if slices.Contains(matchAllPatterns, p) {
			include = nil
			break
		}
	}
	return PatternFilter{Include: include, Ignore: ignore}
}

// Included reports whether name is selected by the include set.
func (f PatternFilter) Included(name string) bool {
	if len(f.Include) == 0 {
		return true
	}
	for _, p := range f.Include {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Ignored reports whether name matches an ignore pattern.
func (f PatternFilter) Ignored(name string) bool {
	for _, p := range f.Ignore {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Matches combines Included and Ignored.
func (f PatternFilter) Matches(name string) bool {
	return !f.Ignored(name) && f.Included(name)
}
