// Package matching ranks catalog careers against a user's skills and interests
// and derives the missing skills and learning path for the best matches.
package matching

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SkillMatcher decides whether a held skill satisfies a required skill.
// Both arguments are normalized tokens (see Normalize).
type SkillMatcher interface {
	Match(held, required string) bool
}

// SubstringMatcher treats two skills as equivalent when either contains the other.
// "java" therefore satisfies "javascript"; that false positive is accepted.
type SubstringMatcher struct{}

// Match implements SkillMatcher
func (SubstringMatcher) Match(held, required string) bool {
	return overlaps(held, required)
}

// AliasMatcher is a stricter matcher: tokens must be equal after mapping
// well-known aliases ("golang", "k8s", "reactjs") to one canonical name.
type AliasMatcher struct {
	aliases map[string]string
}

// NewAliasMatcher returns an AliasMatcher using the built-in alias table
// extended (and overridden) by extra.
func NewAliasMatcher(extra map[string]string) *AliasMatcher {
	aliases := make(map[string]string, len(skillAliases)+len(extra))
	for k, v := range skillAliases {
		aliases[k] = v
	}
	for k, v := range extra {
		aliases[Normalize(k)] = Normalize(v)
	}
	return &AliasMatcher{aliases: aliases}
}

// Match implements SkillMatcher
func (m *AliasMatcher) Match(held, required string) bool {
	if held == "" || required == "" {
		return false
	}
	return m.canonical(held) == m.canonical(required)
}

func (m *AliasMatcher) canonical(token string) string {
	if c, ok := m.aliases[token]; ok {
		return c
	}
	return token
}

// skillAliases maps common skill name variants to canonical lower-case names
var skillAliases = map[string]string{
	"golang":              "go",
	"go lang":             "go",
	"js":                  "javascript",
	"ts":                  "typescript",
	"k8s":                 "kubernetes",
	"react.js":            "react",
	"reactjs":             "react",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"nodejs":              "node.js",
	"node":                "node.js",
	"postgres":            "postgresql",
	"ml":                  "machine learning",
	"gcp":                 "google cloud",
	"amazon web services": "aws",
}

// Normalize lower-cases and trims a skill or interest token.
// A blank input yields "".
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Lower(language.Und).String(s)
}

// overlaps reports containment in either direction between two normalized tokens.
// Blank tokens never overlap, since "" is a substring of everything.
func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// MatcherByName returns the matcher registered under name: "substring" (also
// the empty name) or "alias".
func MatcherByName(name string) (SkillMatcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "substring":
		return SubstringMatcher{}, nil
	case "alias":
		return NewAliasMatcher(nil), nil
	default:
		return nil, fmt.Errorf("unknown skill matcher %q", name)
	}
}
