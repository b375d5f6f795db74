package rules

import "regexp"

// Word characters for boundary purposes: letters, combining marks, digits
// and underscore, in any script.
const (
	boundaryBefore = `(?:^|[^\p{L}\p{M}\p{N}_])`
	boundaryAfter  = `(?:[^\p{L}\p{M}\p{N}_]|$)`
)

// wordPattern compiles a whole-word, case-sensitive pattern for kw. The
// keyword is quoted, so compilation can only fail on a bug here.
func wordPattern(kw string) *regexp.Regexp {
	return regexp.MustCompile(boundaryBefore + regexp.QuoteMeta(kw) + boundaryAfter)
}

// Matches reports whether text contains every keyword of r as a whole word.
// A rule without keywords never matches.
func (r Rule) Matches(text string) bool {
	if len(r.Keywords) == 0 {
		return false
	}
	for _, kw := range r.Keywords {
		if !wordPattern(kw).MatchString(text) {
			return false
		}
	}
	return true
}

// Matcher holds rules with their keyword patterns compiled once. It is
// immutable after construction and safe for concurrent use.
type Matcher struct {
	rules    []Rule
	patterns map[string]*regexp.Regexp
}

// NewMatcher compiles the keyword patterns of rules. Keywords shared between
// rules, which inheritance makes common, are compiled once.
func NewMatcher(rules []Rule) *Matcher {
	m := &Matcher{
		rules:    append([]Rule(nil), rules...),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, r := range m.rules {
		for _, kw := range r.Keywords {
			if _, ok := m.patterns[kw]; !ok {
				m.patterns[kw] = wordPattern(kw)
			}
		}
	}
	return m
}

// Rules returns the rules in compilation order.
func (m *Matcher) Rules() []Rule {
	return append([]Rule{}, m.rules...)
}

// Match returns every rule satisfied by text, in rule order. More than one
// result is an ambiguous classification; none means unclassified.
func (m *Matcher) Match(text string) []Rule {
	matched := []Rule{}
	// A keyword shared by many rules is tested against text only once.
	seen := make(map[string]bool, len(m.patterns))
	for _, r := range m.rules {
		if m.satisfies(r, text, seen) {
			matched = append(matched, r)
		}
	}
	return matched
}

func (m *Matcher) satisfies(r Rule, text string, seen map[string]bool) bool {
	if len(r.Keywords) == 0 {
		return false
	}
	for _, kw := range r.Keywords {
		found, ok := seen[kw]
		if !ok {
			found = m.patterns[kw].MatchString(text)
			seen[kw] = found
		}
		if !found {
			return false
		}
	}
	return true
}

// Matches returns the subset of rules satisfied by text, preserving order.
func Matches(rules []Rule, text string) []Rule {
	return NewMatcher(rules).Match(text)
}

// Ambiguous reports whether a match result names more than one destination.
func Ambiguous(matches []Rule) bool {
	return len(matches) > 1
}
