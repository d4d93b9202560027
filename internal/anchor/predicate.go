package anchor

import (
	"regexp"
	"strings"
)

// Predicate reports whether a run's text identifies an anchor. The text
// passed in is trimmed and upper-cased.
type Predicate func(text string) bool

// Normalize prepares run text for matching.
func Normalize(text string) string {
	return strings.ToUpper(strings.TrimSpace(text))
}

// StartsWith matches text beginning with prefix, ignoring case.
func StartsWith(prefix string) Predicate {
	p := Normalize(prefix)
	return func(text string) bool { return strings.HasPrefix(text, p) }
}

// Contains matches text containing sub, ignoring case.
func Contains(sub string) Predicate {
	s := Normalize(sub)
	return func(text string) bool { return strings.Contains(text, s) }
}

// Equals matches text equal to want, ignoring case and surrounding space.
func Equals(want string) Predicate {
	w := Normalize(want)
	return func(text string) bool { return text == w }
}

// Matches matches text against a case-insensitive regular expression.
// It panics if expr does not compile, like regexp.MustCompile.
func Matches(expr string) Predicate {
	re := regexp.MustCompile("(?i)" + expr)
	return re.MatchString
}

// AllOf matches when every predicate matches.
func AllOf(preds ...Predicate) Predicate {
	return func(text string) bool {
		for _, p := range preds {
			if !p(text) {
				return false
			}
		}
		return true
	}
}

// AnyOf matches when at least one predicate matches.
func AnyOf(preds ...Predicate) Predicate {
	return func(text string) bool {
		for _, p := range preds {
			if p(text) {
				return true
			}
		}
		return false
	}
}

var spaces = regexp.MustCompile(`\s+`)

// CollapseSpaces applies p to text with internal whitespace squeezed to a
// single space, so "L  R  PEREIRA" matches "L R PEREIRA".
func CollapseSpaces(p Predicate) Predicate {
	return func(text string) bool { return p(spaces.ReplaceAllString(text, " ")) }
}
