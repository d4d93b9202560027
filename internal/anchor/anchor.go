// Package anchor locates template fields by matching text runs.
//
// A Query names a field and carries a predicate plus an ordered list of
// fallback queries. Resolution returns the first run matching the primary
// predicate; only when none does are the fallbacks tried, in order.
package anchor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/farmacob/cobtool/internal/layout"
)

// Query describes how to find one field in a page's text runs.
type Query struct {
	// Name identifies the field in errors and logs.
	Name string
	// Match selects the run that carries the field.
	Match Predicate
	// Fallbacks are tried in order when Match finds nothing.
	Fallbacks []Query
	// LinesAbove is used by fallback queries: the field is written this many
	// lines above the matched run instead of over it. Zero means over it.
	LinesAbove float64
}

// Match is a resolved query.
type Match struct {
	Run   layout.TextRun
	Query Query
	// Fallback is the index into the primary query's Fallbacks that matched,
	// or -1 for the primary predicate.
	Fallback int
}

// IsFallback reports whether the match came from a fallback query.
func (m Match) IsFallback() bool { return m.Fallback >= 0 }

// ErrNotFound means no run matched a query or any of its fallbacks.
var ErrNotFound = errors.New("anchor not found")

// NotFoundError names the field that could not be located.
type NotFoundError struct {
	Field string
	Tried []string
}

func (e *NotFoundError) Error() string {
	if len(e.Tried) > 1 {
		return fmt.Sprintf("anchor %q not found (tried %s)", e.Field, strings.Join(e.Tried, ", "))
	}
	return fmt.Sprintf("anchor %q not found", e.Field)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Find resolves q against runs in extraction order.
func Find(runs []layout.TextRun, q Query) (Match, error) {
	if run, ok := first(runs, q.Match); ok {
		return Match{Run: run, Query: q, Fallback: -1}, nil
	}
	for i, fb := range q.Fallbacks {
		if run, ok := first(runs, fb.Match); ok {
			return Match{Run: run, Query: fb, Fallback: i}, nil
		}
	}

	tried := []string{q.Name}
	for _, fb := range q.Fallbacks {
		tried = append(tried, fb.Name)
	}
	return Match{}, &NotFoundError{Field: q.Name, Tried: tried}
}

// FindAll resolves every query, stopping at the first failure.
func FindAll(runs []layout.TextRun, queries ...Query) ([]Match, error) {
	out := make([]Match, 0, len(queries))
	for _, q := range queries {
		m, err := Find(runs, q)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func first(runs []layout.TextRun, p Predicate) (layout.TextRun, bool) {
	if p == nil {
		return layout.TextRun{}, false
	}
	for _, r := range runs {
		if p(Normalize(r.Text)) {
			return r, true
		}
	}
	return layout.TextRun{}, false
}

// Pair is two queries whose target fields may be exchanged per template.
// Some stock templates print the company line where the tax ID belongs and
// the other way round; swapping the queries keeps each value on its label.
type Pair struct {
	First  Query
	Second Query
}

// Swapped returns the pair with the two primary predicates exchanged.
// Names, fallbacks and LinesAbove stay with their field, so a fallback
// placement keeps the company above the tax ID.
func (p Pair) Swapped() Pair {
	a, b := p.First, p.Second
	a.Match, b.Match = p.Second.Match, p.First.Match
	return Pair{First: a, Second: b}
}
