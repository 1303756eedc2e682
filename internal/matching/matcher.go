// Package matching decides whether an outgoing request satisfies a registration.
package matching

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
)

// Matcher reports whether a request matches a registration.
type Matcher interface {
	Match(ctx context.Context, r *http.Request) (bool, error)
}

// RequestPredicate is a caller-supplied predicate over the whole request.
type RequestPredicate func(ctx context.Context, r *http.Request) (bool, error)

// ContentPredicate is a predicate over the raw request body.
type ContentPredicate func(ctx context.Context, body []byte) (bool, error)

// Comparer compares two canonical strings.
type Comparer func(a, b string) bool

// Ordinal compares strings byte for byte.
func Ordinal(a, b string) bool {
	return a == b
}

// IgnoreCase compares strings after Unicode case folding.
func IgnoreCase(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Fold returns the case-folded form of s. A new Caser is used per call since
// Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Criteria holds the structural match criteria of a registration.
type Criteria struct {
	Method string
	URL    URLCriteria
	// Headers must all be present on the request with equal value lists.
	Headers http.Header
	// Content is an optional additional filter over the request body.
	Content ContentPredicate
}

// StructuralMatcher matches on method, canonical URL, headers and content.
type StructuralMatcher struct {
	criteria Criteria
	expected string
	compare  Comparer
}

var _ Matcher = (*StructuralMatcher)(nil)

// NewStructuralMatcher creates a matcher for the given criteria. A nil
// comparer means Ordinal.
func NewStructuralMatcher(c Criteria, compare Comparer) *StructuralMatcher {
	if compare == nil {
		compare = Ordinal
	}
	return &StructuralMatcher{
		criteria: c,
		expected: c.URL.Canonical(),
		compare:  compare,
	}
}

// Expected returns the canonical URL string requests are compared against.
func (m *StructuralMatcher) Expected() string {
	return m.expected
}

// Match implements Matcher.
func (m *StructuralMatcher) Match(ctx context.Context, r *http.Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if !MatchMethod(m.criteria.Method, r.Method) {
		return false, nil
	}

	if !m.compare(m.expected, m.criteria.URL.CanonicalRequest(r)) {
		return false, nil
	}

	if len(m.criteria.Headers) > 0 && !MatchHeaders(m.criteria.Headers, r.Header) {
		return false, nil
	}

	if m.criteria.Content == nil {
		return true, nil
	}

	body, err := ReadBody(r)
	if err != nil {
		return false, err
	}
	return m.criteria.Content(ctx, body)
}

// DelegatingMatcher hands matching to a caller-supplied predicate.
type DelegatingMatcher struct {
	predicate RequestPredicate
}

var _ Matcher = (*DelegatingMatcher)(nil)

// NewDelegatingMatcher wraps predicate as a Matcher.
func NewDelegatingMatcher(predicate RequestPredicate) *DelegatingMatcher {
	return &DelegatingMatcher{predicate: predicate}
}

// Match implements Matcher.
func (m *DelegatingMatcher) Match(ctx context.Context, r *http.Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return m.predicate(ctx, r)
}

// MatchMethod checks if the request method matches.
func MatchMethod(expected, actual string) bool {
	return strings.EqualFold(expected, actual)
}
