// Package matching decides whether an outgoing request satisfies a registration.
//
// Two matcher variants implement the Matcher interface:
//
//   - StructuralMatcher: compares method, a canonical URL string (with ignored
//     host, path or query components replaced by a wildcard marker), request
//     headers, and optionally the request body through a ContentPredicate
//   - DelegatingMatcher: hands the whole request to a caller-supplied predicate
//     and consults nothing else
//
// Content predicates shipped with the package:
//
//   - FormContent: the body, parsed as a URL-encoded form, must contain every
//     expected key/value pair (extra fields are allowed)
//   - JSONPathMatcher: JSONPath conditions evaluated with ojg
//   - ExpressionMatcher: an expr-lang program over the request, usable as a
//     whole-request predicate
//
// Match keys identify "the same registration" for overwrite and removal. They
// are built by StructuralKey and CustomKey.
package matching
