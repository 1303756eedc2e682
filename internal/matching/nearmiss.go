package matching

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// FieldResult describes whether a single criterion matched the request.
type FieldResult struct {
	Field    string
	Matched  bool
	Expected string
	Actual   string
}

// NearMiss is the per-field comparison of a registration's criteria with a
// request that did not match it.
type NearMiss struct {
	Fields          []FieldResult
	MatchPercentage int
	Reason          string
}

// Breakdown evaluates every criterion against the request without
// short-circuiting. The content predicate is only evaluated when the request
// can be read. Only criteria the registration specifies are included.
func Breakdown(ctx context.Context, c Criteria, compare Comparer, r *http.Request) NearMiss {
	if compare == nil {
		compare = Ordinal
	}
	u := r.URL
	var fields []FieldResult
	add := func(field, expected, actual string, matched bool) {
		fields = append(fields, FieldResult{Field: field, Matched: matched, Expected: expected, Actual: actual})
	}
	same := func(field, expected, actual string) {
		add(field, expected, actual, compare(expected, actual))
	}

	add("method", c.Method, r.Method, MatchMethod(c.Method, r.Method))
	same("scheme", strings.ToLower(c.URL.Scheme), strings.ToLower(u.Scheme))

	if !c.URL.IgnoreHost {
		host := u.Hostname()
		if host == "" {
			host = hostOnly(r.Host)
		}
		same("host", strings.ToLower(c.URL.Host), strings.ToLower(host))
	}
	if c.URL.HasCustomPort && c.URL.Port != NoPort {
		same("port", strconv.Itoa(c.URL.Port), EffectivePort(u.Scheme, u.Port()))
	}
	if !c.URL.IgnorePath {
		same("path", normalizePath(c.URL.Path), normalizePath(u.Path))
	}
	if !c.URL.IgnoreQuery {
		same("query", c.URL.Query, u.RawQuery)
	}

	names := make([]string, 0, len(c.Headers))
	for name := range c.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		actual := strings.Join(r.Header.Values(name), HeaderValueSeparator)
		if actual == "" {
			actual = "(missing)"
		}
		add("header "+name, strings.Join(c.Headers[name], HeaderValueSeparator), actual,
			MatchHeader(name, c.Headers[name], r.Header))
	}

	if c.Content != nil {
		matched := false
		if body, err := ReadBody(r); err == nil {
			matched, _ = c.Content(ctx, body)
		}
		add("content", "(content matcher)", "", matched)
	}

	result := NearMiss{Fields: fields, Reason: GenerateReason(fields)}
	if len(fields) > 0 {
		n := 0
		for _, f := range fields {
			if f.Matched {
				n++
			}
		}
		result.MatchPercentage = n * 100 / len(fields)
	}
	return result
}

// GenerateReason creates a human-readable explanation of why a registration
// partially matched but ultimately failed.
func GenerateReason(fields []FieldResult) string {
	if len(fields) == 0 {
		return "no fields to compare"
	}

	var matched []string
	var firstMismatch *FieldResult

	for i := range fields {
		if fields[i].Matched {
			matched = append(matched, fields[i].Field)
		} else if firstMismatch == nil {
			firstMismatch = &fields[i]
		}
	}

	if firstMismatch == nil {
		return "all specified fields matched"
	}

	if len(matched) == 0 {
		return formatMismatch(firstMismatch)
	}
	return joinFields(matched) + " matched, but " + formatMismatch(firstMismatch)
}

func formatMismatch(f *FieldResult) string {
	if f.Field == "content" {
		return "content matcher did not match"
	}
	return f.Field + " expected " + strconv.Quote(f.Expected) + ", got " + strconv.Quote(f.Actual)
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}
