package matching

import (
	"net/http"
	"strings"
)

// HeaderValueSeparator joins multiple header values for comparison.
const HeaderValueSeparator = ";"

// MatchHeader checks that the request carries name with exactly the expected
// values, in order. Header names are case-insensitive.
func MatchHeader(name string, expected []string, headers http.Header) bool {
	actual := headers.Values(name)
	if len(actual) == 0 {
		return false
	}
	return strings.Join(actual, HeaderValueSeparator) == strings.Join(expected, HeaderValueSeparator)
}

// MatchHeaders checks if all specified headers match.
// Returns true only if ALL headers match.
func MatchHeaders(expected http.Header, headers http.Header) bool {
	for name, values := range expected {
		if !MatchHeader(name, values, headers) {
			return false
		}
	}
	return true
}
