package matching

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// StructuralKey derives the match key of a structural registration from its
// method, canonical URL, request headers and content matcher identity.
func StructuralKey(method, canonicalURL string, headers http.Header, contentID string) string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(method))
	sb.WriteByte('|')
	sb.WriteString(canonicalURL)
	if len(headers) > 0 {
		sb.WriteString("|h:")
		sb.WriteString(strconv.FormatUint(HeaderHash(headers), 16))
	}
	if contentID != "" {
		sb.WriteString("|c:")
		sb.WriteString(contentID)
	}
	return sb.String()
}

// CustomKey derives the match key of a registration that uses a custom
// request matcher.
func CustomKey(identity string) string {
	return "custom|" + identity
}

// HeaderHash hashes header names and their joined values independently of
// map iteration order.
func HeaderHash(headers http.Header) uint64 {
	joined := make(map[string]string, len(headers))
	names := make([]string, 0, len(headers))
	for name, values := range headers {
		canonical := http.CanonicalHeaderKey(name)
		joined[canonical] = strings.Join(values, HeaderValueSeparator)
		names = append(names, canonical)
	}
	sort.Strings(names)

	d := xxhash.New()
	for _, name := range names {
		_, _ = d.WriteString(name)
		_, _ = d.WriteString("=")
		_, _ = d.WriteString(joined[name])
		_, _ = d.WriteString("\n")
	}
	return d.Sum64()
}
