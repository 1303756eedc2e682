package intercept

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/getmockd/httpintercept/internal/matching"
)

// DefaultMediaType is the Content-Type of responses unless configured otherwise.
const DefaultMediaType = "application/json"

// ContentFunc produces response content as bytes.
type ContentFunc func(ctx context.Context) ([]byte, error)

// StreamFunc produces response content as a stream. The interceptor hands
// the stream to the response body; the caller closes it.
type StreamFunc func(ctx context.Context) (io.ReadCloser, error)

// Registration is an immutable snapshot of one configured interception,
// produced by Builder.Build.
type Registration struct {
	id string

	method         string
	url            matching.URLCriteria
	requestHeaders http.Header
	content        matching.ContentPredicate
	contentID      string
	custom         matching.RequestPredicate
	customID       string

	statusCode      int
	reasonPhrase    string
	proto           string
	protoMajor      int
	protoMinor      int
	responseHeaders http.Header
	contentHeaders  http.Header
	contentBytes    ContentFunc
	contentStream   StreamFunc
	mediaType       string

	latency       time.Duration
	onIntercepted InterceptionFunc
	priority      *int
}

// ID returns the unique identifier assigned when the registration was built.
func (r *Registration) ID() string { return r.id }

// Method returns the HTTP method to match.
func (r *Registration) Method() string { return r.method }

// URL returns the canonical URL requests are compared with, using "*" for
// ignored components. It is empty for registrations with a custom matcher.
func (r *Registration) URL() string {
	if r.custom != nil {
		return ""
	}
	return r.url.Canonical()
}

// HasCustomMatcher reports whether matching is delegated to a custom predicate.
func (r *Registration) HasCustomMatcher() bool { return r.custom != nil }

// StatusCode returns the response status code.
func (r *Registration) StatusCode() int { return r.statusCode }

// MediaType returns the configured response media type.
func (r *Registration) MediaType() string { return r.mediaType }

// Priority returns the priority and whether one was set.
func (r *Registration) Priority() (int, bool) {
	if r.priority == nil {
		return 0, false
	}
	return *r.priority, true
}

// RequestHeaders returns a copy of the request headers to match.
func (r *Registration) RequestHeaders() http.Header { return r.requestHeaders.Clone() }

func (r *Registration) newMatcher(compare matching.Comparer) matching.Matcher {
	if r.custom != nil {
		return matching.NewDelegatingMatcher(r.custom)
	}
	return matching.NewStructuralMatcher(r.criteria(), compare)
}

func (r *Registration) criteria() matching.Criteria {
	return matching.Criteria{
		Method:  r.method,
		URL:     r.url,
		Headers: r.requestHeaders,
		Content: r.content,
	}
}

// key derives the match key. Custom matchers are keyed by their identity.
func (r *Registration) key() string {
	if r.custom != nil {
		return matching.CustomKey(r.customID)
	}
	return matching.StructuralKey(r.method, r.url.Canonical(), r.requestHeaders, r.contentID)
}
