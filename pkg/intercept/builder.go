package intercept

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/httpintercept/internal/id"
	"github.com/getmockd/httpintercept/internal/matching"
)

// Builder builds registrations using a fluent API.
//
// A Builder stays mutable: each Build (or Options.Register) captures a
// snapshot, so one builder can register several progressively modified
// interceptions. A Builder is not safe for concurrent use.
type Builder struct {
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
	responseHeaders http.Header
	contentHeaders  http.Header
	contentBytes    ContentFunc
	contentStream   StreamFunc
	mediaType       string

	latency       time.Duration
	onIntercepted InterceptionFunc
	priority      *int

	err error // First error encountered during building

	// revision counts mutations; registeredKey is only valid for deregistration
	// while revision == registeredRevision.
	revision           uint64
	registeredKey      string
	registeredRevision uint64
}

// NewBuilder returns a builder that, unchanged, matches GET http://localhost/
// and responds 200 with an empty application/json body.
func NewBuilder() *Builder {
	return &Builder{
		method: http.MethodGet,
		url: matching.URLCriteria{
			Scheme: "http",
			Host:   "localhost",
			Port:   matching.NoPort,
			Path:   "/",
		},
		statusCode: http.StatusOK,
		mediaType:  DefaultMediaType,
	}
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (b *Builder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// touch marks the builder as changed.
func (b *Builder) touch() *Builder {
	b.revision++
	return b
}

// Err returns any error encountered during building.
func (b *Builder) Err() error {
	return b.err
}

// ForMethod sets the HTTP method to match. An empty method is an error.
func (b *Builder) ForMethod(method string) *Builder {
	if strings.TrimSpace(method) == "" {
		b.setError(invalidArgument("ForMethod: method cannot be empty"))
		return b
	}
	b.method = strings.ToUpper(method)
	return b.touch()
}

// ForGet is a convenience method for ForMethod(http.MethodGet).
func (b *Builder) ForGet() *Builder { return b.ForMethod(http.MethodGet) }

// ForPost is a convenience method for ForMethod(http.MethodPost).
func (b *Builder) ForPost() *Builder { return b.ForMethod(http.MethodPost) }

// ForPut is a convenience method for ForMethod(http.MethodPut).
func (b *Builder) ForPut() *Builder { return b.ForMethod(http.MethodPut) }

// ForPatch is a convenience method for ForMethod(http.MethodPatch).
func (b *Builder) ForPatch() *Builder { return b.ForMethod(http.MethodPatch) }

// ForDelete is a convenience method for ForMethod(http.MethodDelete).
func (b *Builder) ForDelete() *Builder { return b.ForMethod(http.MethodDelete) }

// ForURL replaces all URL criteria with those of u, which must be absolute.
// Ignore flags are reset. A URL with an explicit port, even the scheme's
// default such as https://host:443/, behaves like calling ForPort with it:
// requests must then use that effective port. Without a port the port is
// not matched.
func (b *Builder) ForURL(u *url.URL) *Builder {
	c, err := criteriaFromURL(u)
	if err != nil {
		b.setError(fmt.Errorf("ForURL: %w", err))
		return b
	}
	b.url = c
	return b.touch()
}

// ForURLString parses rawURL and calls ForURL.
func (b *Builder) ForURLString(rawURL string) *Builder {
	if rawURL == "" {
		b.setError(invalidArgument("ForURLString: url cannot be empty"))
		return b
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		b.setError(fmt.Errorf("%w: ForURLString: %v", ErrInvalidArgument, err))
		return b
	}
	return b.ForURL(u)
}

// ForScheme sets the URL scheme. An empty scheme resets it to http.
func (b *Builder) ForScheme(scheme string) *Builder {
	if scheme == "" {
		scheme = "http"
	}
	b.url.Scheme = strings.ToLower(scheme)
	return b.touch()
}

// ForHTTP is a convenience method for ForScheme("http").
func (b *Builder) ForHTTP() *Builder { return b.ForScheme("http") }

// ForHTTPS is a convenience method for ForScheme("https").
func (b *Builder) ForHTTPS() *Builder { return b.ForScheme("https") }

// ForHost sets the host name and stops ignoring the host.
func (b *Builder) ForHost(host string) *Builder {
	b.url.Host = host
	b.url.IgnoreHost = false
	return b.touch()
}

// ForPort sets a custom port. Requests then only match when their port
// (explicit, or the scheme default) equals it. -1 removes the custom port.
func (b *Builder) ForPort(port int) *Builder {
	if port == matching.NoPort {
		b.url.Port = matching.NoPort
		b.url.HasCustomPort = false
		return b.touch()
	}
	if port < 0 || port > 65535 {
		b.setError(invalidArgument("ForPort: port %d out of range", port))
		return b
	}
	b.url.Port = port
	b.url.HasCustomPort = true
	return b.touch()
}

// ForPath sets the URL path and stops ignoring the path.
func (b *Builder) ForPath(path string) *Builder {
	b.url.Path = path
	b.url.IgnorePath = false
	return b.touch()
}

// ForQuery sets the raw query string, with or without a leading '?', and
// stops ignoring the query.
func (b *Builder) ForQuery(query string) *Builder {
	b.url.Query = strings.TrimPrefix(query, "?")
	b.url.IgnoreQuery = false
	return b.touch()
}

// IgnoringHost controls whether any host matches.
func (b *Builder) IgnoringHost(ignore bool) *Builder {
	b.url.IgnoreHost = ignore
	return b.touch()
}

// IgnoringPath controls whether any path matches.
func (b *Builder) IgnoringPath(ignore bool) *Builder {
	b.url.IgnorePath = ignore
	return b.touch()
}

// IgnoringQuery controls whether any query string matches.
func (b *Builder) IgnoringQuery(ignore bool) *Builder {
	b.url.IgnoreQuery = ignore
	return b.touch()
}

// ForRequestHeader requires the request to carry name with exactly these
// values, in order. No values removes the requirement.
func (b *Builder) ForRequestHeader(name string, values ...string) *Builder {
	b.requestHeaders = setHeader(b.requestHeaders, name, values)
	return b.touch()
}

// ForRequestHeaders replaces all required request headers. nil clears them.
func (b *Builder) ForRequestHeaders(headers http.Header) *Builder {
	b.requestHeaders = canonicalHeaders(headers)
	return b.touch()
}

// WithResponseHeader sets a response header. No values removes it.
func (b *Builder) WithResponseHeader(name string, values ...string) *Builder {
	b.responseHeaders = setHeader(b.responseHeaders, name, values)
	return b.touch()
}

// WithResponseHeaders replaces all response headers. nil clears them.
func (b *Builder) WithResponseHeaders(headers http.Header) *Builder {
	b.responseHeaders = canonicalHeaders(headers)
	return b.touch()
}

// WithContentHeader sets a content header such as Content-Language or
// Content-Type. A Content-Type set here wins over the media type.
func (b *Builder) WithContentHeader(name string, values ...string) *Builder {
	b.contentHeaders = setHeader(b.contentHeaders, name, values)
	return b.touch()
}

// WithContentHeaders replaces all content headers. nil clears them.
func (b *Builder) WithContentHeaders(headers http.Header) *Builder {
	b.contentHeaders = canonicalHeaders(headers)
	return b.touch()
}

// WithContentFunc sets a context-aware byte content factory. It clears any
// stream content; nil clears all content.
func (b *Builder) WithContentFunc(fn ContentFunc) *Builder {
	b.contentBytes = fn
	b.contentStream = nil
	return b.touch()
}

// WithContent sets a byte content factory.
func (b *Builder) WithContent(fn func() ([]byte, error)) *Builder {
	if fn == nil {
		return b.WithContentFunc(nil)
	}
	return b.WithContentFunc(func(context.Context) ([]byte, error) { return fn() })
}

// WithContentBytes responds with a copy of data. nil clears all content.
func (b *Builder) WithContentBytes(data []byte) *Builder {
	if data == nil {
		return b.WithContentFunc(nil)
	}
	snapshot := append([]byte(nil), data...)
	return b.WithContentFunc(func(context.Context) ([]byte, error) { return snapshot, nil })
}

// WithContentString responds with s.
func (b *Builder) WithContentString(s string) *Builder {
	return b.WithContentBytes([]byte(s))
}

// WithJSONContent responds with v marshaled as JSON and sets the media type
// to application/json.
func (b *Builder) WithJSONContent(v any) *Builder {
	data, err := json.Marshal(v)
	if err != nil {
		b.setError(fmt.Errorf("WithJSONContent: failed to marshal content: %w", err))
		return b
	}
	return b.WithContentBytes(data).WithMediaType("application/json")
}

// WithFormContent responds with values URL-encoded and sets the media type
// to application/x-www-form-urlencoded.
func (b *Builder) WithFormContent(values url.Values) *Builder {
	if values == nil {
		return b.WithContentFunc(nil)
	}
	return b.WithContentString(values.Encode()).WithMediaType("application/x-www-form-urlencoded")
}

// WithContentStreamFunc sets a context-aware stream content factory. It
// clears any byte content; nil clears all content.
func (b *Builder) WithContentStreamFunc(fn StreamFunc) *Builder {
	b.contentStream = fn
	b.contentBytes = nil
	return b.touch()
}

// WithContentStream sets a stream content factory.
func (b *Builder) WithContentStream(fn func() (io.ReadCloser, error)) *Builder {
	if fn == nil {
		return b.WithContentStreamFunc(nil)
	}
	return b.WithContentStreamFunc(func(context.Context) (io.ReadCloser, error) { return fn() })
}

// WithMediaType sets the response Content-Type used when no Content-Type
// content header is configured. Empty restores the default.
func (b *Builder) WithMediaType(mediaType string) *Builder {
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	b.mediaType = mediaType
	return b.touch()
}

// WithStatus sets the response status code. Default is 200 (OK).
func (b *Builder) WithStatus(code int) *Builder {
	if code < 100 || code > 999 {
		b.setError(invalidArgument("WithStatus: invalid status code %d", code))
		return b
	}
	b.statusCode = code
	return b.touch()
}

// WithReasonPhrase sets the reason phrase of the status line. Empty uses
// the standard text for the status code.
func (b *Builder) WithReasonPhrase(reason string) *Builder {
	b.reasonPhrase = reason
	return b.touch()
}

// WithProtocolVersion sets the response protocol, such as "HTTP/2.0", "2.0"
// or "1.0". Empty restores HTTP/1.1.
func (b *Builder) WithProtocolVersion(version string) *Builder {
	if version == "" {
		b.proto = ""
		return b.touch()
	}
	proto, _, _, err := parseProtocolVersion(version)
	if err != nil {
		b.setError(err)
		return b
	}
	b.proto = proto
	return b.touch()
}

// WithPriority sets the registration priority. Lower values win; a
// registration with a priority is always tried before one without.
func (b *Builder) WithPriority(priority int) *Builder {
	b.priority = &priority
	return b.touch()
}

// WithoutPriority removes the priority.
func (b *Builder) WithoutPriority() *Builder {
	b.priority = nil
	return b.touch()
}

// WithLatency delays the response by d. The delay ends early, with the
// context's error, if the request context is done.
func (b *Builder) WithLatency(d time.Duration) *Builder {
	if d < 0 {
		d = 0
	}
	b.latency = d
	return b.touch()
}

// WithInterceptionFunc sets the canonical interception callback. nil clears it.
func (b *Builder) WithInterceptionFunc(fn InterceptionFunc) *Builder {
	b.onIntercepted = fn
	return b.touch()
}

// InterceptionFunc returns the interception callback currently set, or nil.
func (b *Builder) InterceptionFunc() InterceptionFunc {
	return b.onIntercepted
}

// WithInterceptionCallback runs fn for every intercepted request.
func (b *Builder) WithInterceptionCallback(fn func(*http.Request)) *Builder {
	return b.WithInterceptionFunc(fromAction(fn))
}

// WithInterceptionCallbackContext runs fn for every intercepted request. An
// error from fn fails the request.
func (b *Builder) WithInterceptionCallbackContext(fn func(context.Context, *http.Request) error) *Builder {
	return b.WithInterceptionFunc(fromActionContext(fn))
}

// WithInterceptionPredicate runs fn for every matched request; returning
// false suppresses interception for that request.
func (b *Builder) WithInterceptionPredicate(fn func(*http.Request) bool) *Builder {
	return b.WithInterceptionFunc(fromPredicate(fn))
}

// WithInterceptionPredicateContext is the context-aware form of
// WithInterceptionPredicate.
func (b *Builder) WithInterceptionPredicateContext(fn func(context.Context, *http.Request) (bool, error)) *Builder {
	if fn == nil {
		return b.WithInterceptionFunc(nil)
	}
	return b.WithInterceptionFunc(fn)
}

// ForRequestContext replaces all structural criteria with fn. nil clears the
// custom matcher. Each call gives the matcher a new identity, so registering
// the same builder again overwrites the same entry.
func (b *Builder) ForRequestContext(fn func(context.Context, *http.Request) (bool, error)) *Builder {
	if fn == nil {
		b.custom = nil
		b.customID = ""
		return b.touch()
	}
	b.custom = fn
	b.customID = id.Matcher()
	return b.touch()
}

// ForRequest replaces all structural criteria with fn.
func (b *Builder) ForRequest(fn func(*http.Request) bool) *Builder {
	if fn == nil {
		return b.ForRequestContext(nil)
	}
	return b.ForRequestContext(func(_ context.Context, r *http.Request) (bool, error) {
		return fn(r), nil
	})
}

// ForExpression replaces all structural criteria with an expr-lang
// expression over the request. See matching.ExpressionMatcher for the
// available variables. Empty clears the custom matcher.
func (b *Builder) ForExpression(source string) *Builder {
	if source == "" {
		return b.ForRequestContext(nil)
	}
	m, err := matching.CompileExpression(source)
	if err != nil {
		b.setError(fmt.Errorf("%w: ForExpression: %v", ErrInvalidArgument, err))
		return b
	}
	b.custom = m.Match
	b.customID = "expr:" + source
	return b.touch()
}

// ForContent adds a predicate over the request body on top of the
// structural criteria. nil clears it.
func (b *Builder) ForContent(fn func(ctx context.Context, body []byte) (bool, error)) *Builder {
	if fn == nil {
		b.content = nil
		b.contentID = ""
		return b.touch()
	}
	b.content = fn
	b.contentID = id.Matcher()
	return b.touch()
}

// ForFormContent requires the body to be a URL-encoded form containing
// every expected key/value pair. Extra fields are allowed.
func (b *Builder) ForFormContent(expected map[string]string) *Builder {
	if expected == nil {
		return b.ForContent(nil)
	}
	values := make(url.Values, len(expected))
	for k, v := range expected {
		values.Set(k, v)
	}
	b.content = matching.FormContent(expected)
	b.contentID = "form:" + values.Encode()
	return b.touch()
}

// ForJSONContent requires the body to be JSON satisfying every JSONPath
// condition.
func (b *Builder) ForJSONContent(conditions map[string]any) *Builder {
	if conditions == nil {
		return b.ForContent(nil)
	}
	m, err := matching.NewJSONPathMatcher(conditions)
	if err != nil {
		b.setError(fmt.Errorf("%w: ForJSONContent: %v", ErrInvalidArgument, err))
		return b
	}
	encoded, err := json.Marshal(conditions)
	if err != nil {
		b.setError(fmt.Errorf("%w: ForJSONContent: %v", ErrInvalidArgument, err))
		return b
	}
	b.content = m.Match
	b.contentID = "jsonpath:" + string(encoded)
	return b.touch()
}

// Build returns an immutable snapshot of the current configuration. Later
// changes to the builder do not affect the returned registration.
func (b *Builder) Build() (*Registration, error) {
	if b.err != nil {
		return nil, b.err
	}

	proto, major, minor := "HTTP/1.1", 1, 1
	if b.proto != "" {
		var err error
		if proto, major, minor, err = parseProtocolVersion(b.proto); err != nil {
			return nil, err
		}
	}

	var priority *int
	if b.priority != nil {
		p := *b.priority
		priority = &p
	}

	return &Registration{
		id:              id.Registration(),
		method:          b.method,
		url:             b.url,
		requestHeaders:  b.requestHeaders.Clone(),
		content:         b.content,
		contentID:       b.contentID,
		custom:          b.custom,
		customID:        b.customID,
		statusCode:      b.statusCode,
		reasonPhrase:    b.reasonPhrase,
		proto:           proto,
		protoMajor:      major,
		protoMinor:      minor,
		responseHeaders: b.responseHeaders.Clone(),
		contentHeaders:  b.contentHeaders.Clone(),
		contentBytes:    b.contentBytes,
		contentStream:   b.contentStream,
		mediaType:       b.mediaType,
		latency:         b.latency,
		onIntercepted:   b.onIntercepted,
		priority:        priority,
	}, nil
}

// criteriaFromURL converts an absolute URL into exact-match URL criteria.
func criteriaFromURL(u *url.URL) (matching.URLCriteria, error) {
	if u == nil {
		return matching.URLCriteria{}, invalidArgument("url cannot be nil")
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return matching.URLCriteria{}, invalidArgument("%q is not an absolute URL", u.String())
	}

	c := matching.URLCriteria{
		Scheme: strings.ToLower(u.Scheme),
		Host:   u.Hostname(),
		Port:   matching.NoPort,
		Path:   u.Path,
		Query:  u.RawQuery,
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return matching.URLCriteria{}, invalidArgument("invalid port %q", p)
		}
		c.Port = port
		c.HasCustomPort = true
	}
	return c, nil
}

func parseProtocolVersion(version string) (string, int, int, error) {
	proto := version
	if !strings.HasPrefix(strings.ToUpper(proto), "HTTP/") {
		proto = "HTTP/" + proto
	}
	proto = "HTTP/" + proto[len("HTTP/"):]
	if !strings.Contains(proto, ".") {
		proto += ".0"
	}
	major, minor, ok := http.ParseHTTPVersion(proto)
	if !ok {
		return "", 0, 0, invalidArgument("WithProtocolVersion: invalid protocol version %q", version)
	}
	return proto, major, minor, nil
}

func setHeader(h http.Header, name string, values []string) http.Header {
	if len(values) == 0 {
		if h != nil {
			h.Del(name)
		}
		return h
	}
	if h == nil {
		h = make(http.Header)
	}
	h[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	return h
}

func canonicalHeaders(headers http.Header) http.Header {
	if headers == nil {
		return nil
	}
	out := make(http.Header, len(headers))
	for name, values := range headers {
		out[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	return out
}
