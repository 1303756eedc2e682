package intercepttest

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/httpintercept/pkg/intercept"
	"github.com/getmockd/httpintercept/pkg/logging"
)

// Interceptor is a test helper around an intercept.Options.
type Interceptor struct {
	t        testing.TB
	options  *intercept.Options
	requests []RequestLog
	mu       sync.RWMutex
}

// New creates an Interceptor for t. Unmatched requests fail with
// intercept.ErrNotIntercepted unless opts override it. Logs go to t.Log at
// debug level.
func New(t testing.TB, opts ...intercept.Option) *Interceptor {
	t.Helper()

	it := &Interceptor{t: t}
	all := []intercept.Option{
		intercept.WithThrowOnMissingRegistration(true),
		intercept.WithLogger(logging.NewTB(t, logging.LevelDebug)),
		intercept.WithOnSend(it.record),
	}
	it.options = intercept.NewOptions(append(all, opts...)...)
	return it
}

func (it *Interceptor) record(r *http.Request) error {
	entry := RequestLog{
		Method:      r.Method,
		URL:         r.URL.String(),
		Host:        r.URL.Host,
		Path:        r.URL.Path,
		QueryString: r.URL.RawQuery,
		Headers:     make(map[string]string, len(r.Header)),
	}
	for k, v := range r.Header {
		if len(v) > 0 {
			entry.Headers[k] = v[0]
		}
	}
	if r.GetBody != nil {
		if rc, err := r.GetBody(); err == nil {
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			entry.Body = string(data)
		}
	}

	it.mu.Lock()
	it.requests = append(it.requests, entry)
	it.mu.Unlock()
	return nil
}

// Options returns the underlying registry.
func (it *Interceptor) Options() *intercept.Options {
	return it.options
}

// Client returns an *http.Client whose requests are intercepted.
func (it *Interceptor) Client() *http.Client {
	return it.options.Client()
}

// Transport returns the intercepting transport, falling through to inner.
func (it *Interceptor) Transport(inner http.RoundTripper) http.RoundTripper {
	return it.options.Transport(inner)
}

// Register registers builders, failing the test on error.
func (it *Interceptor) Register(builders ...*intercept.Builder) *Interceptor {
	it.t.Helper()
	if err := it.options.Register(builders...); err != nil {
		it.t.Fatalf("failed to register interception: %v", err)
	}
	return it
}

// Scope begins a registration scope that is closed when the test ends.
func (it *Interceptor) Scope() *intercept.Scope {
	it.t.Helper()
	scope := it.options.BeginScope()
	it.t.Cleanup(func() { _ = scope.Close() })
	return scope
}

// Reset removes all registrations and recorded requests.
func (it *Interceptor) Reset() {
	it.options.Clear()
	it.mu.Lock()
	it.requests = nil
	it.mu.Unlock()
}

// Requests returns the recorded requests in the order they were sent.
func (it *Interceptor) Requests() []RequestLog {
	it.mu.RLock()
	defer it.mu.RUnlock()
	out := make([]RequestLog, len(it.requests))
	copy(out, it.requests)
	return out
}

// LastRequest returns a copy of the most recent request. It fails the test
// if none was sent.
func (it *Interceptor) LastRequest() *RequestLog {
	it.t.Helper()
	it.mu.RLock()
	defer it.mu.RUnlock()
	if len(it.requests) == 0 {
		it.t.Fatalf("no requests were sent")
		return nil
	}
	last := it.requests[len(it.requests)-1]
	return &last
}

// AssertCalled asserts that an endpoint was called at least once.
func (it *Interceptor) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	count := it.countCalls(method, path)
	if count == 0 {
		t.Errorf("expected %s %s to be called, but it was not called%s", method, path, it.summary())
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (it *Interceptor) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	count := it.countCalls(method, path)
	if count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (it *Interceptor) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	count := it.countCalls(method, path)
	if count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

// countCalls counts how many times a method/path combination was called.
func (it *Interceptor) countCalls(method, path string) int {
	count := 0
	for _, r := range it.Requests() {
		if strings.EqualFold(r.Method, method) && matchesPath(r.Path, path) {
			count++
		}
	}
	return count
}

func (it *Interceptor) summary() string {
	requests := it.Requests()
	if len(requests) == 0 {
		return " (no requests were sent)"
	}
	var sb strings.Builder
	sb.WriteString("\nrequests sent:")
	for _, r := range requests {
		fmt.Fprintf(&sb, "\n  %s %s", r.Method, r.URL)
	}
	return sb.String()
}

// matchesPath checks if a request path matches the expected path pattern.
// Supports exact matching and path parameters ({id} patterns).
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}

	for i := range expectedParts {
		exp := expectedParts[i]
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}
