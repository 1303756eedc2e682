package intercepttest

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getmockd/httpintercept/pkg/intercept"
)

// StubBuilder configures one interception with a short, test-oriented API.
type StubBuilder struct {
	it      *Interceptor
	builder *intercept.Builder
	times   int
}

// Stub starts configuring an interception of method and rawURL. Call Reply
// to register it.
func (it *Interceptor) Stub(method, rawURL string) *StubBuilder {
	it.t.Helper()
	return &StubBuilder{
		it:      it,
		builder: intercept.NewBuilder().ForMethod(method).ForURLString(rawURL),
	}
}

// Builder exposes the underlying builder for options without a shortcut here.
func (s *StubBuilder) Builder() *intercept.Builder {
	return s.builder
}

// WithStatus sets the HTTP response status code.
// Default is 200 (OK).
func (s *StubBuilder) WithStatus(status int) *StubBuilder {
	s.builder.WithStatus(status)
	return s
}

// WithBody sets the response body as plain text.
func (s *StubBuilder) WithBody(body string) *StubBuilder {
	s.builder.WithContentString(body).WithMediaType("text/plain; charset=utf-8")
	return s
}

// WithJSON sets the response body as JSON.
// Automatically sets Content-Type to application/json.
func (s *StubBuilder) WithJSON(body any) *StubBuilder {
	s.builder.WithJSONContent(body)
	return s
}

// WithHeader adds a response header.
func (s *StubBuilder) WithHeader(key, value string) *StubBuilder {
	s.builder.WithResponseHeader(key, value)
	return s
}

// WithRequestHeader matches requests with a specific header.
func (s *StubBuilder) WithRequestHeader(key, value string) *StubBuilder {
	s.builder.ForRequestHeader(key, value)
	return s
}

// WithDelay delays the response.
func (s *StubBuilder) WithDelay(d time.Duration) *StubBuilder {
	s.builder.WithLatency(d)
	return s
}

// WithPriority sets the priority. Lower values are tried first.
func (s *StubBuilder) WithPriority(priority int) *StubBuilder {
	s.builder.WithPriority(priority)
	return s
}

// IgnoringQuery matches any query string.
func (s *StubBuilder) IgnoringQuery() *StubBuilder {
	s.builder.IgnoringQuery(true)
	return s
}

// Times sets how many times this stub should match.
// After matching n times, subsequent requests are not intercepted.
// Use 0 for unlimited matches (default).
func (s *StubBuilder) Times(n int) *StubBuilder {
	s.times = n
	return s
}

// Once is a convenience method for Times(1).
func (s *StubBuilder) Once() *StubBuilder {
	return s.Times(1)
}

// Twice is a convenience method for Times(2).
func (s *StubBuilder) Twice() *StubBuilder {
	return s.Times(2)
}

// Reply registers the stub, failing the test on any configuration error.
// With Times, a callback already set on Builder still runs, and only the
// requests it accepts count towards n.
func (s *StubBuilder) Reply() *Interceptor {
	s.it.t.Helper()
	if s.times > 0 {
		s.builder.WithInterceptionFunc(limit(s.times, s.builder.InterceptionFunc()))
	}
	return s.it.Register(s.builder)
}

// limit wraps next so it accepts at most n requests.
func limit(n int, next intercept.InterceptionFunc) intercept.InterceptionFunc {
	var remaining atomic.Int64
	remaining.Store(int64(n))
	return func(ctx context.Context, r *http.Request) (bool, error) {
		if remaining.Load() <= 0 {
			return false, nil
		}
		if next != nil {
			proceed, err := next(ctx, r)
			if err != nil || !proceed {
				return proceed, err
			}
		}
		return remaining.Add(-1) >= 0, nil
	}
}
