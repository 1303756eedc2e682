package intercepttest

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
)

// RequestLog is a request sent through an Interceptor.
type RequestLog struct {
	Method string
	// URL is the full request URL.
	URL  string
	Host string
	Path string
	// QueryString is the raw query without the leading '?'.
	QueryString string
	// Headers holds the first value of each request header.
	Headers map[string]string
	Body    string
}

// AssertJSONBody asserts that the body is JSON equal to expected. expected
// may be a JSON string, JSON bytes, or any value to marshal.
func (r *RequestLog) AssertJSONBody(t testing.TB, expected any) bool {
	t.Helper()

	var want string
	switch v := expected.(type) {
	case string:
		want = v
	case []byte:
		want = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return false
		}
		want = string(data)
	}
	return assert.JSONEq(t, want, r.Body, "request body of %s %s", r.Method, r.URL)
}

// AssertBody asserts that the body equals expected exactly.
func (r *RequestLog) AssertBody(t testing.TB, expected string) bool {
	t.Helper()
	return assert.Equal(t, expected, r.Body, "request body of %s %s", r.Method, r.URL)
}

// AssertBodyContains asserts that the body contains substr.
func (r *RequestLog) AssertBodyContains(t testing.TB, substr string) bool {
	t.Helper()
	return assert.Contains(t, r.Body, substr, "request body of %s %s", r.Method, r.URL)
}

// Header returns the first value of the named header, ignoring case.
func (r *RequestLog) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// AssertHeader asserts that the request carried the header with the value.
func (r *RequestLog) AssertHeader(t testing.TB, name, expected string) bool {
	t.Helper()
	actual, ok := r.Header(name)
	if !ok {
		return assert.Fail(t, "request does not have header "+name)
	}
	return assert.Equal(t, expected, actual, "header %s", name)
}

// AssertHeaderExists asserts that the request carried the header.
func (r *RequestLog) AssertHeaderExists(t testing.TB, name string) bool {
	t.Helper()
	_, ok := r.Header(name)
	return assert.True(t, ok, "request does not have header %s", name)
}

// AssertQueryParam asserts that the query has the parameter with the value.
func (r *RequestLog) AssertQueryParam(t testing.TB, key, expected string) bool {
	t.Helper()
	params, err := url.ParseQuery(r.QueryString)
	if !assert.NoError(t, err, "query %q", r.QueryString) {
		return false
	}
	if !params.Has(key) {
		return assert.Fail(t, "request does not have query parameter "+key)
	}
	return assert.Equal(t, expected, params.Get(key), "query parameter %s", key)
}

// AssertMethod asserts the request method, ignoring case.
func (r *RequestLog) AssertMethod(t testing.TB, expected string) bool {
	t.Helper()
	return assert.Equal(t, strings.ToUpper(expected), strings.ToUpper(r.Method), "request method")
}

// AssertPath asserts the request path. {name} segments match any value.
func (r *RequestLog) AssertPath(t testing.TB, expected string) bool {
	t.Helper()
	if matchesPath(r.Path, expected) {
		return true
	}
	return assert.Equal(t, expected, r.Path, "request path")
}

// JSONField returns the value at path in the JSON body. path is a JSONPath
// expression ("$.items[0].id") or a dotted field name ("address.city"). It
// returns nil when the body is not JSON or nothing is found; when the path
// selects several values the first is returned.
func (r *RequestLog) JSONField(path string) any {
	if !strings.HasPrefix(path, "$") {
		path = "$." + path
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return nil
	}
	data, err := oj.ParseString(r.Body)
	if err != nil {
		return nil
	}
	if results := x.Get(data); len(results) > 0 {
		return results[0]
	}
	return nil
}
