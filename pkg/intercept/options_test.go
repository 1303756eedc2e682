package intercept

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	require.NotNil(t, resp)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func getResponse(t *testing.T, o *Options, method, rawURL string) *http.Response {
	t.Helper()
	resp, err := o.GetResponse(context.Background(), httptestRequest(t, method, rawURL))
	require.NoError(t, err)
	return resp
}

func TestOptions_ExactMatch(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://api.example.com:8443/users?active=true", "users"))

	assert.Equal(t, "users", readBody(t, getResponse(t, o, http.MethodGet, "https://api.example.com:8443/users?active=true")))

	misses := []struct {
		name   string
		method string
		url    string
	}{
		{"method", http.MethodPost, "https://api.example.com:8443/users?active=true"},
		{"scheme", http.MethodGet, "http://api.example.com:8443/users?active=true"},
		{"host", http.MethodGet, "https://www.example.com:8443/users?active=true"},
		{"port", http.MethodGet, "https://api.example.com:9443/users?active=true"},
		{"default port", http.MethodGet, "https://api.example.com/users?active=true"},
		{"path", http.MethodGet, "https://api.example.com:8443/groups?active=true"},
		{"query", http.MethodGet, "https://api.example.com:8443/users?active=false"},
		{"no query", http.MethodGet, "https://api.example.com:8443/users"},
	}
	for _, tt := range misses {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, getResponse(t, o, tt.method, tt.url))
		})
	}
}

func TestOptions_CustomPortMatchesSchemeDefault(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(NewBuilder().ForHTTPS().ForHost("example.com").ForPort(443)))

	assert.NotNil(t, getResponse(t, o, http.MethodGet, "https://example.com/"))
	assert.NotNil(t, getResponse(t, o, http.MethodGet, "https://example.com:443/"))
	assert.Nil(t, getResponse(t, o, http.MethodGet, "https://example.com:8443/"))
}

func TestOptions_URLPortActsAsForPort(t *testing.T) {
	fromURL := NewOptions()
	require.NoError(t, fromURL.Register(NewBuilder().ForURLString("https://example.com:8443/x")))
	fromPort := NewOptions()
	require.NoError(t, fromPort.Register(NewBuilder().ForURLString("https://example.com/x").ForPort(8443)))
	portless := NewOptions()
	require.NoError(t, portless.Register(NewBuilder().ForURLString("https://example.com/x")))

	for _, rawURL := range []string{"https://example.com:8443/x", "https://example.com/x", "https://example.com:9443/x"} {
		want := rawURL == "https://example.com:8443/x"
		assert.Equal(t, want, getResponse(t, fromURL, http.MethodGet, rawURL) != nil, "ForURL %s", rawURL)
		assert.Equal(t, want, getResponse(t, fromPort, http.MethodGet, rawURL) != nil, "ForPort %s", rawURL)
		assert.NotNil(t, getResponse(t, portless, http.MethodGet, rawURL), "no port %s", rawURL)
	}
}

func TestOptions_JustEatTermsScenario(t *testing.T) {
	o := NewOptions()
	body := map[string]any{"Id": 1, "Link": "https://www.just-eat.co.uk/privacy-policy"}
	require.NoError(t, o.RegisterGetJSON("https://public.je-apis.com/terms", body))

	resp := getResponse(t, o, http.MethodGet, "https://public.je-apis.com/terms")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"Id":1,"Link":"https://www.just-eat.co.uk/privacy-policy"}`, readBody(t, resp))

	assert.Nil(t, getResponse(t, o, http.MethodPost, "https://public.je-apis.com/terms"))
}

func TestOptions_CaseInsensitiveByDefault(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/Users", "ok"))
	assert.NotNil(t, getResponse(t, o, http.MethodGet, "https://EXAMPLE.com/users"))

	sensitive := NewOptions(WithCaseSensitive(true))
	require.NoError(t, sensitive.RegisterString(http.MethodGet, "https://example.com/Users", "ok"))
	assert.NotNil(t, getResponse(t, sensitive, http.MethodGet, "https://example.com/Users"))
	assert.Nil(t, getResponse(t, sensitive, http.MethodGet, "https://example.com/users"))
	assert.True(t, sensitive.CaseSensitive())
}

func TestOptions_RegisterTwiceOverwrites(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/a", "first"))
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/a", "second"))

	assert.Equal(t, 1, o.Count())
	assert.Equal(t, "second", readBody(t, getResponse(t, o, http.MethodGet, "https://example.com/a")))
}

func TestOptions_OverwriteFoldsCase(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/A", "first"))
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/a", "second"))
	assert.Equal(t, 1, o.Count())

	sensitive := NewOptions(WithCaseSensitive(true))
	require.NoError(t, sensitive.RegisterString(http.MethodGet, "https://example.com/A", "first"))
	require.NoError(t, sensitive.RegisterString(http.MethodGet, "https://example.com/a", "second"))
	assert.Equal(t, 2, sensitive.Count())
}

func TestOptions_SameBuilderRegisteredTwice(t *testing.T) {
	o := NewOptions()
	b := NewBuilder().ForURLString("https://example.com/a").WithContentString("v1")
	require.NoError(t, o.Register(b))

	b.WithContentString("v2")
	require.NoError(t, o.Register(b))
	assert.Equal(t, 1, o.Count())
	assert.Equal(t, "v2", readBody(t, getResponse(t, o, http.MethodGet, "https://example.com/a")))

	b.ForPath("/b")
	require.NoError(t, o.Register(b))
	assert.Equal(t, 2, o.Count())
}

func TestOptions_HostOnlyScenario(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(NewBuilder().
		ForHost("host").
		IgnoringPath(true).
		IgnoringQuery(true).
		WithContentString("X")))

	assert.Equal(t, "X", readBody(t, getResponse(t, o, http.MethodGet, "http://host/any/path?x=1")))
	assert.Equal(t, "X", readBody(t, getResponse(t, o, http.MethodGet, "http://host/other?y=2")))
	assert.Nil(t, getResponse(t, o, http.MethodGet, "http://other-host/any/path"))
}

func TestOptions_IgnoringHost(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(NewBuilder().ForHTTPS().ForPath("/terms").IgnoringHost(true)))

	assert.NotNil(t, getResponse(t, o, http.MethodGet, "https://a.example.com/terms"))
	assert.NotNil(t, getResponse(t, o, http.MethodGet, "https://b.example.org/terms"))
	assert.Nil(t, getResponse(t, o, http.MethodGet, "https://a.example.com/privacy"))
	assert.Nil(t, getResponse(t, o, http.MethodGet, "http://a.example.com/terms"))
}

func TestOptions_Headers(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(NewBuilder().
		ForURLString("https://example.com/").
		ForRequestHeader("Authorization", "Bearer token").
		ForRequestHeader("Accept", "application/json", "text/plain")))

	send := func(h http.Header) *http.Response {
		req := httptestRequest(t, http.MethodGet, "https://example.com/")
		req.Header = h
		resp, err := o.GetResponse(context.Background(), req)
		require.NoError(t, err)
		return resp
	}

	assert.NotNil(t, send(http.Header{
		"Authorization": {"Bearer token"},
		"Accept":        {"application/json", "text/plain"},
		"X-Extra":       {"fine"},
	}))
	assert.Nil(t, send(http.Header{"Authorization": {"Bearer token"}}), "missing header")
	assert.Nil(t, send(http.Header{
		"Authorization": {"Bearer other"},
		"Accept":        {"application/json", "text/plain"},
	}), "mismatched value")
	assert.Nil(t, send(http.Header{
		"Authorization": {"Bearer token"},
		"Accept":        {"text/plain", "application/json"},
	}), "values out of order")
}

func TestOptions_Priority(t *testing.T) {
	o := NewOptions()
	matchAll := func(id string, configure func(*Builder) *Builder) *Builder {
		return configure(NewBuilder().
			ForRequest(func(r *http.Request) bool { return r.URL.Host == "example.com" }).
			WithContentString(id))
	}

	require.NoError(t, o.Register(
		matchAll("unprioritized", func(b *Builder) *Builder { return b }),
		matchAll("p5", func(b *Builder) *Builder { return b.WithPriority(5) }),
		matchAll("p1", func(b *Builder) *Builder { return b.WithPriority(1) }),
		matchAll("p1-later", func(b *Builder) *Builder { return b.WithPriority(1) }),
	))
	assert.Equal(t, 4, o.Count())

	assert.Equal(t, "p1", readBody(t, getResponse(t, o, http.MethodGet, "https://example.com/")))

	ids := make([]string, 0, 4)
	for _, reg := range o.Registrations() {
		data, err := reg.contentBytes(context.Background())
		require.NoError(t, err)
		ids = append(ids, string(data))
	}
	assert.Equal(t, []string{"p1", "p1-later", "p5", "unprioritized"}, ids)
}

func TestOptions_UnprioritizedUsedWhenNoPrioritizedMatches(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(
		NewBuilder().ForURLString("https://example.com/a").WithPriority(1).WithContentString("a"),
		NewBuilder().ForURLString("https://example.com/b").WithContentString("b"),
	))
	assert.Equal(t, "b", readBody(t, getResponse(t, o, http.MethodGet, "https://example.com/b")))
}

func TestOptions_FormContent(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(NewBuilder().
		ForPost().
		ForURLString("https://example.com/token").
		ForFormContent(map[string]string{"grant_type": "client_credentials", "scope": "read"}).
		WithContentString("token")))

	post := func(body string) *http.Response {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
			"https://example.com/token", strings.NewReader(body))
		require.NoError(t, err)
		resp, err := o.GetResponse(context.Background(), req)
		require.NoError(t, err)
		return resp
	}

	assert.NotNil(t, post("grant_type=client_credentials&scope=read"))
	assert.NotNil(t, post("scope=read&client_id=abc&grant_type=client_credentials"))
	assert.Nil(t, post("grant_type=client_credentials"))
	assert.Nil(t, post("grant_type=password&scope=read"))
	assert.Nil(t, post("grant_type=Client_Credentials&scope=read"))
	assert.Nil(t, post(`{"grant_type":"client_credentials"}`))
}

func TestOptions_JSONContent(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(NewBuilder().
		ForPost().
		ForURLString("https://example.com/orders").
		ForJSONContent(map[string]any{"$.customer.id": 42, "$.items": map[string]any{"exists": true}})))

	post := func(body string) *http.Response {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
			"https://example.com/orders", strings.NewReader(body))
		require.NoError(t, err)
		resp, err := o.GetResponse(context.Background(), req)
		require.NoError(t, err)
		return resp
	}

	assert.NotNil(t, post(`{"customer":{"id":42},"items":[]}`))
	assert.Nil(t, post(`{"customer":{"id":7},"items":[]}`))
	assert.Nil(t, post(`{"customer":{"id":42}}`))
	assert.Nil(t, post(`not json`))
}

func TestOptions_Expression(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(NewBuilder().
		ForExpression(`method == "DELETE" && path startsWith "/users/"`).
		WithStatus(http.StatusNoContent)))

	resp := getResponse(t, o, http.MethodDelete, "https://example.com/users/7")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, getResponse(t, o, http.MethodGet, "https://example.com/users/7"))
}

func TestOptions_InterceptionCallback(t *testing.T) {
	o := NewOptions()
	var seen []string
	require.NoError(t, o.Register(NewBuilder().
		ForURLString("https://example.com/").
		WithInterceptionCallback(func(r *http.Request) { seen = append(seen, r.Method) })))

	assert.NotNil(t, getResponse(t, o, http.MethodGet, "https://example.com/"))
	assert.Equal(t, []string{http.MethodGet}, seen)
}

func TestOptions_InterceptionPredicateFalseIsHardStop(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Register(
		NewBuilder().
			ForURLString("https://example.com/").
			WithPriority(1).
			WithInterceptionPredicate(func(*http.Request) bool { return false }),
		NewBuilder().
			ForRequest(func(*http.Request) bool { return true }).
			WithContentString("fallback"),
	))

	assert.Nil(t, getResponse(t, o, http.MethodGet, "https://example.com/"))
	assert.Equal(t, "fallback", readBody(t, getResponse(t, o, http.MethodGet, "http://other/")))
}

func TestOptions_CallbackErrorPropagates(t *testing.T) {
	o := NewOptions()
	boom := errors.New("boom")
	require.NoError(t, o.Register(NewBuilder().
		ForURLString("https://example.com/").
		WithInterceptionCallbackContext(func(context.Context, *http.Request) error { return boom })))

	_, err := o.GetResponse(context.Background(), httptestRequest(t, http.MethodGet, "https://example.com/"))
	assert.ErrorIs(t, err, boom)
}

func TestOptions_GetResponseNilRequest(t *testing.T) {
	_, err := NewOptions().GetResponse(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOptions_Deregister(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com:8080/a?b=c", "x"))

	u, err := url.Parse("https://example.com:8080/a?b=c")
	require.NoError(t, err)

	other, _ := url.Parse("https://example.com/never")
	require.NoError(t, o.Deregister(http.MethodGet, other), "absent entries are a no-op")
	assert.Equal(t, 1, o.Count())

	require.NoError(t, o.Deregister("get", u))
	assert.Equal(t, 0, o.Count())
	assert.Nil(t, getResponse(t, o, http.MethodGet, "https://example.com:8080/a?b=c"))

	assert.ErrorIs(t, o.Deregister("", u), ErrInvalidArgument)
	assert.ErrorIs(t, o.Deregister(http.MethodGet, nil), ErrInvalidArgument)
}

func TestOptions_DeregisterBuilder(t *testing.T) {
	o := NewOptions()
	b := NewBuilder().ForURLString("https://example.com/").ForRequestHeader("X-Test", "1")

	assert.ErrorIs(t, o.DeregisterBuilder(b), ErrNotRegistered)
	assert.ErrorIs(t, o.DeregisterBuilder(nil), ErrInvalidArgument)

	require.NoError(t, o.Register(b))
	require.NoError(t, o.DeregisterBuilder(b))
	assert.Equal(t, 0, o.Count())

	require.NoError(t, o.Register(b))
	b.WithStatus(http.StatusTeapot)
	assert.ErrorIs(t, o.DeregisterBuilder(b), ErrBuilderMutated)
	assert.Equal(t, 1, o.Count())
}

func TestOptions_DeregisterBuilderWithCustomMatcher(t *testing.T) {
	o := NewOptions()
	b := NewBuilder().ForRequest(func(*http.Request) bool { return true })
	require.NoError(t, o.Register(b))
	require.NoError(t, o.DeregisterBuilder(b))
	assert.Equal(t, 0, o.Count())
}

func TestOptions_ClearAndClone(t *testing.T) {
	o := NewOptions(WithThrowOnMissingRegistration(true))
	require.NoError(t, o.RegisterString(http.MethodGet, "https://example.com/a", "a"))

	c := o.Clone()
	require.NoError(t, c.RegisterString(http.MethodGet, "https://example.com/b", "b"))
	assert.Equal(t, 1, o.Count())
	assert.Equal(t, 2, c.Count())
	assert.True(t, c.ThrowsOnMissingRegistration())

	o.Clear()
	assert.Equal(t, 0, o.Count())
	assert.Equal(t, 2, c.Count())
}

func TestOptions_RegisterRegistration(t *testing.T) {
	o := NewOptions()
	reg, err := NewBuilder().ForURLString("https://example.com/").Build()
	require.NoError(t, err)

	o.RegisterRegistration(reg, nil)
	assert.Equal(t, 1, o.Count())
	assert.Same(t, reg, o.Registrations()[0])
}

func TestOptions_RegisterStopsAtFirstInvalidBuilder(t *testing.T) {
	o := NewOptions()
	err := o.Register(
		NewBuilder().ForURLString("https://example.com/a"),
		NewBuilder().ForMethod(""),
		NewBuilder().ForURLString("https://example.com/c"),
	)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 1, o.Count())

	assert.ErrorIs(t, o.Register(nil), ErrInvalidArgument)
}
