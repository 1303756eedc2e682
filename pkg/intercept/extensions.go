package intercept

// RegisterGetJSON registers a GET interception for rawURL that responds 200
// with v marshaled as JSON.
func (o *Options) RegisterGetJSON(rawURL string, v any) error {
	return o.Register(NewBuilder().
		ForGet().
		ForURLString(rawURL).
		WithJSONContent(v))
}

// RegisterBytes registers an interception for method and rawURL that
// responds with status and a copy of body.
func (o *Options) RegisterBytes(method, rawURL string, status int, body []byte) error {
	return o.Register(NewBuilder().
		ForMethod(method).
		ForURLString(rawURL).
		WithStatus(status).
		WithContentBytes(body))
}

// RegisterString registers an interception for method and rawURL that
// responds 200 with body as plain text.
func (o *Options) RegisterString(method, rawURL, body string) error {
	return o.Register(NewBuilder().
		ForMethod(method).
		ForURLString(rawURL).
		WithContentString(body).
		WithMediaType("text/plain; charset=utf-8"))
}
