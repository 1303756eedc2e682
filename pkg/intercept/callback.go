package intercept

import (
	"context"
	"net/http"
)

// InterceptionFunc is the canonical interception callback. It runs after a
// registration matched and before its response is built. Returning false
// suppresses interception for the request: no other registration is tried
// and the request is handled as unmatched.
type InterceptionFunc func(ctx context.Context, r *http.Request) (bool, error)

// MissingRegistrationFunc produces a response for a request that matched no
// registration. A nil response means the hook declined.
type MissingRegistrationFunc func(ctx context.Context, r *http.Request) (*http.Response, error)

func fromAction(fn func(*http.Request)) InterceptionFunc {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, r *http.Request) (bool, error) {
		fn(r)
		return true, nil
	}
}

func fromActionContext(fn func(context.Context, *http.Request) error) InterceptionFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, r *http.Request) (bool, error) {
		if err := fn(ctx, r); err != nil {
			return false, err
		}
		return true, nil
	}
}

func fromPredicate(fn func(*http.Request) bool) InterceptionFunc {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, r *http.Request) (bool, error) {
		return fn(r), nil
	}
}
