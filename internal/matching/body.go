package matching

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ReadBody returns the full request body without consuming it. Requests
// with GetBody are read through a fresh copy; otherwise the body is buffered
// and replaced with a replayable one.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	if r.GetBody != nil {
		rc, err := r.GetBody()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	SetBody(r, data)
	return data, nil
}

// SetBody installs data as a replayable request body.
func SetBody(r *http.Request, data []byte) {
	r.Body = io.NopCloser(bytes.NewReader(data))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	r.ContentLength = int64(len(data))
}

// FormContent returns a content predicate that parses the body as a
// URL-encoded form and requires every expected pair to be present. Extra
// fields on the request are allowed. Values are compared case-sensitively.
func FormContent(expected map[string]string) ContentPredicate {
	want := make(map[string]string, len(expected))
	for k, v := range expected {
		want[k] = v
	}

	return func(ctx context.Context, body []byte) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		form, err := url.ParseQuery(string(body))
		if err != nil {
			// Not a form body - no match, not an error.
			return false, nil
		}
		return MatchFormSubset(want, form), nil
	}
}

// MatchFormSubset checks that every expected key carries the expected value
// among its values in form.
func MatchFormSubset(expected map[string]string, form url.Values) bool {
	for key, value := range expected {
		values, ok := form[key]
		if !ok {
			return false
		}
		found := false
		for _, v := range values {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
