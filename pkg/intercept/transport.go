package intercept

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/httpintercept/internal/matching"
	"github.com/getmockd/httpintercept/pkg/metrics"
)

// Transport is an http.RoundTripper that answers requests from an Options
// registry and sends everything else to an inner transport.
type Transport struct {
	options *Options
	inner   http.RoundTripper
}

var _ http.RoundTripper = (*Transport)(nil)

// Transport returns a RoundTripper backed by o. Unmatched requests go to
// inner, or http.DefaultTransport when inner is nil. inner may itself be
// another Options' transport.
func (o *Options) Transport(inner http.RoundTripper) *Transport {
	return &Transport{options: o, inner: inner}
}

// Client returns an *http.Client whose transport is backed by o.
func (o *Options) Client() *http.Client {
	return o.NewClient(nil)
}

// NewClient returns an *http.Client whose transport is backed by o and
// falls through to inner.
func (o *Options) NewClient(inner http.RoundTripper) *http.Client {
	return &http.Client{Transport: o.Transport(inner)}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	o := t.options
	if req == nil || req.URL == nil {
		return nil, invalidArgument("RoundTrip: request cannot be nil")
	}

	buffered, err := bufferRequest(req)
	if err != nil {
		o.metrics.ObserveRequest(req.Method, metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	resp, outcome, err := t.roundTrip(req, buffered)
	o.metrics.ObserveRequest(req.Method, outcome, time.Since(start))
	return resp, err
}

// roundTrip resolves req, the buffered clone of orig. Errors and synthesized
// responses refer back to orig.
func (t *Transport) roundTrip(orig, req *http.Request) (*http.Response, metrics.Outcome, error) {
	o := t.options
	ctx := req.Context()

	for _, hook := range o.onSend {
		if err := hook(req); err != nil {
			return nil, metrics.OutcomeError, fmt.Errorf("send hook: %w", err)
		}
	}

	resp, outcome, err := o.resolve(ctx, req)
	if err != nil {
		return nil, outcome, err
	}
	if resp != nil {
		return resp, outcome, nil
	}

	if o.onMissing != nil {
		resp, err := o.onMissing(ctx, req)
		if err != nil {
			return nil, metrics.OutcomeError, fmt.Errorf("missing registration hook: %w", err)
		}
		if resp != nil {
			if resp.Request == nil {
				resp.Request = orig
			}
			return resp, metrics.OutcomeMissingHandler, nil
		}
	}

	if o.throwOnMissing {
		nie := newNotInterceptedError(orig)
		nie.NearMisses = o.NearMisses(ctx, req, 3)
		attrs := []any{"method", req.Method, "url", req.URL.String()}
		for _, nm := range nie.NearMisses {
			attrs = append(attrs, slog.Group("near_miss",
				"registration", nm.RegistrationID,
				"percent", nm.MatchPercentage,
				"reason", nm.Reason,
			))
		}
		o.log.Warn("request was not intercepted", attrs...)
		return nil, metrics.OutcomeNotIntercepted, nie
	}

	inner := t.inner
	if inner == nil {
		inner = http.DefaultTransport
	}
	resp, err = inner.RoundTrip(req)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}
	return resp, metrics.OutcomePassthrough, nil
}

// CloseIdleConnections closes idle connections of the inner transport.
func (t *Transport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	inner := t.inner
	if inner == nil {
		inner = http.DefaultTransport
	}
	if ci, ok := inner.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}

// bufferRequest returns a clone of req whose body can be re-read, so
// matchers and the inner transport both see the full content. Matching
// reads through GetBody and never consumes Body.
func bufferRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return clone, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	matching.SetBody(clone, data)
	return clone, nil
}
