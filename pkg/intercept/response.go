package intercept

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// respond builds the response for a matched request.
func (r *Registration) respond(ctx context.Context, req *http.Request) (resp *http.Response, err error) {
	resp = &http.Response{
		StatusCode: r.statusCode,
		Status:     statusLine(r.statusCode, r.reasonPhrase),
		Proto:      r.proto,
		ProtoMajor: r.protoMajor,
		ProtoMinor: r.protoMinor,
		Header:     make(http.Header),
		Request:    req,
	}

	body, length, err := r.openContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("building response content: %w", err)
	}
	resp.Body = body
	resp.ContentLength = length

	// Release the body if anything below fails.
	defer func() {
		if err != nil {
			_ = body.Close()
		}
	}()

	for name, values := range r.responseHeaders {
		for _, v := range values {
			resp.Header.Add(name, v)
		}
	}
	for name, values := range r.contentHeaders {
		resp.Header.Del(name)
		for _, v := range values {
			resp.Header.Add(name, v)
		}
	}
	if resp.Header.Get("Content-Type") == "" && r.mediaType != "" {
		resp.Header.Set("Content-Type", r.mediaType)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// openContent materializes the body from whichever content source is set.
func (r *Registration) openContent(ctx context.Context) (io.ReadCloser, int64, error) {
	switch {
	case r.contentStream != nil:
		rc, err := r.contentStream(ctx)
		if err != nil {
			return nil, 0, err
		}
		if rc == nil {
			return http.NoBody, 0, nil
		}
		return rc, -1, nil

	case r.contentBytes != nil:
		data, err := r.contentBytes(ctx)
		if err != nil {
			return nil, 0, err
		}
		if len(data) == 0 {
			return http.NoBody, 0, nil
		}
		return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
	}
	return http.NoBody, 0, nil
}

// wait blocks for the injected latency, returning early if ctx is done.
func (r *Registration) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func statusLine(code int, reason string) string {
	if reason == "" {
		reason = http.StatusText(code)
	}
	if reason == "" {
		return fmt.Sprintf("%d", code)
	}
	return fmt.Sprintf("%d %s", code, reason)
}
