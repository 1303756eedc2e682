package intercept

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the interceptor.
var (
	// ErrInvalidArgument is returned for a missing or malformed configuration value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotRegistered is returned when deregistering a builder that was never registered.
	ErrNotRegistered = errors.New("builder has not been registered")

	// ErrBuilderMutated is returned when deregistering a builder that changed since it was registered.
	ErrBuilderMutated = errors.New("builder has been changed since it was registered")

	// ErrNotIntercepted matches any *NotInterceptedError.
	ErrNotIntercepted = errors.New("request was not intercepted")
)

// NotInterceptedError is returned when no registration matches a request and
// the Options are configured to fail instead of passing the request through.
type NotInterceptedError struct {
	Method  string
	URL     string
	Request *http.Request
	// NearMisses lists the registrations that came closest, if any.
	NearMisses []NearMiss
}

func newNotInterceptedError(r *http.Request) *NotInterceptedError {
	return &NotInterceptedError{
		Method:  r.Method,
		URL:     r.URL.String(),
		Request: r,
	}
}

// Error implements error.
func (e *NotInterceptedError) Error() string {
	msg := fmt.Sprintf("no HTTP response is configured for %s %s", e.Method, e.URL)
	if len(e.NearMisses) > 0 {
		closest := e.NearMisses[0]
		msg += fmt.Sprintf(" (closest: %s %s, %s)", closest.Method, closest.URL, closest.Reason)
	}
	return msg
}

// Is reports whether target is ErrNotIntercepted.
func (e *NotInterceptedError) Is(target error) bool {
	return target == ErrNotIntercepted
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
