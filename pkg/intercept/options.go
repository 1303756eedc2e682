package intercept

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync/atomic"

	"github.com/getmockd/httpintercept/internal/matching"
	"github.com/getmockd/httpintercept/internal/storage"
	"github.com/getmockd/httpintercept/pkg/logging"
	"github.com/getmockd/httpintercept/pkg/metrics"
)

// entry is a stored registration with a matcher bound to the Options comparer.
type entry struct {
	reg     *Registration
	matcher matching.Matcher
}

type table = storage.Table[*entry]

// Options is the registry of HTTP interceptions. It is safe for concurrent
// use: requests may be resolved while registrations are added or removed.
type Options struct {
	current atomic.Pointer[table]

	caseSensitive  bool
	throwOnMissing bool
	onSend         []func(*http.Request) error
	onMissing      MissingRegistrationFunc

	log     *slog.Logger
	metrics *metrics.Collector
}

// Option configures an Options.
type Option func(*Options)

// WithCaseSensitive controls whether URLs and match keys are compared
// byte for byte. The default is case-insensitive.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(o *Options) {
		o.caseSensitive = caseSensitive
	}
}

// WithThrowOnMissingRegistration makes unmatched requests fail with a
// *NotInterceptedError instead of reaching the inner transport.
func WithThrowOnMissingRegistration(throw bool) Option {
	return func(o *Options) {
		o.throwOnMissing = throw
	}
}

// WithOnSend adds a hook invoked for every outgoing request before matching.
// Hooks run in the order they were added; an error from a hook fails the
// request.
func WithOnSend(fn func(*http.Request) error) Option {
	return func(o *Options) {
		if fn != nil {
			o.onSend = append(o.onSend, fn)
		}
	}
}

// WithOnMissingRegistration sets a hook invoked when no registration
// matches. A non-nil response from the hook is returned to the caller.
func WithOnMissingRegistration(fn MissingRegistrationFunc) Option {
	return func(o *Options) {
		o.onMissing = fn
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(o *Options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records request outcomes and the registration count on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Options) {
		o.metrics = c
	}
}

// NewOptions creates an empty registry.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.current.Store(storage.NewTable[*entry]())
	return o
}

// ThrowsOnMissingRegistration reports whether unmatched requests fail.
func (o *Options) ThrowsOnMissingRegistration() bool {
	return o.throwOnMissing
}

// CaseSensitive reports whether comparisons are case-sensitive.
func (o *Options) CaseSensitive() bool {
	return o.caseSensitive
}

func (o *Options) comparer() matching.Comparer {
	if o.caseSensitive {
		return matching.Ordinal
	}
	return matching.IgnoreCase
}

// normalizeKey folds a match key under case-insensitive comparison.
func (o *Options) normalizeKey(key string) string {
	if o.caseSensitive {
		return key
	}
	return matching.Fold(key)
}

func (o *Options) store(reg *Registration) string {
	key := o.normalizeKey(reg.key())
	o.current.Load().Set(key, &entry{
		reg:     reg,
		matcher: reg.newMatcher(o.comparer()),
	})
	o.log.Debug("registered interception",
		"registration", reg.ID(),
		"method", reg.Method(),
		"url", reg.URL(),
	)
	return key
}

func (o *Options) updateGauge() {
	o.metrics.SetRegistrations(o.Count())
}

// Register builds and stores each builder, replacing any registration with
// the same match key. The key is remembered by the builder so that
// DeregisterBuilder can remove the entry later. Builders are processed in
// order; the first failing builder stops registration.
func (o *Options) Register(builders ...*Builder) error {
	defer o.updateGauge()
	for _, b := range builders {
		if b == nil {
			return invalidArgument("Register: builder cannot be nil")
		}
		reg, err := b.Build()
		if err != nil {
			return err
		}
		b.registeredKey = o.store(reg)
		b.registeredRevision = b.revision
	}
	return nil
}

// RegisterRegistration stores prebuilt registrations. nil entries are skipped.
func (o *Options) RegisterRegistration(regs ...*Registration) *Options {
	for _, reg := range regs {
		if reg != nil {
			o.store(reg)
		}
	}
	o.updateGauge()
	return o
}

// Deregister removes the plain structural registration for method and u,
// as if it had been registered with only ForMethod and ForURL. Removing an
// absent registration is not an error.
func (o *Options) Deregister(method string, u *url.URL) error {
	if method == "" {
		return invalidArgument("Deregister: method cannot be empty")
	}
	c, err := criteriaFromURL(u)
	if err != nil {
		return fmt.Errorf("Deregister: %w", err)
	}

	key := o.normalizeKey(matching.StructuralKey(method, c.Canonical(), nil, ""))
	if o.current.Load().Delete(key) {
		o.log.Debug("deregistered interception", "method", method, "url", u.String())
		o.updateGauge()
	}
	return nil
}

// DeregisterBuilder removes the registration previously made from b. It
// fails with ErrNotRegistered if b was never registered and with
// ErrBuilderMutated if b was changed after it was registered.
func (o *Options) DeregisterBuilder(b *Builder) error {
	if b == nil {
		return invalidArgument("DeregisterBuilder: builder cannot be nil")
	}
	if b.registeredKey == "" {
		return ErrNotRegistered
	}
	if b.revision != b.registeredRevision {
		return ErrBuilderMutated
	}
	if o.current.Load().Delete(b.registeredKey) {
		o.log.Debug("deregistered interception", "key", b.registeredKey)
		o.updateGauge()
	}
	return nil
}

// Clear removes every registration from the active table.
func (o *Options) Clear() *Options {
	o.current.Load().Clear()
	o.updateGauge()
	return o
}

// Count returns the number of registrations in the active table.
func (o *Options) Count() int {
	return o.current.Load().Count()
}

// Registrations returns the active registrations in lookup order.
func (o *Options) Registrations() []*Registration {
	entries := o.candidates()
	regs := make([]*Registration, len(entries))
	for i, e := range entries {
		regs[i] = e.reg
	}
	return regs
}

// candidates returns the active entries ordered by priority, then by
// insertion. Registrations with a priority come first.
func (o *Options) candidates() []*entry {
	stored := o.current.Load().Entries()
	sort.SliceStable(stored, func(i, j int) bool {
		pi, hasI := stored[i].Value.reg.Priority()
		pj, hasJ := stored[j].Value.reg.Priority()
		if hasI != hasJ {
			return hasI
		}
		return hasI && pi < pj
	})

	out := make([]*entry, len(stored))
	for i, e := range stored {
		out[i] = e.Value
	}
	return out
}

// GetResponse returns the configured response for r, or a nil response and
// nil error if no registration intercepts it.
func (o *Options) GetResponse(ctx context.Context, r *http.Request) (*http.Response, error) {
	resp, _, err := o.resolve(ctx, r)
	return resp, err
}

// resolve finds the first matching registration and builds its response.
// The outcome is empty when nothing matched.
func (o *Options) resolve(ctx context.Context, r *http.Request) (*http.Response, metrics.Outcome, error) {
	if r == nil || r.URL == nil {
		return nil, metrics.OutcomeError, invalidArgument("GetResponse: request cannot be nil")
	}

	for _, e := range o.candidates() {
		ok, err := e.matcher.Match(ctx, r)
		if err != nil {
			return nil, metrics.OutcomeError, err
		}
		if !ok {
			continue
		}

		reg := e.reg
		if reg.onIntercepted != nil {
			proceed, err := reg.onIntercepted(ctx, r)
			if err != nil {
				return nil, metrics.OutcomeError, err
			}
			if !proceed {
				o.log.Debug("interception declined by callback",
					"registration", reg.ID(),
					"method", r.Method,
					"url", r.URL.String(),
				)
				return nil, metrics.OutcomeDeclined, nil
			}
		}

		if err := reg.wait(ctx); err != nil {
			return nil, metrics.OutcomeError, err
		}
		resp, err := reg.respond(ctx, r)
		if err != nil {
			return nil, metrics.OutcomeError, err
		}

		o.log.Debug("intercepted request",
			"registration", reg.ID(),
			"method", r.Method,
			"url", r.URL.String(),
			"status", resp.StatusCode,
		)
		return resp, metrics.OutcomeIntercepted, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, metrics.OutcomeError, err
	}
	o.log.Debug("no registration matched", "method", r.Method, "url", r.URL.String())
	return nil, "", nil
}

// Clone returns an independent copy of the settings and the active table.
func (o *Options) Clone() *Options {
	c := &Options{
		caseSensitive:  o.caseSensitive,
		throwOnMissing: o.throwOnMissing,
		onSend:         append([]func(*http.Request) error(nil), o.onSend...),
		onMissing:      o.onMissing,
		log:            o.log,
		metrics:        o.metrics,
	}
	c.current.Store(o.current.Load().Clone())
	return c
}
