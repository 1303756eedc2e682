package intercept

import "sync"

// Scope is a reversible window over the registration table, returned by
// Options.BeginScope.
type Scope struct {
	options  *Options
	previous *table
	scoped   *table
	once     sync.Once
}

// BeginScope installs a copy of the active table. Changes made until the
// scope is closed are discarded by Close.
//
// Scopes nest, but must be closed in reverse order of creation. Closing a
// scope while an inner scope is still open does nothing.
func (o *Options) BeginScope() *Scope {
	for {
		previous := o.current.Load()
		scoped := previous.Clone()
		if o.current.CompareAndSwap(previous, scoped) {
			o.log.Debug("began registration scope", "registrations", scoped.Count())
			return &Scope{options: o, previous: previous, scoped: scoped}
		}
	}
}

// Close restores the table that was active when the scope began. It is
// safe to call more than once and always returns nil.
func (s *Scope) Close() error {
	s.once.Do(func() {
		if s.options.current.CompareAndSwap(s.scoped, s.previous) {
			s.options.log.Debug("closed registration scope", "registrations", s.previous.Count())
			s.options.updateGauge()
			return
		}
		s.options.log.Debug("registration scope closed out of order; table left unchanged")
	})
	return nil
}
