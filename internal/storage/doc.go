// Package storage provides the registration table behind the interceptor.
//
// It defines the Store interface for keyed, insertion-ordered storage and the
// concurrency-safe Table implementation used by intercept.Options.
//
// Key types:
//
//   - Store: Interface describing keyed storage with ordered listing
//   - Table: Thread-safe in-memory implementation of Store
//   - Entry: A stored value together with its insertion sequence
//
// A Table can be cloned in one step. Scopes rely on this: the interceptor
// clones the active table, installs the clone through an atomic pointer and
// later swaps the original back.
package storage
