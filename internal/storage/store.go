// Package storage provides the registration table behind the interceptor.
package storage

// Store defines keyed storage with a stable insertion order.
type Store[V any] interface {
	// Get retrieves a value by key. The boolean reports whether it was found.
	Get(key string) (V, bool)

	// Set stores or replaces the value for a key.
	Set(key string, value V)

	// Delete removes a key. Returns true if deleted, false if not found.
	Delete(key string) bool

	// Entries returns every stored entry in insertion order.
	Entries() []Entry[V]

	// Count returns the number of stored values.
	Count() int

	// Clear removes all stored values.
	Clear()

	// Exists checks if a key is present.
	Exists(key string) bool
}

// Entry is a value stored in a Store.
type Entry[V any] struct {
	Key   string
	Value V
	// Seq is the insertion sequence. Replacing a value assigns a new sequence.
	Seq uint64
}
