package storage

import (
	"sort"
	"sync"
)

// Table is a thread-safe in-memory implementation of Store.
type Table[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
	seq     uint64
}

var _ Store[int] = (*Table[int])(nil)

// NewTable creates an empty Table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{
		entries: make(map[string]Entry[V]),
	}
}

// Get retrieves a value by key.
func (t *Table[V]) Get(key string) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	return e.Value, ok
}

// Set stores or replaces the value for a key. A replaced value moves to the
// end of the insertion order.
func (t *Table[V]) Set(key string, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.entries[key] = Entry[V]{Key: key, Value: value, Seq: t.seq}
}

// Delete removes a key. Returns true if deleted, false if not found.
func (t *Table[V]) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[key]; exists {
		delete(t.entries, key)
		return true
	}
	return false
}

// Entries returns every stored entry sorted by insertion sequence.
func (t *Table[V]) Entries() []Entry[V] {
	t.mu.RLock()
	result := make([]Entry[V], 0, len(t.entries))
	for _, e := range t.entries {
		result = append(result, e)
	}
	t.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})
	return result
}

// Count returns the number of stored values.
func (t *Table[V]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Clear removes all stored values.
func (t *Table[V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]Entry[V])
}

// Exists checks if a key is present.
func (t *Table[V]) Exists(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[key]
	return ok
}

// Clone returns an independent copy of the table. Values are copied
// shallowly, so they should be immutable.
func (t *Table[V]) Clone() *Table[V] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clone := &Table[V]{
		entries: make(map[string]Entry[V], len(t.entries)),
		seq:     t.seq,
	}
	for k, e := range t.entries {
		clone.entries[k] = e
	}
	return clone
}
