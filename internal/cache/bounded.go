// Package cache provides the in-process mirrors used for per-date lookups.
package cache

import "sync"

// Bounded is a concurrency-safe map that holds at most maxEntries keys.
// When an insert of a new key finds the map already over the bound, the map is cleared
// wholesale before inserting. Only a couple of keys are hot at a time (today, yesterday),
// so a bulk clear costs one reload each for them.
type Bounded[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]V
	maxEntries int
}

// NewBounded creates a bounded map. maxEntries <= 0 disables the bound.
func NewBounded[K comparable, V any](maxEntries int) *Bounded[K, V] {
	return &Bounded[K, V]{
		items:      make(map[K]V),
		maxEntries: maxEntries,
	}
}

// Get returns the value stored under key.
func (b *Bounded[K, V]) Get(key K) (V, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.items[key]
	return v, ok
}

// Set stores value under key, bulk-clearing first when the bound is exceeded.
// Returns true if a clear happened.
func (b *Bounded[K, V]) Set(key K, value V) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cleared := false
	if _, exists := b.items[key]; !exists && b.maxEntries > 0 && len(b.items) > b.maxEntries {
		clear(b.items)
		cleared = true
	}
	b.items[key] = value
	return cleared
}

// Delete removes key.
func (b *Bounded[K, V]) Delete(key K) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, key)
}

// Len returns the number of stored keys.
func (b *Bounded[K, V]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}
