// Package querycache provides a keyed read-through cache for remote
// query results. Values stay cached until a mutation invalidates their
// keys; there is no TTL and no retry policy.
package querycache

import (
	"context"
	"sync"
)

// FetchFunc loads a value on a cache miss.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Cache is a concurrency-safe keyed cache. Concurrent misses on the
// same key may each run the fetch; the last result wins.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
}

// New returns an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key, fetching and caching it when
// absent. Fetch failures are returned to the caller and never cached.
func (cache *Cache[K, V]) Get(ctx context.Context, key K, fetch FetchFunc[V]) (V, error) {
	cache.mu.Lock()
	if value, exists := cache.entries[key]; exists {
		cache.mu.Unlock()
		return value, nil
	}
	cache.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	cache.mu.Lock()
	cache.entries[key] = value
	cache.mu.Unlock()
	return value, nil
}

// Peek returns the cached value without fetching.
func (cache *Cache[K, V]) Peek(key K) (V, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	value, exists := cache.entries[key]
	return value, exists
}

// Put stores a value directly, replacing any cached entry.
func (cache *Cache[K, V]) Put(key K, value V) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[key] = value
}

// Invalidate drops the entries for the given keys. Unknown keys are
// ignored, so mutations can list every key they might affect.
func (cache *Cache[K, V]) Invalidate(keys ...K) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	for _, key := range keys {
		delete(cache.entries, key)
	}
}

// Clear drops every cached entry.
func (cache *Cache[K, V]) Clear() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries = make(map[K]V)
}

// Len reports the number of cached entries.
func (cache *Cache[K, V]) Len() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return len(cache.entries)
}
