/*
Package reportcache remembers the analysis of samples already seen, so that
identical samples (duplicate files, or files sharing the same leading bytes
and size) are only analysed once.

Entries are keyed by an xxhash fingerprint of the sample and a caller supplied
scope string that captures everything else the analysis depends on, such as
the selected tasks and the file size. A fingerprint match is confirmed by
comparing the stored sample, so hash collisions never return a wrong value.
*/
package reportcache

import (
	"bytes"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultMaxEntries is the capacity of a cache created with a size <= 0.
const DefaultMaxEntries = 1024

type entry[V any] struct {
	scope  string
	sample []byte
	value  V
}

// Cache is a bounded, concurrency safe map from samples to values. When full,
// the oldest entry is evicted.
type Cache[V any] struct {
	mu      sync.Mutex
	max     int
	entries map[uint64]entry[V]
	order   []uint64

	hits, misses int
}

// New returns an empty cache holding at most maxEntries values.
func New[V any](maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache[V]{
		max:     maxEntries,
		entries: make(map[uint64]entry[V]),
	}
}

// Fingerprint returns the cache key for sample within scope.
func Fingerprint(scope string, sample []byte) uint64 {
	d := xxhash.New()
	d.WriteString(scope)
	d.Write([]byte{0})
	d.Write(sample)
	return d.Sum64()
}

// Get returns the value stored for sample within scope.
func (c *Cache[V]) Get(scope string, sample []byte) (V, bool) {
	key := Fingerprint(scope, sample)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.scope != scope || !bytes.Equal(e.sample, sample) {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Put stores value for sample within scope. The sample is copied.
func (c *Cache[V]) Put(scope string, sample []byte, value V) {
	key := Fingerprint(scope, sample)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.max {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{scope: scope, sample: bytes.Clone(sample), value: value}
}

// GetOrCompute returns the cached value for sample, or calls compute and
// caches its result if there is none. Errors are returned but not cached.
// Concurrent calls for the same sample may both compute.
func (c *Cache[V]) GetOrCompute(scope string, sample []byte, compute func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(scope, sample); ok {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		return v, false, err
	}
	c.Put(scope, sample, v)
	return v, false, nil
}

// Len returns the number of cached values.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the number of lookups that hit and missed.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
