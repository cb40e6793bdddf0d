// Package cache provides a bounded TTL cache with single-flight coalescing
// of concurrent fetches. It backs the per-identity listing and alias caches.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value  V
	expiry time.Time
}

// Layer is a key→value cache where every entry carries its own expiry.
//
// A miss runs the supplied fetch function at most once per key at a time:
// concurrent callers for the same key attach to the in-flight fetch and share
// its result. The in-flight registration is dropped on every exit path,
// success or failure (singleflight guarantees this), so a failed fetch never
// wedges the key.
//
// When the entry count exceeds the bound the entries closest to expiry are
// evicted first.
type Layer[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	gens       map[string]uint64
	maxEntries int
	group      singleflight.Group
	now        func() time.Time
}

func New[V any](maxEntries int) *Layer[V] {
	return &Layer[V]{
		entries:    make(map[string]entry[V]),
		gens:       make(map[string]uint64),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// GetOrFetch returns the live cached value for key, or runs fetch to produce
// one and stores it for ttl. Only successful results are cached.
//
// The context of the caller that starts the fetch is the one the fetch runs
// under; callers that join an in-flight fetch share its outcome.
func (l *Layer[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := l.get(key); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		// A previous flight may have filled the entry while we queued.
		if v, ok := l.get(key); ok {
			return v, nil
		}
		gen := l.generation(key)
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		// An invalidation that arrived mid-fetch moved the generation; the
		// result predates the write that caused it and must not be stored.
		l.putIfCurrent(key, value, ttl, gen)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate removes the cached entry for key and detaches any in-flight
// fetch so the next call observes fresh state. The key's generation is
// bumped so a fetch that was already running discards its result instead of
// repopulating the cache with the pre-write view. Called after every upload
// for the sender and each recipient, so a stale listing is never served
// post-write.
func (l *Layer[V]) Invalidate(key string) {
	l.group.Forget(key)
	l.mu.Lock()
	l.gens[key]++
	delete(l.entries, key)
	l.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (l *Layer[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Layer[V]) get(key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if l.now().After(e.expiry) {
		delete(l.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (l *Layer[V]) generation(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gens[key]
}

func (l *Layer[V]) putIfCurrent(key string, value V, ttl time.Duration, gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gens[key] != gen {
		return
	}
	l.entries[key] = entry[V]{value: value, expiry: l.now().Add(ttl)}
	for l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		l.evictNearestExpiryLocked()
	}
}

func (l *Layer[V]) evictNearestExpiryLocked() {
	var victim string
	var nearest time.Time
	first := true
	for k, e := range l.entries {
		if first || e.expiry.Before(nearest) {
			victim, nearest = k, e.expiry
			first = false
		}
	}
	delete(l.entries, victim)
}
