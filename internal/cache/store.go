// Package cache implements the in-memory read cache used by the transport
// layer: per-entry TTL, lazy expiry on access, prefix-based invalidation,
// and a full clear on sign-out.
//
// The store is a thin wrapper around patrickmn/go-cache. No background
// janitor is started; an expired entry is simply treated as absent the next
// time it is looked up, which forces a live fetch instead of a stale serve.
// The store is process-wide state owned by a single transport client; other
// components never write to it directly.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// cacheHits counts lookups answered from the cache.
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_cache_hits_total",
		Help: "Total number of cache lookups answered without a live fetch.",
	})

	// cacheMisses counts lookups that missed (absent or expired).
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_cache_misses_total",
		Help: "Total number of cache lookups that required a live fetch.",
	})

	// cacheInvalidations counts entries removed by prefix invalidation.
	cacheInvalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_cache_invalidated_entries_total",
		Help: "Total number of cache entries purged by prefix invalidation.",
	})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, cacheInvalidations)
}

// Store is an in-memory key→value cache with per-entry TTL.
//
// All operations are total: Get on a missing or expired key reports absence,
// Invalidate with no matching keys is a no-op, and none of the methods can
// fail. The store is safe for concurrent use.
type Store struct {
	c *gocache.Cache
}

// New constructs an empty Store.
//
// defaultTTL is applied when Set is called with ttl <= 0. The cleanup
// interval is disabled on purpose: expiry is enforced lazily at access time,
// so no background sweep goroutine is needed.
func New(defaultTTL time.Duration) *Store {
	return &Store{c: gocache.New(defaultTTL, 0)}
}

// Set stores value under key with the given TTL, overwriting any existing
// entry for the same key.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.c.Set(key, value, ttl)
}

// Get returns the value stored under key. ok is false when no entry exists
// or when the entry's TTL has elapsed; an expired entry is never returned,
// not even one write-cycle late.
func (s *Store) Get(key string) (interface{}, bool) {
	v, ok := s.c.Get(key)
	if ok {
		cacheHits.Inc()
	} else {
		cacheMisses.Inc()
	}
	return v, ok
}

// Invalidate removes every live entry whose key starts with prefix. It is a
// no-op when nothing matches.
func (s *Store) Invalidate(prefix string) {
	for key := range s.c.Items() {
		if strings.HasPrefix(key, prefix) {
			s.c.Delete(key)
			cacheInvalidations.Inc()
		}
	}
}

// Clear removes all entries. Used on sign-out, together with the identity
// collaborator's session teardown.
func (s *Store) Clear() {
	s.c.Flush()
}

// Len returns the number of non-expired entries, primarily for logging and
// tests.
func (s *Store) Len() int {
	return len(s.c.Items())
}
