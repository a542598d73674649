// Package qcache implements the process-wide query-result cache spec.md
// §4.3/§9 describes: keyed by (index_id, query-shape-fingerprint,
// schema-fingerprint), refcounted entries, LRU-evicted by a configurable
// byte budget. Get, Insert and Invalidate all serialise on one mutex, so
// lookups are not lock-free; only an entry's reference count is updated
// atomically.
package qcache

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies a cached result set, per spec.md §9: "Keyed on
// (index_id, query-shape-fingerprint, schema-fingerprint)".
type Key struct {
	IndexID              string
	QueryShapeFingerprint uint64
	SchemaFingerprint     uint64
}

// Entry is a cached result set plus bookkeeping. Payload is opaque to
// qcache — callers store whatever serialised match block they produced
// at finalize_cache.
type Entry struct {
	Payload []byte

	refs       int32
	generation uuid.UUID
}

// Retain/Release implement the refcounting spec.md §9 calls for:
// "readers lock-free with reference counting on entries." Get already
// calls Retain; callers must call Release exactly once per Get.
func (e *Entry) Retain() { atomic.AddInt32(&e.refs, 1) }

// Release drops a reference. The cache itself holds one implicit
// reference for as long as the entry is resident in the LRU; Release
// never frees the entry directly; eviction happens only via the LRU's
// own size-based policy, so a lingering reader finishes reading an
// already-evicted Entry safely (it's just no longer reachable via Get).
func (e *Entry) Release() { atomic.AddInt32(&e.refs, -1) }

// Cache is the process-wide query-result store. One Cache is shared
// across all rankers in the process; construct it once at startup.
type Cache struct {
	mu         sync.Mutex
	lru        *lru.Cache[Key, *Entry]
	generation uuid.UUID
	budget     int64
	used       int64
}

// New builds a Cache holding up to byteBudget bytes of payload,
// evicting least-recently-used entries once the budget is exceeded.
// entryCountHint bounds the underlying LRU's slot count (an
// implementation detail of golang-lru, which indexes by count rather
// than bytes); qcache enforces the real byte budget itself on top.
func New(entryCountHint int, byteBudget int64) (*Cache, error) {
	c := &Cache{generation: uuid.New(), budget: byteBudget}
	backing, err := lru.NewWithEvict(entryCountHint, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = backing
	return c, nil
}

// onEvict runs under c.mu (golang-lru calls eviction callbacks
// synchronously from Add/RemoveOldest) and keeps c.used in sync.
func (c *Cache) onEvict(_ Key, e *Entry) {
	c.used -= int64(len(e.Payload))
}

// Get looks up key and, on a hit from the current generation, returns
// the entry with one reference already retained on the caller's behalf.
// A hit from a stale (invalidated) generation is treated as a miss and
// removed, per the lazy-invalidation scheme Invalidate uses.
func (c *Cache) Get(key Key) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if e.generation != c.generation {
		c.lru.Remove(key)
		return nil, false
	}
	e.Retain()
	return e, true
}

// Insert stores payload under key, per spec.md §9: "Insertion happens
// only at finalize_cache and only when the caller did not ask to skip
// caching." Insert evicts least-recently-used entries first when the
// byte budget would otherwise be exceeded.
func (c *Cache) Insert(key Key, payload []byte) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &Entry{Payload: payload, generation: c.generation}
	c.lru.Add(key, e)
	c.used += int64(len(payload))
	for c.used > c.budget && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
	return e
}

// Invalidate marks every currently cached entry stale without walking
// them: it bumps the generation tag, so subsequent Get calls treat old
// entries as misses and lazily evict them. Used when the dictionary's
// get_settings_hash (spec.md §6) changes underneath a live index.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation = uuid.New()
}

// Len reports the number of entries currently resident, including any
// stale ones not yet lazily evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
