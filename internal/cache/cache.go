// Package cache holds recently read sheet snapshots with a short TTL.
//
// The cache is keyed by (user, sheet title) and bounded by the low
// cardinality of that space (small N of users x at most a handful of
// sheets each), not by a byte budget. Entries are dropped outright on
// write, never marked stale: every successful store write invalidates
// the exact keys it touched before returning, which is what gives the
// process read-after-write consistency.
package cache

import (
	"sync"
	"time"
)

// Key identifies one cached sheet snapshot.
type Key struct {
	UserID int64
	Sheet  string
}

// entry is one snapshot with its read timestamp.
type entry struct {
	rows [][]string
	at   time.Time
}

// Cache is a TTL-bounded snapshot store. It is safe for concurrent
// get/put/invalidate on the same key; the underlying sync.Map gives
// per-key granularity, so unrelated users never serialize on a global
// lock.
type Cache struct {
	ttl     time.Duration
	entries sync.Map // Key -> entry

	mu  sync.RWMutex // guards now
	now func() time.Time
}

// New creates a Cache serving entries younger than ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

// Get returns the snapshot for key if one exists and is within TTL.
// Expired entries are dropped on the spot.
func (c *Cache) Get(key Key) ([][]string, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if c.clock().Sub(e.at) > c.ttl {
		c.entries.Delete(key)
		return nil, false
	}
	return e.rows, true
}

// Put stores a snapshot for key, stamping it with the current time.
func (c *Cache) Put(key Key, rows [][]string) {
	c.entries.Store(key, entry{rows: rows, at: c.clock()})
}

// Invalidate drops the entry for key. Dropping a missing key is a no-op.
func (c *Cache) Invalidate(key Key) {
	c.entries.Delete(key)
}

// InvalidateUser drops every entry belonging to a user. Used by account
// reset, which tears down all of a user's sheets at once.
func (c *Cache) InvalidateUser(userID int64) {
	c.entries.Range(func(k, _ any) bool {
		if k.(Key).UserID == userID {
			c.entries.Delete(k)
		}
		return true
	})
}

// SetClock overrides the time source. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Cache) clock() time.Time {
	c.mu.RLock()
	now := c.now
	c.mu.RUnlock()
	return now()
}
