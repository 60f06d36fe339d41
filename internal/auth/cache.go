// Package auth provides HTTP Basic authentication for the metalmesh RPC channel.
package auth

import (
	"container/list"
	"sync"
)

// DefaultCacheSize bounds the verify cache when no capacity is given.
const DefaultCacheSize = 128

// VerifyCache memoizes bcrypt verification verdicts in a bounded LRU
// keyed by (password, hash). bcrypt is intentionally expensive and
// every RPC call re-authenticates, so repeated calls with the same
// credential would otherwise burn a full bcrypt round each time.
//
// Safe for concurrent use.
type VerifyCache struct {
	mu       sync.Mutex
	items    map[verifyKey]*list.Element
	order    *list.List // front = most recently used
	capacity int
}

type verifyKey struct {
	password string
	hash     string
}

type verifyEntry struct {
	key verifyKey
	ok  bool
}

// NewVerifyCache creates a cache with the given capacity.
func NewVerifyCache(capacity int) *VerifyCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &VerifyCache{
		items:    make(map[verifyKey]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the cached verdict for (password, hash) and whether one
// was present. A hit moves the entry to the front.
func (c *VerifyCache) Get(password, hash string) (ok, cached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[verifyKey{password, hash}]
	if !exists {
		return false, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*verifyEntry).ok, true
}

// Set records a verdict, evicting the least recently used entries when
// at capacity.
func (c *VerifyCache) Set(password, hash string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := verifyKey{password, hash}
	if elem, exists := c.items[key]; exists {
		elem.Value.(*verifyEntry).ok = ok
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		delete(c.items, oldest.Value.(*verifyEntry).key)
		c.order.Remove(oldest)
	}

	c.items[key] = c.order.PushFront(&verifyEntry{key: key, ok: ok})
}

// Clear drops all entries. Called when the credential file changes.
func (c *VerifyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[verifyKey]*list.Element)
	c.order.Init()
}

// Size returns the current number of entries.
func (c *VerifyCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
