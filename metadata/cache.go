package metadata

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	doc      *Document
	storedAt time.Time
}

// documentCache is an LRU of fetched documents with a per-entry lifetime.
// A nil cache stores nothing.
type documentCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	store *lru.Cache[string, cacheEntry]
	now   func() time.Time
}

func newDocumentCache(entries int, ttl time.Duration) *documentCache {
	if entries <= 0 {
		return nil
	}
	store, _ := lru.New[string, cacheEntry](entries)
	return &documentCache{
		ttl:   ttl,
		store: store,
		now:   time.Now,
	}
}

func (c *documentCache) Get(uri string) (*Document, bool) {
	if c == nil || uri == "" {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.store.Get(uri)
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.mu.Lock()
		c.store.Remove(uri)
		c.mu.Unlock()
		return nil, false
	}
	return entry.doc.Clone(), true
}

func (c *documentCache) Add(uri string, doc *Document) {
	if c == nil || uri == "" || doc == nil {
		return
	}
	c.mu.Lock()
	c.store.Add(uri, cacheEntry{doc: doc.Clone(), storedAt: c.now()})
	c.mu.Unlock()
}

func (c *documentCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Len()
}
