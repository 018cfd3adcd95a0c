package poller

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Entry is the type-erased view of a Query held by a Cache.
type Entry interface {
	Key() string
	Start(ctx context.Context)
	Stop()
	Invalidate()
}

// Cache indexes queries by key so mutations can invalidate everything under
// a key prefix.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Register adds e, replacing any entry with the same key.
func (c *Cache) Register(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.Key()] = e
}

// Keys returns the registered keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Invalidate forces a refetch of every query whose key equals prefix or
// starts with prefix followed by ':'. It returns the number invalidated.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for key, e := range c.entries {
		if key == prefix || strings.HasPrefix(key, prefix+":") {
			e.Invalidate()
			n++
		}
	}
	return n
}

// StartAll starts every registered query.
func (c *Cache) StartAll(ctx context.Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		e.Start(ctx)
	}
}

// StopAll stops every registered query and waits for their loops.
func (c *Cache) StopAll() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		e.Stop()
	}
}
