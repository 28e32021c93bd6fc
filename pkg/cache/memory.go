package cache

import (
	"context"
	"sync"
	"time"

	"github.com/matst80/store-locator/pkg/common/jsoncompat"
)

type localEntry struct {
	expires time.Time
	data    []byte
}

// MemoryCache is the in-process fallback used when no redis address is
// configured. Values are stored encoded so callers never share memory.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]localEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]localEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string, out any) error {
	c.mu.Lock()
	entry, found := c.entries[key]
	if found && !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		delete(c.entries, key)
		found = false
	}
	c.mu.Unlock()
	if !found {
		return ErrCacheMiss
	}
	return jsoncompat.Unmarshal(entry.data, out)
}

// Set stores value; a zero expiration keeps it until deleted.
func (c *MemoryCache) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	data, err := jsoncompat.Marshal(value)
	if err != nil {
		return err
	}
	entry := localEntry{data: data}
	if expiration > 0 {
		entry.expires = c.now().Add(expiration)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
