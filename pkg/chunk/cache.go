// pkg/chunk/cache.go

package chunk

import (
	"sync"
	"time"

	"LitView/pkg/metrics"
)

type memItem struct {
	atime time.Time
	page  *Page
}

// Cache keeps decompressed chunks keyed by chunk path. Entries larger than
// the per-entry ceiling are never stored. With a zero capacity nothing is
// ever evicted.
type Cache struct {
	sync.Mutex
	capacity int64
	maxEntry int64
	used     int64
	pages    map[string]memItem
}

func NewCache(config *Config) *Cache {
	maxEntry := config.MaxEntry
	if maxEntry <= 0 {
		maxEntry = DefaultMaxEntry
	}
	return &Cache{
		capacity: config.CacheSize << 20,
		maxEntry: maxEntry,
		pages:    make(map[string]memItem),
	}
}

func (c *Cache) usedMemory() int64 {
	c.Lock()
	defer c.Unlock()
	return c.used
}

// Stats returns the number of entries and the bytes they hold.
func (c *Cache) Stats() (int64, int64) {
	c.Lock()
	defer c.Unlock()
	return int64(len(c.pages)), c.used
}

// Fetch returns the cached page for key.
func (c *Cache) Fetch(key string) (*Page, bool) {
	c.Lock()
	defer c.Unlock()
	item, ok := c.pages[key]
	if !ok {
		metrics.CacheEvent("miss")
		return nil, false
	}
	c.pages[key] = memItem{time.Now(), item.page}
	metrics.CacheEvent("hit")
	return item.page, true
}

// Store caches p under key, replacing any previous page. It reports false
// and leaves the cache unchanged when p is over the size ceiling.
func (c *Cache) Store(key string, p *Page) bool {
	size := int64(p.Len())
	if size > c.maxEntry || (c.capacity > 0 && size > c.capacity) {
		metrics.CacheEvent("reject")
		logger.Debugf("not caching %s: %d bytes is over the limit", key, size)
		return false
	}
	c.Lock()
	defer c.Unlock()
	if old, ok := c.pages[key]; ok {
		c.delete(key, old.page)
	}
	c.pages[key] = memItem{time.Now(), p}
	c.used += size
	metrics.CacheBytes(size)
	metrics.CacheEvent("store")
	if c.capacity > 0 && c.used > c.capacity {
		c.cleanup(key)
	}
	return true
}

func (c *Cache) delete(key string, p *Page) {
	size := int64(p.Len())
	c.used -= size
	metrics.CacheBytes(-size)
	delete(c.pages, key)
}

// Remove drops key from the cache.
func (c *Cache) Remove(key string) {
	c.Lock()
	defer c.Unlock()
	if item, ok := c.pages[key]; ok {
		c.delete(key, item.page)
		logger.Debugf("remove %s from cache", key)
	}
}

func (c *Cache) evict(key string, item memItem, now time.Time) {
	logger.Debugf("remove %s from cache, age: %s", key, now.Sub(item.atime))
	c.delete(key, item.page)
	metrics.CacheEvent("evict")
}

// locked
func (c *Cache) cleanup(keep string) {
	var cnt int
	var lastKey string
	var lastValue memItem
	var now = time.Now()
	for c.used > c.capacity && len(c.pages) > 1 {
		// for each two random keys, then compare the access time, evict the older one
		for k, v := range c.pages {
			if k == keep {
				continue
			}
			if cnt == 0 || lastValue.atime.After(v.atime) {
				lastKey = k
				lastValue = v
			}
			cnt++
			if cnt > 1 {
				c.evict(lastKey, lastValue, now)
				cnt = 0
				if c.used <= c.capacity {
					return
				}
			}
		}
		// odd one out
		if cnt == 1 {
			c.evict(lastKey, lastValue, now)
			cnt = 0
		}
	}
}
