package cache

import (
	"sync"
	"time"
)

type entry struct {
	value      any
	expiration int64
}

// Cache is a concurrency-safe in-memory map whose entries expire after a TTL.
type Cache struct {
	items map[string]entry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts a janitor that drops expired entries every
// cleanupEvery. Call Close to stop it.
func New(defaultTTL, cleanupEvery time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]entry),
		ttl:   defaultTTL,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupEvery > 0 {
		go c.cleanupExpired(cleanupEvery)
	}
	return c
}

func (c *Cache) expiry(ttl []time.Duration) int64 {
	d := c.ttl
	if len(ttl) > 0 {
		d = ttl[0]
	}
	return c.now().Add(d).UnixNano()
}

// Set stores value under key, using the default TTL unless one is given.
func (c *Cache) Set(key string, value any, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{value: value, expiration: c.expiry(ttl)}
}

// GetValue returns the value for key if it has not expired.
func (c *Cache) GetValue(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found || c.now().UnixNano() > item.expiration {
		return nil, false
	}
	return item.value, true
}

// GetOrCreate returns the live value for key, creating it when missing. Every
// call pushes the expiration back, so only idle keys expire.
func (c *Cache) GetOrCreate(key string, create func() any, ttl ...time.Duration) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found || c.now().UnixNano() > item.expiration {
		item.value = create()
	}
	item.expiration = c.expiry(ttl)
	c.items[key] = item
	return item.value
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Size returns the number of stored entries, expired or not.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the janitor.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for key, item := range c.items {
		if now > item.expiration {
			delete(c.items, key)
		}
	}
}
