// Package cache holds a read-through session cache placed in front of a
// slower session store.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/pinto/core"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 500
)

// InMemoryCache implements core.Cache. An entry is served until either the
// cache TTL lapses or the session itself expires, whichever comes first.
type InMemoryCache struct {
	cache   map[string]*cachedRecord
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

var _ core.Cache = (*InMemoryCache)(nil)

type cachedRecord struct {
	session  core.Session
	cachedAt time.Time
}

func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}

	return &InMemoryCache{
		cache:   make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

// WithClock swaps the time source. Tests only.
func (c *InMemoryCache) WithClock(now func() time.Time) *InMemoryCache {
	c.now = now
	return c
}

func (c *InMemoryCache) Get(tokenHash string) (*core.Session, error) {
	now := c.now()

	c.mu.RLock()
	record, exists := c.cache[tokenHash]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	if now.Sub(record.cachedAt) > c.ttl || record.session.Expired(now) {
		atomic.AddInt64(&c.misses, 1)
		c.evict(tokenHash, record)
		return nil, core.ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	s := record.session
	return &s, nil
}

func (c *InMemoryCache) Set(tokenHash string, session *core.Session) error {
	if session == nil {
		return core.ErrInvalidSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// evict an arbitrary entry when full
	if _, replacing := c.cache[tokenHash]; !replacing && len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.cache[tokenHash] = &cachedRecord{
		session:  *session,
		cachedAt: c.now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

func (c *InMemoryCache) Delete(tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.cache[tokenHash]; existed {
		delete(c.cache, tokenHash)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedRecord)
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}

// evict drops a stale record unless a concurrent Set already replaced it.
func (c *InMemoryCache) evict(tokenHash string, stale *cachedRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.cache[tokenHash]; ok && current == stale {
		delete(c.cache, tokenHash)
		atomic.AddInt64(&c.evictions, 1)
	}
}
