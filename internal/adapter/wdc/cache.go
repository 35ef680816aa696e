package wdc

import (
	"context"
	"sync"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU cache keyed by month.
// Only completed months are cached: a published month's bulletin is
// immutable, while the in-progress month grows a line per day and is
// always refetched.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a bulletin fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchMonth(ctx context.Context, m domain.Month) (string, error) {
	cacheable := !m.Contains(c.clock.Now())

	if cacheable {
		if text, ok := c.cache.get(m.String()); ok {
			c.metrics.BulletinCache.WithLabelValues("hit").Inc()
			return text, nil
		}
		c.metrics.BulletinCache.WithLabelValues("miss").Inc()
	}

	text, err := c.inner.FetchMonth(ctx, m)
	if err != nil {
		return "", err
	}
	if cacheable && text != "" {
		c.cache.put(m.String(), text)
	}
	return text, nil
}

// lruCache is a simple thread-safe LRU cache for bulletin texts.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value string
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
