package catalog

import (
	"container/list"
	"sync"
	"time"

	"bibliotech-bot/internal/domain/model"
	"bibliotech-bot/internal/infra/metrics"
)

// resultCache memoizes catalog responses per query. Entries expire lazily
// after the TTL and the cache holds at most capacity distinct queries,
// evicting the least recently used on overflow. Safe for concurrent use;
// concurrent misses for one key may each go upstream, the later store wins.
type resultCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[model.CatalogQuery]*list.Element
	order    *list.List // front = most recently used

	now func() time.Time // test hook
}

type cacheEntry struct {
	key       model.CatalogQuery
	books     []model.Book
	expiresAt time.Time
}

func newResultCache(ttl time.Duration, capacity int) *resultCache {
	return &resultCache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[model.CatalogQuery]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// get returns the cached value for q while it is still fresh. An expired
// entry is removed and reported as a miss.
func (c *resultCache) get(q model.CatalogQuery) ([]model.Book, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[q]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*cacheEntry)
	if !c.now().Before(ent.expiresAt) {
		c.remove(el)
		metrics.IncCacheEviction("books", "expired")
		return nil, false
	}
	c.order.MoveToFront(el)
	return ent.books, true
}

// put stores a fresh value for q, evicting the least recently used entry
// when the cache is full.
func (c *resultCache) put(q model.CatalogQuery, books []model.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := &cacheEntry{key: q, books: books, expiresAt: c.now().Add(c.ttl)}
	if el, ok := c.entries[q]; ok {
		el.Value = ent
		c.order.MoveToFront(el)
		return
	}
	if c.capacity > 0 && c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
			metrics.IncCacheEviction("books", "capacity")
		}
	}
	c.entries[q] = c.order.PushFront(ent)
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// remove must be called with the lock held.
func (c *resultCache) remove(el *list.Element) {
	ent := el.Value.(*cacheEntry)
	delete(c.entries, ent.key)
	c.order.Remove(el)
}
