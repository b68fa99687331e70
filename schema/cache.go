package schema

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
)

// DefaultCacheSize bounds the parsed-model cache. Schema texts are small
// but clients re-send them on every keystroke of the autocomplete flow,
// so a shallow LRU pays for itself quickly.
const DefaultCacheSize = 128

type cacheEntry struct {
	key   string
	model *Model
}

// ModelCache is a thread-safe LRU of parsed schema models keyed by a
// digest of the schema text.
type ModelCache struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

// NewModelCache creates a cache holding up to maxSize parsed models.
// A non-positive size falls back to DefaultCacheSize.
func NewModelCache(maxSize int) *ModelCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &ModelCache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached model for a schema text, if present.
func (c *ModelCache) Get(text string) (*Model, bool) {
	key := cacheKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.order.MoveToFront(element)
	c.hits.Add(1)
	return element.Value.(*cacheEntry).model, true
}

// Put stores a parsed model, evicting the least recently used entry when
// the cache is full.
func (c *ModelCache) Put(text string, model *Model) {
	key := cacheKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		element.Value.(*cacheEntry).model = model
		c.order.MoveToFront(element)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, model: model})
	if len(c.items) > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(*cacheEntry).key)
			c.order.Remove(oldest)
		}
	}
}

// Len returns the number of cached models.
func (c *ModelCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cumulative hit and miss counts.
func (c *ModelCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
