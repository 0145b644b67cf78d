package textnorm

import (
	"sync"
)

// DefaultCacheSize is the number of normalized strings kept in memory.
const DefaultCacheSize = 1024

// Cache is a thread-safe least recently used string memo. When full, the entry
// that was read or written longest ago is evicted.
type Cache struct {
	mutex    sync.Mutex
	capacity int
	items    map[string]*cacheNode
	head     *cacheNode // Most recently used
	tail     *cacheNode // Least recently used
	hits     int64
	misses   int64
}

type cacheNode struct {
	key   string
	value string
	prev  *cacheNode
	next  *cacheNode
}

// CacheStats is a point-in-time snapshot of cache usage.
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
}

// NewCache creates a new cache with the specified capacity
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}

	cache := &Cache{
		capacity: capacity,
		items:    make(map[string]*cacheNode, capacity),
	}

	// Initialize dummy head and tail nodes
	cache.head = &cacheNode{}
	cache.tail = &cacheNode{}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// Get retrieves a value from the cache and marks it as recently used
func (c *Cache) Get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, exists := c.items[key]; exists {
		c.moveToFront(node)
		c.hits++
		return node.value, true
	}

	c.misses++
	return "", false
}

// Put adds or updates a key-value pair in the cache
func (c *Cache) Put(key, value string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, exists := c.items[key]; exists {
		node.value = value
		c.moveToFront(node)
		return
	}

	node := &cacheNode{key: key, value: value}
	c.addToFront(node)
	c.items[key] = node

	if len(c.items) > c.capacity {
		c.evictLRU()
	}
}

// Contains reports whether key is cached without touching its recency.
func (c *Cache) Contains(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, ok := c.items[key]
	return ok
}

// Clear removes all items and resets the counters
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*cacheNode, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.hits = 0
	c.misses = 0
}

// Len returns the current number of items in the cache
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Capacity returns the maximum capacity of the cache
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.hits + c.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate,
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

func (c *Cache) addToFront(node *cacheNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *Cache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (c *Cache) moveToFront(node *cacheNode) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *Cache) evictLRU() {
	lru := c.tail.prev
	if lru == c.head {
		return
	}
	c.removeNode(lru)
	delete(c.items, lru.key)
}
