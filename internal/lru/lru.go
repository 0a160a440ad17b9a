package lru

import (
	"container/list"
	"sync"
)

// Cache is a fixed-capacity map that evicts the least recently used entry
// once capacity is reached. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[K]*list.Element
	onEvict  func(K, V)
}

type entry[K comparable, V any] struct {
	key K
	val V
}

// New returns a cache holding at most capacity entries. A non-positive
// capacity is treated as 1. onEvict, if non-nil, is called (without the lock
// held) for every entry pushed out by capacity pressure.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
		onEvict:  onEvict,
	}
}

// Get returns the value for k and marks it most recently used.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[k]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[K, V]).val, true
}

// Put inserts or replaces k. It reports whether an older entry was evicted.
func (c *Cache[K, V]) Put(k K, v V) bool {
	c.mu.Lock()
	if el, ok := c.items[k]; ok {
		el.Value.(*entry[K, V]).val = v
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return false
	}
	c.items[k] = c.order.PushFront(&entry[K, V]{key: k, val: v})
	var evicted *entry[K, V]
	if c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		evicted = last.Value.(*entry[K, V])
		delete(c.items, evicted.key)
	}
	c.mu.Unlock()
	if evicted == nil {
		return false
	}
	if c.onEvict != nil {
		c.onEvict(evicted.key, evicted.val)
	}
	return true
}

// Take removes k and returns its value. Used for single-use entries.
func (c *Cache[K, V]) Take(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[k]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.Remove(el)
	delete(c.items, k)
	return el.Value.(*entry[K, V]).val, true
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
