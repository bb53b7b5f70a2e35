package cache

import (
	"sync"
	"time"
)

// Strategy selects the eviction policy for a Cache.
type Strategy string

const (
	// LRU evicts the least-recently-used entry.
	LRU Strategy = "lru"
	// LFU evicts the entry with the lowest access frequency.
	LFU Strategy = "lfu"
	// FIFO evicts the oldest inserted entry.
	FIFO Strategy = "fifo"
)

// Config configures a Cache.
type Config struct {
	// MaxSize is the maximum number of live entries.
	// Default: 1000
	MaxSize int

	// TTL is the time-to-live applied to every entry on insert and refresh.
	// Default: 1 hour
	TTL time.Duration

	// Strategy is the eviction policy.
	// Default: LRU
	Strategy Strategy
}

// entry is an intrusive list node owned by exactly one Cache.
// prev/next are nil for LFU, which tracks frequency instead of order.
type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	freq      uint64
	prev      *entry[K, V]
	next      *entry[K, V]
}

// Cache is a bounded TTL cache with a pluggable eviction strategy.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: operations never fail; absent or expired keys read as (zero, false).
// - Consistency: the lookup map and the ordering list (or frequency counters)
//   agree after every public operation returns.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	config  Config
	entries map[K]*entry[K, V]

	// head is most-recently-used (LRU) or newest inserted (FIFO); tail is
	// the eviction candidate. Unused for LFU.
	head *entry[K, V]
	tail *entry[K, V]

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache with the given configuration.
func New[K comparable, V any](config Config) *Cache[K, V] {
	// Apply defaults
	if config.MaxSize <= 0 {
		config.MaxSize = 1000
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.Strategy == "" {
		config.Strategy = LRU
	}

	return &Cache[K, V]{
		config:  config,
		entries: make(map[K]*entry[K, V]),
	}
}

// Get retrieves a value. An expired entry reads as a miss and is removed as
// a side effect. Every call counts as a hit or a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	switch c.config.Strategy {
	case LRU:
		c.moveToFront(e)
	case LFU:
		e.freq++
	}
	return e.value, true
}

// Set stores a value with expiry now + TTL. An existing key is refreshed in
// place (and promoted for LRU). A new key at capacity evicts one entry first.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = now.Add(c.config.TTL)
		if c.config.Strategy == LRU {
			c.moveToFront(e)
		}
		return
	}

	if len(c.entries) >= c.config.MaxSize {
		c.evictOne()
	}

	e := &entry[K, V]{
		key:       key,
		value:     value,
		expiresAt: now.Add(c.config.TTL),
	}
	c.entries[key] = e
	if c.config.Strategy != LFU {
		c.pushFront(e)
	}
}

// Delete removes a key and its bookkeeping. Returns whether anything was removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeEntry(e)
	return true
}

// Has reports whether a live entry exists for key. It does not touch hit/miss
// counters or recency order, but an expired match is removed.
func (c *Cache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return false
	}
	return true
}

// Clear resets all entries and counters.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.head = nil
	c.tail = nil
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// Len returns the number of resident entries, expired ones included until
// they are discovered by a lookup.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats contains cache statistics.
type Stats struct {
	Size      int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
	MaxSize   int
	Strategy  Strategy
}

// Stats returns a snapshot of cache statistics. HitRate is hits/(hits+misses)
// and 0 when there have been no accesses.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rate float64
	if total := c.hits + c.misses; total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:      len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   rate,
		MaxSize:   c.config.MaxSize,
		Strategy:  c.config.Strategy,
	}
}

// evictOne removes one entry according to the configured strategy.
// Caller holds c.mu.
func (c *Cache[K, V]) evictOne() {
	switch c.config.Strategy {
	case LFU:
		// Linear scan for the minimum frequency. This is the one non-O(1)
		// eviction path; ties resolve to the first minimum encountered,
		// which is an implementation choice, not a contract.
		var victim *entry[K, V]
		for _, e := range c.entries {
			if victim == nil || e.freq < victim.freq {
				victim = e
			}
		}
		if victim != nil {
			c.removeEntry(victim)
			c.evictions++
		}
	default:
		// LRU and FIFO both evict the list tail: least-recently-used for
		// LRU, first-inserted for FIFO (FIFO never reorders).
		if c.tail != nil {
			c.removeEntry(c.tail)
			c.evictions++
		}
	}
}

// removeEntry unlinks e from the map and, when present, the list.
// Caller holds c.mu.
func (c *Cache[K, V]) removeEntry(e *entry[K, V]) {
	delete(c.entries, e.key)
	if c.config.Strategy == LFU {
		return
	}
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
	e.prev = nil
	e.next = nil
}

// pushFront links e as the list head. Caller holds c.mu.
func (c *Cache[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

// moveToFront promotes e to the list head. Caller holds c.mu.
func (c *Cache[K, V]) moveToFront(e *entry[K, V]) {
	if c.head == e {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if c.tail == e {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}
