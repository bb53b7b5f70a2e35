// Package cache provides a bounded in-memory cache with pluggable eviction.
//
// The cache is generic over key and value types and supports three eviction
// strategies: least-recently-used (LRU), least-frequently-used (LFU), and
// first-in-first-out (FIFO). Every entry carries a TTL; expired entries are
// discovered lazily on lookup and removed as a side effect.
//
// LRU and FIFO maintain an intrusive doubly linked list alongside the lookup
// map, giving O(1) get, set, delete, and eviction. LFU eviction scans tracked
// frequencies for the minimum and is O(n) on that path only.
//
// Lookups never return errors; absence is represented as (zero, false).
//
//	c := cache.New[string, string](cache.Config{
//	    MaxSize:  1000,
//	    TTL:      time.Hour,
//	    Strategy: cache.LRU,
//	})
//	c.Set("k", "v")
//	v, ok := c.Get("k")
package cache
