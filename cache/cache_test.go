package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	c := New[string, int](Config{})

	stats := c.Stats()
	if stats.MaxSize != 1000 {
		t.Errorf("MaxSize = %d, want 1000", stats.MaxSize)
	}
	if stats.Strategy != LRU {
		t.Errorf("Strategy = %q, want %q", stats.Strategy, LRU)
	}
	if stats.HitRate != 0 {
		t.Errorf("HitRate with no accesses = %f, want 0", stats.HitRate)
	}
}

func TestCache_GetSetDelete(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10, TTL: time.Minute, Strategy: LRU})

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should return ok=false")
	}

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get after Set should return ok=true")
	}
	if got != 1 {
		t.Errorf("Get returned %d, want 1", got)
	}

	if !c.Delete("a") {
		t.Error("Delete of existing key should return true")
	}
	if c.Delete("a") {
		t.Error("Delete of absent key should return false")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Delete should return ok=false")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := New[string, int](Config{MaxSize: 2, TTL: time.Second, Strategy: LRU})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // promote a over b
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error(`"b" should have been evicted as least-recently-used`)
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf(`Get("a") = (%d, %t), want (1, true)`, v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf(`Get("c") = (%d, %t), want (3, true)`, v, ok)
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Errorf("Evictions = %d, want 1", ev)
	}
}

func TestCache_CapacityNeverExceeded(t *testing.T) {
	const capacity = 5
	c := New[string, int](Config{MaxSize: capacity, TTL: time.Minute, Strategy: LRU})

	for i := 0; i < capacity+3; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
		if size := c.Len(); size > capacity {
			t.Fatalf("cache size = %d, exceeds capacity %d", size, capacity)
		}
	}

	// key-0 through key-2 are the least recently used and must be gone.
	for i := 0; i < 3; i++ {
		if _, ok := c.Get(fmt.Sprintf("key-%d", i)); ok {
			t.Errorf("key-%d should have been evicted", i)
		}
	}
}

func TestCache_FIFOEviction(t *testing.T) {
	c := New[string, int](Config{MaxSize: 2, TTL: time.Minute, Strategy: FIFO})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // FIFO must not promote on access
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error(`"a" should have been evicted as first inserted`)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error(`"b" should still be present`)
	}
}

func TestCache_LFUEviction(t *testing.T) {
	c := New[string, int](Config{MaxSize: 2, TTL: time.Minute, Strategy: LFU})

	c.Set("hot", 1)
	c.Set("cold", 2)
	c.Get("hot")
	c.Get("hot")
	c.Get("cold")
	c.Set("new", 3)

	if _, ok := c.Get("cold"); ok {
		t.Error(`"cold" should have been evicted with the lowest frequency`)
	}
	if _, ok := c.Get("hot"); !ok {
		t.Error(`"hot" should still be present`)
	}
	if _, ok := c.Get("new"); !ok {
		t.Error(`"new" should still be present`)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10, TTL: 30 * time.Millisecond, Strategy: LRU})

	c.Set("k", 42)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Get immediately after Set should hit")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Get after TTL should miss")
	}
	if size := c.Stats().Size; size != 0 {
		t.Errorf("Size after expired lookup = %d, want 0", size)
	}
}

func TestCache_SetRefreshesExpiry(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10, TTL: 60 * time.Millisecond, Strategy: LRU})

	c.Set("k", 1)
	time.Sleep(40 * time.Millisecond)
	c.Set("k", 2) // refresh in place
	time.Sleep(40 * time.Millisecond)

	// 80ms after the first Set but only 40ms after the refresh.
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("refreshed entry should not have expired")
	}
	if v != 2 {
		t.Errorf("Get returned %d, want 2", v)
	}
}

func TestCache_Has(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10, TTL: time.Minute, Strategy: LRU})

	c.Set("k", 1)
	if !c.Has("k") {
		t.Error("Has should report existing key")
	}
	if c.Has("missing") {
		t.Error("Has should not report absent key")
	}

	stats := c.Stats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Has must not count as access: hits=%d misses=%d", stats.Hits, stats.Misses)
	}
}

func TestCache_HasEvictsExpired(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10, TTL: 20 * time.Millisecond, Strategy: LRU})

	c.Set("k", 1)
	time.Sleep(40 * time.Millisecond)

	if c.Has("k") {
		t.Error("Has should not report expired key")
	}
	if size := c.Stats().Size; size != 0 {
		t.Errorf("expired key should be removed by Has, size = %d", size)
	}
}

func TestCache_Stats(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10, TTL: time.Minute, Strategy: LRU})

	c.Set("a", 1)
	c.Get("a")       // hit
	c.Get("a")       // hit
	c.Get("missing") // miss

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	want := 2.0 / 3.0
	if stats.HitRate != want {
		t.Errorf("HitRate = %f, want %f", stats.HitRate, want)
	}
}

func TestCache_Clear(t *testing.T) {
	c := New[string, int](Config{MaxSize: 10, TTL: time.Minute, Strategy: LRU})

	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")
	c.Clear()

	stats := c.Stats()
	if stats.Size != 0 || stats.Hits != 0 || stats.Misses != 0 || stats.Evictions != 0 {
		t.Errorf("Clear should reset all state, got %+v", stats)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Clear should miss")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[string, int](Config{MaxSize: 100, TTL: time.Minute, Strategy: LRU})

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key-%d-%d", g, i%10)
				c.Set(key, i)
				c.Get(key)
				if i%7 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if size := c.Len(); size > 100 {
		t.Errorf("size = %d, exceeds capacity 100", size)
	}
}
