package cache_test

import (
	"fmt"
	"time"

	"github.com/jonwraymond/modelops/cache"
)

func ExampleCache() {
	c := cache.New[string, string](cache.Config{
		MaxSize:  2,
		TTL:      time.Hour,
		Strategy: cache.LRU,
	})

	c.Set("a", "alpha")
	c.Set("b", "bravo")
	c.Get("a")          // promote "a"
	c.Set("c", "charlie") // evicts "b"

	_, ok := c.Get("b")
	fmt.Println("b present:", ok)

	v, _ := c.Get("a")
	fmt.Println("a:", v)
	// Output:
	// b present: false
	// a: alpha
}

func ExampleResponseKey() {
	key := cache.ResponseKey("primary", "hello world")
	fmt.Println(key == cache.ResponseKey("primary", "hello world"))
	// Output:
	// true
}
