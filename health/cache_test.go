package health

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonwraymond/modelops/cache"
)

func TestCacheChecker(t *testing.T) {
	c := cache.New[string, int](cache.Config{MaxSize: 10})
	checker := NewCacheChecker("responses", c.Stats, CacheCheckerConfig{WarningThreshold: 0.5})

	if got := checker.Name(); got != "responses" {
		t.Errorf("Name() = %q, want responses", got)
	}

	res := checker.Check(context.Background())
	if res.Status != StatusHealthy {
		t.Errorf("empty cache status = %v, want healthy", res.Status)
	}

	for i := range 5 {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	res = checker.Check(context.Background())
	if res.Status != StatusDegraded {
		t.Errorf("status at threshold = %v, want degraded", res.Status)
	}
	if res.Details["size"] != 5 {
		t.Errorf("details size = %v, want 5", res.Details["size"])
	}
}

func TestCacheChecker_ContextDone(t *testing.T) {
	c := cache.New[string, int](cache.Config{MaxSize: 10})
	checker := NewCacheChecker("responses", c.Stats, CacheCheckerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := checker.Check(ctx); res.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy for done context", res.Status)
	}
}
