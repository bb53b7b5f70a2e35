package router

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func benchRouter(b *testing.B) *Router {
	b.Helper()
	cfg := DefaultConfig()
	cfg.EnableBatching = false
	cfg.RetryDelay = time.Millisecond
	r, err := New(cfg, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		return &CallResult{Content: "ok"}, nil
	})
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	b.Cleanup(func() { _ = r.Close() })
	if err := r.AddTarget(context.Background(), Target{Name: "m"}); err != nil {
		b.Fatalf("AddTarget() error = %v", err)
	}
	return r
}

func BenchmarkRoute_CacheHit(b *testing.B) {
	r := benchRouter(b)
	ctx := context.Background()
	if _, err := r.Route(ctx, Request{ID: "warm", Prompt: "hot"}); err != nil {
		b.Fatalf("warm Route() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Route(ctx, Request{ID: "1", Prompt: "hot"}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRoute_CacheMiss(b *testing.B) {
	r := benchRouter(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Route(ctx, Request{ID: "1", Prompt: fmt.Sprintf("p%d", i)}); err != nil {
			b.Fatal(err)
		}
	}
}
