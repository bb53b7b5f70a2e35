package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newBatchRouter builds a router with batching enabled and the given size
// and timeout.
func newBatchRouter(t *testing.T, size int, timeout time.Duration, call CallFunc) *Router {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.BatchSize = size
	cfg.BatchTimeout = timeout
	r, err := New(cfg, call)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestBatch_FlushesAtSizeThreshold(t *testing.T) {
	var calls atomic.Int64
	// Timeout far away so only the size threshold can flush.
	r := newBatchRouter(t, 2, time.Hour, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		calls.Add(1)
		return &CallResult{Content: "ok:" + req.Prompt}, nil
	})
	addTargets(t, r, "m")

	var wg sync.WaitGroup
	results := make([]*Response, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := r.Route(context.Background(), Request{ID: fmt.Sprint(i), Prompt: fmt.Sprintf("p%d", i)})
			if err != nil {
				t.Errorf("Route() error = %v", err)
				return
			}
			results[i] = resp
		}()
	}
	wg.Wait()

	if calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2", calls.Load())
	}
	for i, resp := range results {
		want := fmt.Sprintf("ok:p%d", i)
		if resp == nil || resp.Content != want {
			t.Errorf("results[%d] = %+v, want content %q", i, resp, want)
		}
	}
	if stats := r.Stats(); stats.BatchedRequests != 2 {
		t.Errorf("BatchedRequests = %d, want 2", stats.BatchedRequests)
	}
}

func TestBatch_FlushesOnTimeout(t *testing.T) {
	var calls atomic.Int64
	// Size threshold unreachable so only the timer can flush.
	r := newBatchRouter(t, 100, 20*time.Millisecond, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		calls.Add(1)
		return &CallResult{Content: "ok"}, nil
	})
	addTargets(t, r, "m")

	start := time.Now()
	resp, err := r.Route(context.Background(), Request{ID: "1", Prompt: "lonely"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q, want ok", resp.Content)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("request completed after %v, expected to wait for the batch timer", elapsed)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

func TestBatch_CacheHitBypassesBuffer(t *testing.T) {
	var calls atomic.Int64
	r := newBatchRouter(t, 1, 10*time.Millisecond, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		calls.Add(1)
		return &CallResult{Content: "ok"}, nil
	})
	addTargets(t, r, "m")

	if _, err := r.Route(context.Background(), Request{ID: "1", Prompt: "x"}); err != nil {
		t.Fatalf("first Route() error = %v", err)
	}
	resp, err := r.Route(context.Background(), Request{ID: "2", Prompt: "x"})
	if err != nil {
		t.Fatalf("second Route() error = %v", err)
	}
	if !resp.Cached {
		t.Error("second response should come from the cache, not the batcher")
	}
	if stats := r.Stats(); stats.BatchedRequests != 1 {
		t.Errorf("BatchedRequests = %d, want 1 (the cache hit never enqueued)", stats.BatchedRequests)
	}
}

func TestBatch_CloseFlushesPending(t *testing.T) {
	var calls atomic.Int64
	// Neither threshold can fire on its own before Close.
	r := newBatchRouter(t, 100, time.Hour, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		calls.Add(1)
		return &CallResult{Content: "flushed"}, nil
	})
	addTargets(t, r, "m")

	done := make(chan *Response, 1)
	go func() {
		resp, err := r.Route(context.Background(), Request{ID: "1", Prompt: "x"})
		if err != nil {
			t.Errorf("Route() error = %v", err)
		}
		done <- resp
	}()

	// Let the request reach the buffer before closing.
	time.Sleep(20 * time.Millisecond)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case resp := <-done:
		if resp == nil || resp.Content != "flushed" {
			t.Errorf("pending request resolved to %+v, want flushed content", resp)
		}
	case <-time.After(time.Second):
		t.Fatal("pending request was not flushed on Close")
	}

	if _, err := r.Route(context.Background(), Request{ID: "2", Prompt: "y"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Route() after Close error = %v, want ErrClosed", err)
	}
}

func TestBatch_PendingLengthReported(t *testing.T) {
	r := newBatchRouter(t, 100, time.Hour, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		return &CallResult{Content: "ok"}, nil
	})
	addTargets(t, r, "m")

	for i := range 3 {
		go func() {
			_, _ = r.Route(context.Background(), Request{ID: fmt.Sprint(i), Prompt: fmt.Sprintf("p%d", i)})
		}()
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if r.Stats().PendingBatch == 3 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Errorf("PendingBatch = %d, want 3", r.Stats().PendingBatch)
}

func TestRouteBatch_PreservesInputOrder(t *testing.T) {
	var calls atomic.Int64
	r := newDirectRouter(t, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		calls.Add(1)
		// Finish out of submission order.
		time.Sleep(time.Duration(len(req.Prompt)) * 5 * time.Millisecond)
		return &CallResult{Content: "out:" + req.Prompt}, nil
	})
	addTargets(t, r, "m")

	// Warm the cache for the third request.
	if _, err := r.Route(context.Background(), Request{ID: "warm", Prompt: "ccc"}); err != nil {
		t.Fatalf("warm Route() error = %v", err)
	}

	reqs := []Request{
		{ID: "1", Prompt: "aaaaa"},
		{ID: "2", Prompt: "b"},
		{ID: "3", Prompt: "ccc"},
		{ID: "4", Prompt: "dd"},
	}
	resps, err := r.RouteBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("RouteBatch() error = %v", err)
	}
	if len(resps) != len(reqs) {
		t.Fatalf("len(resps) = %d, want %d", len(resps), len(reqs))
	}
	for i, resp := range resps {
		if resp.ID != reqs[i].ID {
			t.Errorf("resps[%d].ID = %q, want %q", i, resp.ID, reqs[i].ID)
		}
	}
	if !resps[2].Cached {
		t.Error("resps[2] should be served from cache")
	}
	if resps[0].Cached || resps[1].Cached || resps[3].Cached {
		t.Error("only the warmed request should be cached")
	}
	if got := calls.Load(); got != 4 { // 1 warm + 3 misses
		t.Errorf("backend calls = %d, want 4", got)
	}
}

func TestRouteBatch_UnknownTarget(t *testing.T) {
	r := newDirectRouter(t, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		return &CallResult{Content: "ok"}, nil
	})
	addTargets(t, r, "m")

	_, err := r.RouteBatch(context.Background(), []Request{
		{ID: "1", Prompt: "x"},
		{ID: "2", Prompt: "y", Target: "ghost"},
	})
	if !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("RouteBatch() error = %v, want ErrUnknownTarget", err)
	}
}

func TestRouteBatch_FirstFailureAborts(t *testing.T) {
	r := newDirectRouter(t, func(ctx context.Context, req Request, target Target, _ any) (*CallResult, error) {
		if req.Prompt == "bad" {
			return nil, errors.New("poisoned request")
		}
		return &CallResult{Content: "ok"}, nil
	})
	addTargets(t, r, "m")

	_, err := r.RouteBatch(context.Background(), []Request{
		{ID: "1", Prompt: "good"},
		{ID: "2", Prompt: "bad"},
	})
	if !errors.Is(err, ErrTargetsExhausted) {
		t.Errorf("RouteBatch() error = %v, want ErrTargetsExhausted", err)
	}
}
