package router_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/modelops/router"
)

func ExampleRouter_Route() {
	call := func(ctx context.Context, req router.Request, target router.Target, _ any) (*router.CallResult, error) {
		if target.Name == "p" {
			return nil, errors.New("provider down")
		}
		return &router.CallResult{Content: "ok from " + target.Name}, nil
	}

	cfg := router.DefaultConfig()
	cfg.EnableBatching = false
	cfg.RetryDelay = time.Millisecond
	r, err := router.New(cfg, call)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer r.Close()

	ctx := context.Background()
	_ = r.AddTarget(ctx, router.Target{Name: "p", Provider: "openai"})
	_ = r.AddTarget(ctx, router.Target{Name: "f", Provider: "anthropic"})
	_ = r.SetFallbacks("f")

	resp, err := r.Route(ctx, router.Request{ID: "1", Prompt: "x"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(resp.Target)
	fmt.Println(r.Stats().Failovers)
	// Output:
	// f
	// 1
}

func ExampleRouter_RouteBatch() {
	call := func(ctx context.Context, req router.Request, target router.Target, _ any) (*router.CallResult, error) {
		return &router.CallResult{Content: "echo:" + req.Prompt}, nil
	}

	cfg := router.DefaultConfig()
	cfg.EnableBatching = false
	r, err := router.New(cfg, call)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer r.Close()

	ctx := context.Background()
	_ = r.AddTarget(ctx, router.Target{Name: "m"})

	resps, err := r.RouteBatch(ctx, []router.Request{
		{ID: "1", Prompt: "one"},
		{ID: "2", Prompt: "two"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, resp := range resps {
		fmt.Println(resp.ID, resp.Content)
	}
	// Output:
	// 1 echo:one
	// 2 echo:two
}
