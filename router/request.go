package router

import (
	"context"
	"time"
)

// Request is a single generation request.
type Request struct {
	// ID identifies the request in responses and telemetry.
	ID string

	// Prompt is the input text. It also keys the response and context caches.
	Prompt string

	// Target names the backend to route to. Empty means the primary target.
	Target string

	// Params carries optional generation parameters passed through to the
	// backend call untouched.
	Params map[string]any
}

// Response is the result of a routed request.
type Response struct {
	// ID echoes the request ID.
	ID string

	// Content is the generated output.
	Content string

	// Target is the target that actually served the request. On failover
	// this differs from the requested target.
	Target string

	// Latency is the wall time Route spent producing the response. Cached
	// responses report near-zero latency.
	Latency time.Duration

	// Cached reports whether the response came from the response cache.
	Cached bool
}

// CallResult is what a backend call produces.
type CallResult struct {
	// Content is the generated output.
	Content string

	// Context is opaque provider state (conversation context, KV-cache
	// handle) stored in the context cache and handed back on the next call
	// for the same prompt. Nil means nothing to keep.
	Context any
}

// CallFunc performs one backend call. It is the router's only contact with a
// real provider and must be supplied by the host application.
//
// cachedContext is the most recent CallResult.Context stored for the
// request's prompt, or nil. Implementations must honor ctx, which carries
// the per-attempt timeout.
type CallFunc func(ctx context.Context, req Request, target Target, cachedContext any) (*CallResult, error)
