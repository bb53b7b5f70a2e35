// Package router dispatches generation requests to named backend targets.
//
// A Router owns a registry of targets (one primary plus ordered fallbacks),
// a response cache and a context cache, and a single injected CallFunc that
// is the only point of contact with real providers. A routed request flows
// through cache lookup, optional batching, per-target concurrency limiting,
// retry with exponential backoff, and cascading failover:
//
//	resp, err := r.Route(ctx, router.Request{ID: "1", Prompt: "hello"})
//
// Concurrency is bounded per target: at most Config.MaxConcurrent calls are
// in flight against any one target, enforced by a weighted semaphore rather
// than polling. Batching, when enabled, funnels all pending requests through
// one owning goroutine that flushes on size or timeout.
//
// Contract:
// - Concurrency: Router is safe for concurrent use after New returns.
// - Context: Route and RouteBatch honor ctx for queueing, slot waits, retry
//   sleeps, and per-attempt timeouts.
// - Errors: an unknown target fails immediately with ErrUnknownTarget; an
//   exhausted failover cascade fails with an error wrapping
//   ErrTargetsExhausted and the originating target's last failure.
package router
