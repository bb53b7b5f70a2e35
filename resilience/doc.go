// Package resilience provides the failure-handling primitives used by the
// model router: retry with backoff, per-key concurrency limiting, and an
// optional circuit breaker.
//
// The primitives are deliberately small and composable; the router owns the
// composition order (limit, then break, then retry) because the routing
// contract pins it down.
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: time.Second,
//	})
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    return callBackend(ctx)
//	})
package resilience
