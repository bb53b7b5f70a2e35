// Package health reports the health of routing components.
//
// A Checker is anything that can judge its own state: a backend target, a
// cache, the router itself. Status is healthy, degraded, or unhealthy, and
// an Aggregator fans out over registered checkers in parallel and reduces to
// the worst observed status:
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	agg.Register(health.NewCacheChecker("responses", r.ResponseCacheStats, 0.9))
//	agg.Register(r.Health())
//
//	results := agg.CheckAll(ctx)
//	overall := health.Overall(results)
//
// Checks run under a per-check timeout; one slow checker degrades its own
// result, not the whole sweep.
package health
