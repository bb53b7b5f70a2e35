package router

import (
	"sync/atomic"
	"time"
)

// counters aggregates routing statistics. All fields are atomic so the hot
// path never takes the router lock.
type counters struct {
	total       atomic.Uint64
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
	batched     atomic.Uint64
	failovers   atomic.Uint64
	errors      atomic.Uint64

	latencySum atomic.Int64 // nanoseconds across completed requests
	completed  atomic.Uint64
}

func (c *counters) observeLatency(d time.Duration) {
	c.latencySum.Add(int64(d))
	c.completed.Add(1)
}

// Stats is a point-in-time snapshot of router activity.
type Stats struct {
	// TotalRequests counts Route and RouteBatch requests that resolved to a
	// registered target. Unknown-target rejections are not counted.
	TotalRequests uint64

	// CacheHits and CacheMisses count response-cache lookups.
	CacheHits   uint64
	CacheMisses uint64

	// CacheHitRate is CacheHits/(CacheHits+CacheMisses), 0 with no lookups.
	CacheHitRate float64

	// AvgLatency is the mean wall time of completed requests, cached ones
	// included.
	AvgLatency time.Duration

	// BatchedRequests counts requests that went through the batch buffer.
	BatchedRequests uint64

	// Failovers counts requests served by a fallback target.
	Failovers uint64

	// Errors counts requests that exhausted every target.
	Errors uint64

	// ActiveByTarget is the current in-flight call count per target.
	ActiveByTarget map[string]int

	// PendingBatch is the number of requests waiting in the batch buffer.
	PendingBatch int
}

// Stats returns a snapshot of router statistics.
func (r *Router) Stats() Stats {
	hits := r.counters.cacheHits.Load()
	misses := r.counters.cacheMisses.Load()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	var avg time.Duration
	if n := r.counters.completed.Load(); n > 0 {
		avg = time.Duration(r.counters.latencySum.Load() / int64(n))
	}

	pending := 0
	if r.batcher != nil {
		pending = int(r.batcher.pending.Load())
	}

	return Stats{
		TotalRequests:   r.counters.total.Load(),
		CacheHits:       hits,
		CacheMisses:     misses,
		CacheHitRate:    rate,
		AvgLatency:      avg,
		BatchedRequests: r.counters.batched.Load(),
		Failovers:       r.counters.failovers.Load(),
		Errors:          r.counters.errors.Load(),
		ActiveByTarget:  r.limiter.ActiveAll(),
		PendingBatch:    pending,
	}
}
