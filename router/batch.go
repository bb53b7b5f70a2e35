package router

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/modelops/cache"
	"github.com/jonwraymond/modelops/observe"
)

// batchEntry pairs a pending request with its caller's completion channel.
// It lives only between enqueue and flush.
type batchEntry struct {
	ctx    context.Context
	req    Request
	target Target
	done   chan batchResult
}

type batchResult struct {
	resp *Response
	err  error
}

// batcher owns the pending buffer. Every enqueue and flush decision runs on
// its single goroutine, so the buffer is never shared across call sites.
type batcher struct {
	router   *Router
	submitCh chan *batchEntry
	stopCh   chan struct{}
	loopDone chan struct{}
	dispatch sync.WaitGroup
	pending  atomic.Int64
}

func newBatcher(r *Router) *batcher {
	return &batcher{
		router:   r,
		submitCh: make(chan *batchEntry),
		stopCh:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

func (b *batcher) start() {
	go b.run()
}

// stop flushes whatever is pending and waits for in-flight dispatches.
func (b *batcher) stop() {
	close(b.stopCh)
	<-b.loopDone
}

// submit enqueues one request and blocks until its batch completes it.
func (b *batcher) submit(ctx context.Context, req Request, target Target) (*Response, error) {
	e := &batchEntry{
		ctx:    ctx,
		req:    req,
		target: target,
		done:   make(chan batchResult, 1),
	}

	b.pending.Add(1)
	select {
	case b.submitCh <- e:
	case <-b.stopCh:
		b.pending.Add(-1)
		return nil, ErrClosed
	case <-ctx.Done():
		b.pending.Add(-1)
		return nil, ctx.Err()
	}
	b.router.counters.batched.Add(1)

	select {
	case res := <-e.done:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run is the owning goroutine: woken by a new entry, the batch timer, or
// shutdown. The timer is armed when the buffer goes from empty to non-empty
// and the buffer flushes at BatchSize, whichever comes first.
func (b *batcher) run() {
	defer close(b.loopDone)

	var buf []*batchEntry
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	flush := func() {
		if len(buf) == 0 {
			return
		}
		entries := buf
		buf = nil
		b.pending.Add(-int64(len(entries)))
		b.dispatch.Add(1)
		go func() {
			defer b.dispatch.Done()
			b.flush(entries)
		}()
	}

	for {
		select {
		case e := <-b.submitCh:
			buf = append(buf, e)
			if len(buf) == 1 {
				timer.Reset(b.router.config.BatchTimeout)
			}
			if len(buf) >= b.router.config.BatchSize {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				flush()
			}
		case <-timer.C:
			flush()
		case <-b.stopCh:
			flush()
			b.dispatch.Wait()
			return
		}
	}
}

// flush groups entries by resolved target and executes each group's requests
// concurrently. Completion is delivered per entry.
func (b *batcher) flush(entries []*batchEntry) {
	groups := make(map[string][]*batchEntry)
	for _, e := range entries {
		groups[e.target.Name] = append(groups[e.target.Name], e)
	}

	var g errgroup.Group
	for name, group := range groups {
		b.router.logger.Debug(context.Background(), "flushing batch group",
			observe.F("target", name),
			observe.F("size", len(group)),
		)
		for _, e := range group {
			g.Go(func() error {
				resp, err := b.router.execute(e.ctx, e.req, e.target)
				e.done <- batchResult{resp: resp, err: err}
				return nil
			})
		}
	}
	g.Wait() //nolint:errcheck // workers never return errors; results go via done channels
}

// RouteBatch routes many requests at once: already-cached requests are
// answered from the response cache, the rest execute concurrently through
// the same per-target path Route uses. The result slice preserves the input
// order. The first failure aborts the batch.
func (r *Router) RouteBatch(ctx context.Context, reqs []Request) ([]*Response, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	resps := make([]*Response, len(reqs))
	type miss struct {
		idx    int
		target Target
	}
	var misses []miss

	for i, req := range reqs {
		target, err := r.resolveTarget(req.Target)
		if err != nil {
			return nil, err
		}
		r.counters.total.Add(1)

		start := time.Now()
		key := cache.ResponseKey(target.Name, req.Prompt)
		if content, ok := r.responses.Get(key); ok {
			r.counters.cacheHits.Add(1)
			r.metrics.RecordCacheHit(ctx, observe.RouteMeta{
				RequestID: req.ID,
				Target:    target.Name,
				Provider:  target.Provider,
			})
			resps[i] = &Response{
				ID:      req.ID,
				Content: content,
				Target:  target.Name,
				Latency: time.Since(start),
				Cached:  true,
			}
			r.counters.observeLatency(resps[i].Latency)
			continue
		}
		r.counters.cacheMisses.Add(1)
		misses = append(misses, miss{idx: i, target: target})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range misses {
		g.Go(func() error {
			resp, err := r.execute(gctx, reqs[m.idx], m.target)
			if err != nil {
				return err
			}
			r.counters.observeLatency(resp.Latency)
			resps[m.idx] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resps, nil
}
