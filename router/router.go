package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/modelops/cache"
	"github.com/jonwraymond/modelops/observe"
	"github.com/jonwraymond/modelops/resilience"
	"github.com/jonwraymond/modelops/secret"
)

// Router dispatches requests to registered targets with caching, batching,
// retry, and failover.
type Router struct {
	config   Config
	call     CallFunc
	logger   observe.Logger
	metrics  observe.Metrics
	tracer   observe.Tracer
	resolver *secret.Resolver

	mu        sync.RWMutex
	targets   map[string]Target
	primary   string
	fallbacks []string
	breakers  map[string]*resilience.CircuitBreaker

	responses *cache.Cache[string, string]
	contexts  *cache.Cache[string, any]

	limiter *resilience.Limiter
	flight  singleflight.Group

	batcher *batcher
	closed  atomic.Bool

	counters counters
}

// Option customizes a Router.
type Option func(*Router)

// WithLogger sets the structured logger. Default: a no-op logger.
func WithLogger(l observe.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithMetrics sets the metrics recorder. Default: a no-op recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// WithTracer wraps every backend call attempt in a route span.
// Default: a no-op tracer.
func WithTracer(tr observe.Tracer) Option {
	return func(r *Router) { r.tracer = tr }
}

// WithSecretResolver resolves ${ENV} and secretref: values in Target.Config
// at registration time.
func WithSecretResolver(res *secret.Resolver) Option {
	return func(r *Router) { r.resolver = res }
}

// New creates a Router around the injected backend call.
func New(config Config, call CallFunc, opts ...Option) (*Router, error) {
	if call == nil {
		return nil, ErrNoCallFunc
	}
	config = config.withDefaults()

	r := &Router{
		config:    config,
		call:      call,
		logger:    observe.NopLogger(),
		metrics:   observe.NopMetrics(),
		tracer:    observe.NopTracer(),
		targets:   make(map[string]Target),
		breakers:  make(map[string]*resilience.CircuitBreaker),
		responses: cache.New[string, string](config.ResponseCache),
		contexts:  cache.New[string, any](config.ContextCache),
		limiter:   resilience.NewLimiter(config.MaxConcurrent),
	}
	for _, opt := range opts {
		opt(r)
	}

	if config.EnableBatching {
		r.batcher = newBatcher(r)
		r.batcher.start()
	}
	return r, nil
}

// AddTarget registers a target. The first registered target becomes the
// primary. Config values are secret-resolved when a resolver is configured.
func (r *Router) AddTarget(ctx context.Context, t Target) error {
	if t.Name == "" {
		return errors.New("router: target name is required")
	}
	t = t.clone()
	if r.resolver != nil && len(t.Config) > 0 {
		resolved, err := r.resolver.ResolveMap(ctx, t.Config)
		if err != nil {
			return fmt.Errorf("router: resolve config for target %q: %w", t.Name, err)
		}
		t.Config = resolved
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[t.Name] = t
	if r.primary == "" {
		r.primary = t.Name
	}
	return nil
}

// SetPrimary names the target used when a request omits its target.
func (r *Router) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.targets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	r.primary = name
	return nil
}

// SetFallbacks declares the failover order. Every name must be registered.
func (r *Router) SetFallbacks(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.targets[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTarget, name)
		}
	}
	r.fallbacks = append([]string(nil), names...)
	return nil
}

// Route dispatches one request: cache lookup, then batched or direct
// execution through the concurrency/retry/failover path.
func (r *Router) Route(ctx context.Context, req Request) (*Response, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
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
		resp := &Response{
			ID:      req.ID,
			Content: content,
			Target:  target.Name,
			Latency: time.Since(start),
			Cached:  true,
		}
		r.counters.observeLatency(resp.Latency)
		return resp, nil
	}
	r.counters.cacheMisses.Add(1)

	var resp *Response
	if r.batcher != nil {
		resp, err = r.batcher.submit(ctx, req, target)
	} else {
		resp, err = r.execute(ctx, req, target)
	}
	if err != nil {
		return nil, err
	}
	r.counters.observeLatency(resp.Latency)
	return resp, nil
}

// resolveTarget maps a request's target name (empty = primary) to its
// registered Target.
func (r *Router) resolveTarget(name string) (Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		if r.primary == "" {
			return Target{}, ErrNoPrimary
		}
		name = r.primary
	}
	t, ok := r.targets[name]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return t, nil
}

// callOutcome is the shared result of one deduplicated execution.
type callOutcome struct {
	content string
	target  string
}

// execute runs the full failover cascade, deduplicating identical concurrent
// misses through singleflight.
func (r *Router) execute(ctx context.Context, req Request, target Target) (*Response, error) {
	start := time.Now()
	key := cache.ResponseKey(target.Name, req.Prompt)

	v, err, _ := r.flight.Do(key, func() (any, error) {
		return r.executeWithFailover(ctx, req, target, key)
	})
	if err != nil {
		return nil, err
	}
	out := v.(*callOutcome)
	return &Response{
		ID:      req.ID,
		Content: out.content,
		Target:  out.target,
		Latency: time.Since(start),
	}, nil
}

// executeWithFailover tries the requested target, then each fallback in
// declared order. The successful response is cached under key, which was
// derived from the requested target regardless of who served it.
func (r *Router) executeWithFailover(ctx context.Context, req Request, primary Target, key string) (*callOutcome, error) {
	cascade := r.cascade(primary)

	var primaryErr error
	for i, t := range cascade {
		meta := observe.RouteMeta{
			RequestID: req.ID,
			Target:    t.Name,
			Provider:  t.Provider,
			Fallback:  i > 0,
		}
		content, err := r.executeOnTarget(ctx, req, t, meta)
		if err == nil {
			if i > 0 {
				r.counters.failovers.Add(1)
				r.metrics.RecordFailover(ctx, meta)
				r.logger.WithRoute(meta).Info(ctx, "request served by fallback")
			}
			r.responses.Set(key, content)
			return &callOutcome{content: content, target: t.Name}, nil
		}
		if i == 0 {
			primaryErr = err
		}
		r.logger.WithRoute(meta).Warn(ctx, "target exhausted",
			observe.F("error", err.Error()),
			observe.F("remaining_fallbacks", len(cascade)-i-1),
		)
		if ctx.Err() != nil {
			break
		}
	}

	r.counters.errors.Add(1)
	if primaryErr == nil {
		primaryErr = ctx.Err()
	}
	return nil, fmt.Errorf("request %q: %w (last error from %s: %w)",
		req.ID, ErrTargetsExhausted, primary.Name, primaryErr)
}

// cascade returns the requested target followed by the configured fallbacks,
// the requested target deduplicated out of the fallback list.
func (r *Router) cascade(primary Target) []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Target{primary}
	for _, name := range r.fallbacks {
		if name == primary.Name {
			continue
		}
		if t, ok := r.targets[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// executeOnTarget runs the per-target path: slot acquisition, optional
// circuit breaker, retry with exponential backoff, context-cache plumbing.
func (r *Router) executeOnTarget(ctx context.Context, req Request, target Target, meta observe.RouteMeta) (string, error) {
	if err := r.limiter.Acquire(ctx, target.Name); err != nil {
		return "", err
	}
	defer r.limiter.Release(target.Name)

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  r.config.MaxRetries,
		InitialDelay: r.config.RetryDelay,
		RetryIf: func(err error) bool {
			// An open circuit will not close between attempts; move on.
			return !errors.Is(err, resilience.ErrCircuitOpen)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			r.logger.WithRoute(meta).Warn(ctx, "backend call failed, retrying",
				observe.F("attempt", attempt),
				observe.F("delay_ms", delay.Milliseconds()),
				observe.F("error", err.Error()),
			)
		},
	})

	ctxKey := cache.ContextKey(req.Prompt)
	var content string
	attempt := func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, r.config.RequestTimeout)
		defer cancel()

		cachedCtx, _ := r.contexts.Get(ctxKey)
		spanCtx, span := r.tracer.StartSpan(callCtx, meta)
		start := time.Now()
		res, err := r.call(spanCtx, req, target, cachedCtx)
		r.metrics.RecordRoute(ctx, meta, time.Since(start), err)
		r.tracer.EndSpan(span, err)
		if err != nil {
			return err
		}
		content = res.Content
		if res.Context != nil {
			r.contexts.Set(ctxKey, res.Context)
		}
		return nil
	}

	op := attempt
	if cb := r.breaker(target.Name); cb != nil {
		op = func(ctx context.Context) error { return cb.Execute(ctx, attempt) }
	}
	if err := retry.Execute(ctx, op); err != nil {
		return "", err
	}
	return content, nil
}

// breaker returns the target's circuit breaker, creating it on first use.
// Nil when breakers are disabled.
func (r *Router) breaker(name string) *resilience.CircuitBreaker {
	if r.config.CircuitThreshold <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.breakers[name]
	if !ok {
		cb = resilience.NewCircuitBreaker(resilience.CircuitConfig{
			FailureThreshold: r.config.CircuitThreshold,
			ResetTimeout:     r.config.CircuitResetTimeout,
			OnStateChange: func(from, to resilience.State) {
				r.logger.Warn(context.Background(), "circuit state changed",
					observe.F("target", name),
					observe.F("from", from.String()),
					observe.F("to", to.String()),
				)
			},
		})
		r.breakers[name] = cb
	}
	return cb
}

// ResponseCacheStats returns statistics for the response cache.
func (r *Router) ResponseCacheStats() cache.Stats {
	return r.responses.Stats()
}

// Close stops the batch goroutine. Pending batched requests are flushed
// before Close returns; later Route calls fail with ErrClosed.
func (r *Router) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.batcher != nil {
		r.batcher.stop()
	}
	return nil
}
