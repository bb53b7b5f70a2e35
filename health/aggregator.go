package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// AggregatorConfig configures a health aggregator.
type AggregatorConfig struct {
	// Timeout bounds a whole CheckAll sweep. Default: 10 seconds
	Timeout time.Duration

	// CheckTimeout bounds each individual check. Default: 5 seconds
	CheckTimeout time.Duration

	// MaxParallel bounds how many checks run at once. Default: 8
	MaxParallel int
}

// Aggregator fans out over registered checkers and reduces their results.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates an aggregator, applying defaults to zero fields.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = 5 * time.Second
	}
	if config.MaxParallel <= 0 {
		config.MaxParallel = 8
	}
	return &Aggregator{
		config:   config,
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker under its own name. Re-registering a name replaces
// the previous checker but keeps its position.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.checkers[c.Name()]; !ok {
		a.order = append(a.order, c.Name())
	}
	a.checkers[c.Name()] = c
}

// Unregister removes a checker by name.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Names returns the registered checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.order...)
}

// Check runs a single named check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	c, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	return a.runCheck(ctx, c), nil
}

// CheckAll runs every registered check in parallel and returns the results
// keyed by checker name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make([]Checker, 0, len(a.order))
	for _, name := range a.order {
		checkers = append(checkers, a.checkers[name])
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.MaxParallel)
	for _, c := range checkers {
		g.Go(func() error {
			res := a.runCheck(gctx, c)
			mu.Lock()
			results[c.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors; failures land in results

	return results
}

// Overall reduces a result set to the worst observed status. An empty set is
// healthy.
func Overall(results map[string]Result) Status {
	worst := StatusHealthy
	for _, r := range results {
		if r.Status > worst {
			worst = r.Status
		}
	}
	return worst
}

// runCheck runs one check under the per-check timeout. The checker runs in
// its own goroutine so a checker that ignores ctx still cannot stall the
// sweep.
func (a *Aggregator) runCheck(ctx context.Context, c Checker) Result {
	ctx, cancel := context.WithTimeout(ctx, a.config.CheckTimeout)
	defer cancel()

	start := time.Now()
	resultCh := make(chan Result, 1)
	go func() {
		res := c.Check(ctx)
		res.Duration = time.Since(start)
		if res.Timestamp.IsZero() {
			res.Timestamp = start
		}
		resultCh <- res
	}()

	select {
	case res := <-resultCh:
		return res
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Err:       ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}
