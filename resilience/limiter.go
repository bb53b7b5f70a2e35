package resilience

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds in-flight operations per key. Each key gets its own weighted
// semaphore, so saturation of one key never blocks another.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: Acquire blocks until a slot frees or ctx is done.
// - Ownership: every successful Acquire must be paired with Release.
type Limiter struct {
	max int64

	mu     sync.Mutex
	sems   map[string]*semaphore.Weighted
	active map[string]int
}

// NewLimiter creates a limiter allowing at most max in-flight operations per
// key. Default: 10.
func NewLimiter(max int) *Limiter {
	if max <= 0 {
		max = 10
	}
	return &Limiter{
		max:    int64(max),
		sems:   make(map[string]*semaphore.Weighted),
		active: make(map[string]int),
	}
}

// Acquire obtains one slot for key, waiting until one is available.
func (l *Limiter) Acquire(ctx context.Context, key string) error {
	if err := l.sem(key).Acquire(ctx, 1); err != nil {
		return err
	}
	l.mu.Lock()
	l.active[key]++
	l.mu.Unlock()
	return nil
}

// TryAcquire obtains a slot for key without blocking.
func (l *Limiter) TryAcquire(key string) bool {
	if !l.sem(key).TryAcquire(1) {
		return false
	}
	l.mu.Lock()
	l.active[key]++
	l.mu.Unlock()
	return true
}

// Release returns one slot for key.
func (l *Limiter) Release(key string) {
	l.mu.Lock()
	if l.active[key] > 0 {
		l.active[key]--
		l.sems[key].Release(1)
	}
	l.mu.Unlock()
}

// Active returns the number of in-flight operations for key.
func (l *Limiter) Active(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active[key]
}

// ActiveAll returns a snapshot of in-flight counts per key.
func (l *Limiter) ActiveAll() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.active))
	for k, v := range l.active {
		out[k] = v
	}
	return out
}

// Max returns the per-key concurrency bound.
func (l *Limiter) Max() int {
	return int(l.max)
}

func (l *Limiter) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sems[key]
	if !ok {
		s = semaphore.NewWeighted(l.max)
		l.sems[key] = s
	}
	return s
}
