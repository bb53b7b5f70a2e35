package router

import (
	"context"
	"fmt"

	"github.com/jonwraymond/modelops/health"
	"github.com/jonwraymond/modelops/resilience"
)

// Health returns a checker reporting per-target circuit state and slot
// saturation. All circuits closed and slots available: healthy. Any open
// circuit or fully saturated target: degraded. Every target's circuit open,
// or no targets registered: unhealthy.
func (r *Router) Health() health.Checker {
	return health.NewCheckFunc("router", r.checkHealth)
}

func (r *Router) checkHealth(ctx context.Context) health.Result {
	select {
	case <-ctx.Done():
		return health.Unhealthy("context done", ctx.Err())
	default:
	}

	r.mu.RLock()
	targets := make([]string, 0, len(r.targets))
	for name := range r.targets {
		targets = append(targets, name)
	}
	breakers := make(map[string]*resilience.CircuitBreaker, len(r.breakers))
	for name, cb := range r.breakers {
		breakers[name] = cb
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		return health.Unhealthy("no targets registered", ErrNoPrimary)
	}

	active := r.limiter.ActiveAll()
	maxSlots := r.limiter.Max()

	details := make(map[string]any, len(targets))
	open, saturated := 0, 0
	for _, name := range targets {
		circuit := "disabled"
		if cb, ok := breakers[name]; ok {
			state := cb.State()
			circuit = state.String()
			if state == resilience.StateOpen {
				open++
			}
		}
		inFlight := active[name]
		if inFlight >= maxSlots {
			saturated++
		}
		details[name] = map[string]any{
			"circuit": circuit,
			"active":  inFlight,
			"max":     maxSlots,
		}
	}

	msg := fmt.Sprintf("%d targets, %d circuits open, %d saturated", len(targets), open, saturated)
	switch {
	case open == len(targets):
		return health.Unhealthy(msg, ErrTargetsExhausted).WithDetails(details)
	case open > 0 || saturated > 0:
		return health.Degraded(msg).WithDetails(details)
	default:
		return health.Healthy(msg).WithDetails(details)
	}
}
