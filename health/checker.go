package health

import (
	"context"
	"time"
)

// Status is the health state of a component.
type Status int

const (
	// StatusHealthy means the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded means the component works but with reduced capacity.
	StatusDegraded
	// StatusUnhealthy means the component is not functioning.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of one health check.
type Result struct {
	// Status is the judged health state.
	Status Status

	// Message explains the status.
	Message string

	// Details carries check-specific metadata.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check ran.
	Timestamp time.Time

	// Err is the underlying failure for unhealthy results.
	Err error
}

// Healthy builds a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded builds a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Unhealthy builds an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Err: err, Timestamp: time.Now()}
}

// WithDetails attaches metadata to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker judges the health of one component.
//
// Contract:
// - Concurrency: Check may be called concurrently.
// - Context: Check should return promptly once ctx is done; the aggregator
//   converts an overrun into an unhealthy timeout result regardless.
type Checker interface {
	// Name identifies the checker in aggregated results.
	Name() string

	// Check judges the component's current state.
	Check(ctx context.Context) Result
}

// CheckFunc adapts a function to the Checker interface.
type CheckFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckFunc wraps fn as a named Checker.
func NewCheckFunc(name string, fn func(context.Context) Result) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the checker name.
func (f *CheckFunc) Name() string { return f.name }

// Check invokes the wrapped function.
func (f *CheckFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

var _ Checker = (*CheckFunc)(nil)
