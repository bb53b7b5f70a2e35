package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrLimiterClosed is returned when acquiring from a closed limiter.
	ErrLimiterClosed = errors.New("resilience: limiter is closed")
)
