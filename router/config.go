package router

import (
	"time"

	"github.com/jonwraymond/modelops/cache"
)

// Config configures a Router. Zero fields take the defaults documented per
// field, except EnableBatching: the zero value disables batching, so start
// from DefaultConfig when the batched path is wanted.
type Config struct {
	// MaxRetries is the number of call attempts per target, the first
	// included. Default: 3
	MaxRetries int

	// RetryDelay is the delay before the first retry; attempt n waits
	// RetryDelay * 2^(n-1). Default: 1 second
	RetryDelay time.Duration

	// RequestTimeout bounds each individual backend call attempt.
	// Default: 30 seconds
	RequestTimeout time.Duration

	// MaxConcurrent is the per-target in-flight call bound. Default: 10
	MaxConcurrent int

	// EnableBatching funnels cache misses through the shared batch buffer.
	EnableBatching bool

	// BatchSize flushes the pending buffer once this many requests are
	// queued. Default: 5
	BatchSize int

	// BatchTimeout flushes whatever is pending once this much time passed
	// since the first queued request. Default: 100ms
	BatchTimeout time.Duration

	// CircuitThreshold, when positive, arms a per-target circuit breaker
	// that opens after this many consecutive failures so the failover
	// cascade moves on without burning retries. 0 disables breakers.
	CircuitThreshold int

	// CircuitResetTimeout is how long an open circuit waits before probing.
	// Default: 30 seconds
	CircuitResetTimeout time.Duration

	// ResponseCache configures the response cache.
	// Default: {MaxSize: 1000, TTL: 1h, Strategy: lru}
	ResponseCache cache.Config

	// ContextCache configures the provider-context cache.
	// Default: {MaxSize: 500, TTL: 30m, Strategy: lru}
	ContextCache cache.Config
}

// DefaultConfig returns the configuration a Router uses out of the box,
// batching enabled.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		RetryDelay:     time.Second,
		RequestTimeout: 30 * time.Second,
		MaxConcurrent:  10,
		EnableBatching: true,
		BatchSize:      5,
		BatchTimeout:   100 * time.Millisecond,
	}
}

// withDefaults fills zero fields. EnableBatching is left as given.
func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 10
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 100 * time.Millisecond
	}
	if c.CircuitResetTimeout <= 0 {
		c.CircuitResetTimeout = 30 * time.Second
	}
	if c.ResponseCache.MaxSize <= 0 {
		c.ResponseCache.MaxSize = 1000
	}
	if c.ResponseCache.TTL <= 0 {
		c.ResponseCache.TTL = time.Hour
	}
	if c.ContextCache.MaxSize <= 0 {
		c.ContextCache.MaxSize = 500
	}
	if c.ContextCache.TTL <= 0 {
		c.ContextCache.TTL = 30 * time.Minute
	}
	return c
}
