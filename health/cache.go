package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/modelops/cache"
)

// CacheCheckerConfig configures a cache saturation checker.
type CacheCheckerConfig struct {
	// WarningThreshold is the fill ratio (size/capacity) that reports
	// degraded. Between 0 and 1. Default: 0.9
	WarningThreshold float64
}

// CacheChecker reports how full a cache is. A cache at its warning threshold
// is still serving but evicting aggressively, which shows up as a falling
// hit rate before it shows up as errors.
type CacheChecker struct {
	name   string
	stats  func() cache.Stats
	config CacheCheckerConfig
}

// NewCacheChecker creates a checker over a cache's Stats function.
func NewCacheChecker(name string, stats func() cache.Stats, config CacheCheckerConfig) *CacheChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold > 1 {
		config.WarningThreshold = 0.9
	}
	return &CacheChecker{name: name, stats: stats, config: config}
}

// Name returns the checker name.
func (c *CacheChecker) Name() string { return c.name }

// Check judges the cache's fill ratio against the warning threshold.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context done", ctx.Err())
	default:
	}

	s := c.stats()
	fill := 0.0
	if s.MaxSize > 0 {
		fill = float64(s.Size) / float64(s.MaxSize)
	}

	details := map[string]any{
		"size":      s.Size,
		"max_size":  s.MaxSize,
		"hit_rate":  s.HitRate,
		"evictions": s.Evictions,
		"strategy":  string(s.Strategy),
	}

	msg := fmt.Sprintf("%d/%d entries, hit rate %.2f", s.Size, s.MaxSize, s.HitRate)
	if fill >= c.config.WarningThreshold {
		return Degraded(msg).WithDetails(details)
	}
	return Healthy(msg).WithDetails(details)
}

var _ Checker = (*CacheChecker)(nil)
