package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records routing telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic; recording is best-effort.
type Metrics interface {
	// RecordRoute records one routed request with duration and error status.
	RecordRoute(ctx context.Context, meta RouteMeta, duration time.Duration, err error)

	// RecordCacheHit records a response served from cache.
	RecordCacheHit(ctx context.Context, meta RouteMeta)

	// RecordFailover records a request that succeeded on a fallback target.
	RecordFailover(ctx context.Context, meta RouteMeta)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	cacheHits    metric.Int64Counter
	failovers    metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"model.route.total",
		metric.WithDescription("Total number of routed requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"model.route.errors",
		metric.WithDescription("Total number of routing errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"model.route.cache.hits",
		metric.WithDescription("Responses served from the response cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	failovers, err := meter.Int64Counter(
		"model.route.failovers",
		metric.WithDescription("Requests completed on a fallback target"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"model.route.duration_ms",
		metric.WithDescription("Backend call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		cacheHits:    cacheHits,
		failovers:    failovers,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) attrs(meta RouteMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("route.target", meta.Target),
	}
	if meta.Provider != "" {
		attrs = append(attrs, attribute.String("route.provider", meta.Provider))
	}
	if meta.Fallback {
		attrs = append(attrs, attribute.Bool("route.fallback", true))
	}
	return metric.WithAttributes(attrs...)
}

func (m *metricsImpl) RecordRoute(ctx context.Context, meta RouteMeta, duration time.Duration, err error) {
	opt := m.attrs(meta)
	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *metricsImpl) RecordCacheHit(ctx context.Context, meta RouteMeta) {
	m.cacheHits.Add(ctx, 1, m.attrs(meta))
}

func (m *metricsImpl) RecordFailover(ctx context.Context, meta RouteMeta) {
	m.failovers.Add(ctx, 1, m.attrs(meta))
}

// nopMetrics discards all measurements.
type nopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

func (nopMetrics) RecordRoute(context.Context, RouteMeta, time.Duration, error) {}
func (nopMetrics) RecordCacheHit(context.Context, RouteMeta)                    {}
func (nopMetrics) RecordFailover(context.Context, RouteMeta)                    {}

// Ensure implementations satisfy Metrics
var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = nopMetrics{}
)
