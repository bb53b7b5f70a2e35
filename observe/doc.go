// Package observe provides observability primitives for model routing.
//
// It is a pure instrumentation library: structured logging, OpenTelemetry
// metrics, and tracing, with no transport of its own beyond exporter setup.
// The router wires an Observer (or individual Logger/Metrics) in through its
// options.
package observe
