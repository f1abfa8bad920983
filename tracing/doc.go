// Package tracing wraps OpenTelemetry for task chains: provider setup with a
// stdout or custom exporter, span helpers and a flow.Decorator that runs each
// task inside a span named after it.
package tracing
