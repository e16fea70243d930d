// Package tracing provides OpenTelemetry request tracing for the HTTP
// surface: Middleware extracts W3C trace context from incoming requests,
// starts a server span per request, and echoes the trace id back on
// X-Trace-Id for client-side correlation. GetTracer exposes the package's
// tracer for callers that want to start their own spans.
//
// Example usage:
//
//	import "scrollfeed/internal/observability/tracing"
//
//	handler := tracing.Middleware(mux)
package tracing
