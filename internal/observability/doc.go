// Package observability groups the logging and tracing subpackages the
// HTTP surface shares:
//
//   - logging: slog construction and context propagation
//   - tracing: OpenTelemetry server spans per request
//
//	logger := logging.NewLogger()
//	handler := tracing.Middleware(mux)
package observability
