// Package logging builds the engine's slog loggers and carries them
// through contexts: JSON output in production, text for local work,
// LOG_LEVEL-controlled verbosity, and request-id attachment so every
// line a handler emits can be tied back to its request.
//
//	logger := logging.NewLogger()
//	logger.Info("engine started", slog.Int("adapters", n))
//
//	func handle(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("assembling batch")
//	}
package logging
