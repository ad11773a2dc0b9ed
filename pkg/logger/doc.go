// Package logger builds the structured logger used across a run.
//
// It wraps log/slog with three additions: a level set that includes
// CRITICAL, context extractors that stamp request- or run-scoped values onto
// every record, and optional forwarding of warnings and errors to Sentry.
//
// # Basic Usage
//
//	log, flush := logger.New(logger.Config{
//		Level:  slog.LevelInfo,
//		Format: logger.FormatText,
//	}, runIDExtractor)
//	defer flush()
//
//	log.InfoContext(ctx, "run started", slog.Int("recipients", 42))
//	// time=... level=INFO msg="run started" recipients=42 run_id=8f1c...
//
// # Context Extractors
//
// A ContextExtractor is called on every log call and returns the attribute
// to add, or false to skip it:
//
//	runIDExtractor := logger.StringExtractor("run_id", func(ctx context.Context) (string, bool) {
//		id, ok := ctx.Value(runIDKey{}).(string)
//		return id, ok
//	})
//
// NewContextHandler applies extractors to any slog.Handler.
//
// # Sentry Integration
//
// Setting Config.SentryDSN sends error and critical records to Sentry as
// issues and keeps warnings as logs. When the DSN is empty or Sentry cannot
// be initialised, logging stays local. Call the flush function returned by
// New before exiting so queued events are delivered.
//
// # Levels
//
// ParseLevel understands DEBUG, INFO, WARNING (or WARN), ERROR and CRITICAL
// in any case. LevelCritical renders as "CRITICAL".
package logger
