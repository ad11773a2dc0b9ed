package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

const sentryFlushTimeout = 2 * time.Second

// withSentry adds a Sentry sink next to local when a DSN is configured.
// Errors and critical records create Sentry issues; warnings and above are
// kept as breadcrumb logs.
func withSentry(local slog.Handler, cfg Config) (slog.Handler, func()) {
	noop := func() {}
	if cfg.SentryDSN == "" {
		return local, noop
	}

	env := cfg.Environment
	if env == "" {
		env = "production"
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return local, noop
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError, LevelCritical},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError, LevelCritical},
	}.NewSentryHandler(context.Background())

	return fanout{local, remote}, func() { sentry.Flush(sentryFlushTimeout) }
}
