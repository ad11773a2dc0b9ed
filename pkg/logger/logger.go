package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above slog.LevelError for failures that end a run.
const LevelCritical = slog.Level(12)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ErrInvalidLevel indicates an unknown level name.
var ErrInvalidLevel = errors.New("logger: invalid level")

// Config describes a logger.
type Config struct {
	Level  slog.Level
	Format Format    // default FormatJSON
	Output io.Writer // default os.Stderr

	// SentryDSN enables forwarding warnings and errors to Sentry.
	// Empty keeps logging local only.
	SentryDSN   string
	Environment string
}

// New builds a logger from cfg. The returned flush function delivers
// buffered Sentry events and should be called before the process exits.
// Sentry initialisation failures are reported on the local log and never
// prevent logging.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func()) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		ReplaceAttr: replaceLevel,
	}

	var local slog.Handler
	if cfg.Format == FormatText {
		local = slog.NewTextHandler(out, opts)
	} else {
		local = slog.NewJSONHandler(out, opts)
	}

	handler, flush := withSentry(local, cfg)
	return slog.New(NewContextHandler(handler, extractors...)), flush
}

// ParseLevel accepts DEBUG, INFO, WARNING (or WARN), ERROR and CRITICAL in
// any letter case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
			a.Value = slog.StringValue("CRITICAL")
		}
	}
	return a
}
