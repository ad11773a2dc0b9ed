package internal

import (
	"log/slog"
	"maps"
	"time"

	"github.com/dmitrymomot/paperco/pkg/render"
)

// Option configures a campaign.
type Option func(*Campaign)

// Observer receives every recorded outcome.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOutcome(outcome string, elapsed time.Duration)
}

// WithLogger sets the campaign logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(c *Campaign) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConcurrency sets how many recipients may be in flight at once.
// Defaults to 1 (sequential).
func WithConcurrency(n int) Option {
	return func(c *Campaign) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithSendTimeout bounds every single send.
// Defaults to 30 seconds.
func WithSendTimeout(d time.Duration) Option {
	return func(c *Campaign) {
		if d > 0 {
			c.sendTimeout = d
		}
	}
}

// WithVerbose logs every delivery confirmation at info level instead of debug.
func WithVerbose(v bool) Option {
	return func(c *Campaign) {
		c.verbose = v
	}
}

// WithObserver registers an observer for outcomes.
func WithObserver(o Observer) Option {
	return func(c *Campaign) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(c *Campaign) {
		if id != "" {
			c.runID = id
		}
	}
}

// WithSender sets the From address put on every message.
// Channels that have a configured sender use it when empty.
func WithSender(from string) Option {
	return func(c *Campaign) {
		c.from = from
	}
}

// WithReplyTo sets the Reply-To address put on every message.
func WithReplyTo(addr string) Option {
	return func(c *Campaign) {
		c.replyTo = addr
	}
}

// WithHeaders adds custom headers to every message.
func WithHeaders(h map[string]string) Option {
	return func(c *Campaign) {
		maps.Copy(c.headers, h)
	}
}

// WithTemplateOptions passes options to template compilation,
// e.g. render.WithFormat or render.WithLayout.
func WithTemplateOptions(opts ...render.Option) Option {
	return func(c *Campaign) {
		c.renderOpts = append(c.renderOpts, opts...)
	}
}
