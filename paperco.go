package paperco

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/paperco/internal"
	"github.com/dmitrymomot/paperco/pkg/logger"
	"github.com/dmitrymomot/paperco/pkg/mailer"
	"github.com/dmitrymomot/paperco/pkg/recipient"
	"github.com/dmitrymomot/paperco/pkg/render"
)

// Type aliases - public API
type (
	// Campaign renders and delivers one message per recipient.
	Campaign = internal.Campaign

	// Option configures a campaign.
	Option = internal.Option

	// Result summarises a finished run.
	Result = internal.Result

	// Outcome is the result of one attempt.
	Outcome = internal.Outcome

	// Failure is a recipient-scoped error with the address it belongs to.
	Failure = internal.Failure

	// State is the lifecycle state of a campaign.
	State = internal.State

	// Stage names the step of per-recipient processing that failed.
	Stage = internal.Stage

	// Observer receives every recorded outcome.
	Observer = internal.Observer

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Lifecycle states.
const (
	StateIdle              = internal.StateIdle
	StateSourceLoaded      = internal.StateSourceLoaded
	StateTemplatesCompiled = internal.StateTemplatesCompiled
	StateRunning           = internal.StateRunning
	StateCompleted         = internal.StateCompleted
	StateAborted           = internal.StateAborted
)

// Failure stages.
const (
	StageRender = internal.StageRender
	StageSend   = internal.StageSend
)

// RunHeader carries the run ID on every message.
const RunHeader = internal.RunHeader

// Errors
var (
	// ErrAborted indicates the run stopped before every recipient was attempted.
	ErrAborted = internal.ErrAborted

	// ErrAlreadyRun indicates Run was called twice on the same campaign.
	ErrAlreadyRun = internal.ErrAlreadyRun

	// ErrInvalidCampaign indicates the campaign is missing its source or channel.
	ErrInvalidCampaign = internal.ErrInvalidCampaign

	// ErrPanic indicates processing of one recipient panicked.
	ErrPanic = internal.ErrPanic
)

// New creates a campaign that loads recipients from source and delivers
// through channel. subject may be empty when the body declares a Subject
// in its frontmatter.
//
// Example:
//
//	c := paperco.New(
//	    recipient.NewCSVSource(store.Opener("people.csv")),
//	    resend.New(resend.Config{APIKey: key, SenderEmail: "news@example.com"}),
//	    "Hello {{ Name }}",
//	    body,
//	    paperco.WithLogger(log),
//	    paperco.WithConcurrency(4),
//	)
//
//	res, err := c.Run(ctx)
func New(source recipient.Source, channel mailer.Channel, subject, body string, opts ...Option) *Campaign {
	return internal.New(source, channel, subject, body, opts...)
}

// WithLogger sets the campaign logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithConcurrency sets how many recipients may be in flight at once.
// Defaults to 1.
func WithConcurrency(n int) Option {
	return internal.WithConcurrency(n)
}

// WithSendTimeout bounds every single send.
// Defaults to 30 seconds.
func WithSendTimeout(d time.Duration) Option {
	return internal.WithSendTimeout(d)
}

// WithVerbose logs every delivery confirmation at info level.
func WithVerbose(v bool) Option {
	return internal.WithVerbose(v)
}

// WithObserver registers an observer for outcomes, e.g. a metrics recorder.
func WithObserver(o Observer) Option {
	return internal.WithObserver(o)
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return internal.WithRunID(id)
}

// WithSender sets the From address put on every message.
func WithSender(from string) Option {
	return internal.WithSender(from)
}

// WithReplyTo sets the Reply-To address put on every message.
func WithReplyTo(addr string) Option {
	return internal.WithReplyTo(addr)
}

// WithHeaders adds custom headers to every message.
func WithHeaders(h map[string]string) Option {
	return internal.WithHeaders(h)
}

// WithTemplateOptions passes options to template compilation.
//
// Example:
//
//	paperco.WithTemplateOptions(
//	    render.WithFormat(render.FormatMarkdown),
//	    render.WithLayout(layout),
//	)
func WithTemplateOptions(opts ...render.Option) Option {
	return internal.WithTemplateOptions(opts...)
}

// RunIDExtractor returns a logger extractor that adds run_id to every record
// logged with a campaign context.
func RunIDExtractor() ContextExtractor {
	return internal.RunIDExtractor()
}
