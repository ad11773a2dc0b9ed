package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/paperco/pkg/logger"
	"github.com/dmitrymomot/paperco/pkg/mailer"
	"github.com/dmitrymomot/paperco/pkg/recipient"
	"github.com/dmitrymomot/paperco/pkg/render"
)

const (
	defaultSendTimeout = 30 * time.Second
	defaultStackSize   = 4096

	// RunHeader carries the run ID on every message.
	RunHeader = "X-Paperco-Run-ID"
)

// Campaign renders and delivers one message per recipient.
// A campaign runs once.
type Campaign struct {
	source   recipient.Source
	channel  mailer.Channel
	logger   *slog.Logger
	observer Observer
	headers  map[string]string

	subject    string
	body       string
	runID      string
	from       string
	replyTo    string
	renderOpts []render.Option

	sendTimeout time.Duration
	concurrency int
	verbose     bool

	state   atomic.Int32
	started atomic.Bool
}

// New creates a campaign. subject may be empty when the body carries a
// Subject key in its frontmatter.
func New(source recipient.Source, channel mailer.Channel, subject, body string, opts ...Option) *Campaign {
	c := &Campaign{
		source:      source,
		channel:     channel,
		subject:     subject,
		body:        body,
		logger:      logger.NewNope(),
		headers:     make(map[string]string),
		sendTimeout: defaultSendTimeout,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.runID == "" {
		c.runID = NewRunID()
	}
	c.headers[RunHeader] = c.runID

	return c
}

// RunID returns the identifier stamped on logs and messages of this run.
func (c *Campaign) RunID() string {
	return c.runID
}

// State returns the current lifecycle state.
func (c *Campaign) State() State {
	return State(c.state.Load())
}

func (c *Campaign) setState(s State) {
	c.state.Store(int32(s))
}

// Run executes the campaign and blocks until every recipient has been
// attempted or the run is aborted.
//
// Errors from loading the source, compiling the templates or opening the
// channel are returned as they are, before any delivery. After the channel
// is open, a channel-fatal error or cancellation of ctx stops new attempts
// and the returned error matches ErrAborted. Recipient-scoped failures are
// only reported in the Result.
func (c *Campaign) Run(ctx context.Context) (*Result, error) {
	if c.source == nil || c.channel == nil {
		return nil, ErrInvalidCampaign
	}
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	ctx = ContextWithRunID(ctx, c.runID)
	res := &Result{RunID: c.runID, Started: time.Now()}

	records, err := c.source.Load(ctx)
	if err != nil {
		return c.fail(ctx, res, "failed to load recipients", err)
	}
	c.setState(StateSourceLoaded)
	res.Total = len(records)
	c.logger.InfoContext(ctx, "recipients loaded", slog.Int("count", len(records)))

	set, err := render.Compile(c.subject, c.body, c.renderOpts...)
	if err != nil {
		return c.fail(ctx, res, "failed to compile templates", err)
	}
	c.setState(StateTemplatesCompiled)

	if len(records) == 0 {
		c.logger.WarnContext(ctx, "no recipients to process")
		c.finish(ctx, res, nil)
		return res, nil
	}
	c.preflight(ctx, set, records[0])

	if err := c.channel.Open(ctx); err != nil {
		return c.fail(ctx, res, "failed to open delivery channel", err)
	}
	c.setState(StateRunning)
	workers := c.workers(ctx)
	c.logger.InfoContext(ctx, "delivery started",
		slog.Int("recipients", len(records)),
		slog.Int("concurrency", workers),
	)

	cause := c.dispatch(ctx, set, records, res, workers)

	if err := c.channel.Close(); err != nil {
		c.logger.WarnContext(ctx, "failed to close delivery channel", slog.Any("error", err))
	}

	c.finish(ctx, res, cause)
	if cause != nil {
		return res, errors.Join(ErrAborted, cause)
	}
	return res, nil
}

// workers returns the configured concurrency, capped by the channel's own
// limit when it has one.
func (c *Campaign) workers(ctx context.Context) int {
	n := c.concurrency
	if l, ok := c.channel.(mailer.Limiter); ok {
		if limit := l.MaxConcurrency(); limit > 0 && n > limit {
			c.logger.WarnContext(ctx, "concurrency capped by delivery channel",
				slog.Int("requested", n),
				slog.Int("limit", limit),
			)
			n = limit
		}
	}
	return n
}

// dispatch attempts every record and fills res in source order.
// It returns the cause when attempts were stopped early.
func (c *Campaign) dispatch(ctx context.Context, set *render.TemplateSet, records []recipient.Record, res *Result, workers int) error {
	var (
		stopped atomic.Bool
		once    sync.Once
		cause   error
	)
	abort := func(err error) {
		once.Do(func() {
			cause = err
			stopped.Store(true)
		})
	}

	outcomes := make([]*Outcome, len(records))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, rec := range records {
		if stopped.Load() {
			break
		}
		if err := ctx.Err(); err != nil {
			abort(err)
			break
		}

		g.Go(func() error {
			if stopped.Load() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				abort(err)
				return nil
			}

			out := c.process(ctx, i, rec, set)
			outcomes[i] = &out
			if out.Err != nil && mailer.IsChannelFatal(out.Err.Err) {
				abort(out.Err)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		if out == nil {
			continue
		}
		res.Outcomes = append(res.Outcomes, *out)
		res.Attempted++
		if out.Delivered() {
			res.Delivered++
		} else {
			res.Failed++
		}
	}

	return cause
}

// process renders and sends one message. It never panics and always
// returns an outcome for the record.
func (c *Campaign) process(ctx context.Context, index int, rec recipient.Record, set *render.TemplateSet) (out Outcome) {
	start := time.Now()
	stage := StageRender
	out = Outcome{Index: index, Address: rec.Address()}
	log := c.logger.With(slog.String("address", out.Address))

	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, defaultStackSize)
			stack = stack[:runtime.Stack(stack, false)]
			log.ErrorContext(ctx, "panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))
			out.Err = &Failure{
				Index:   index,
				Address: out.Address,
				Stage:   stage,
				Err:     fmt.Errorf("%w: %v", ErrPanic, r),
			}
		}
		out.Elapsed = time.Since(start)
		c.observe(out)
	}()

	msg, err := set.Render(rec.Data())
	if err != nil {
		out.Err = &Failure{Index: index, Address: out.Address, Stage: StageRender, Err: err}
		attrs := []any{slog.Any("error", err)}
		var rerr *render.Error
		if errors.As(err, &rerr) && rerr.Field != "" {
			attrs = append(attrs, slog.String("field", rerr.Field))
		}
		log.ErrorContext(ctx, "failed to render message", attrs...)
		return out
	}

	stage = StageSend
	email := &mailer.Email{
		To:      out.Address,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		From:    c.from,
		ReplyTo: c.replyTo,
		Headers: c.headers,
		Tags:    mailer.Tags{"run_id": c.runID},
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	receipt, err := c.channel.Send(sendCtx, email)
	if err != nil {
		out.Err = &Failure{Index: index, Address: out.Address, Stage: StageSend, Err: err}
		log.ErrorContext(ctx, "failed to deliver message",
			slog.Any("error", err),
			slog.Bool("channel_fatal", mailer.IsChannelFatal(err)),
		)
		return out
	}
	if receipt != nil {
		out.MessageID = receipt.MessageID
	}

	level := slog.LevelDebug
	if c.verbose {
		level = slog.LevelInfo
	}
	log.Log(ctx, level, "message delivered",
		slog.String("message_id", out.MessageID),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (c *Campaign) observe(out Outcome) {
	if c.observer == nil {
		return
	}
	label := OutcomeDelivered
	if !out.Delivered() {
		label = OutcomeFailed
	}
	c.observer.ObserveOutcome(label, out.Elapsed)
}

// preflight warns about template fields the first record does not carry.
// Rendering still decides per recipient.
func (c *Campaign) preflight(ctx context.Context, set *render.TemplateSet, first recipient.Record) {
	var missing []string
	for _, name := range set.Fields() {
		if _, ok := first.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		c.logger.WarnContext(ctx, "template fields missing from first record",
			slog.Any("fields", missing),
			slog.String("address", first.Address()),
		)
	}
}

// fail ends a run that never reached delivery.
func (c *Campaign) fail(ctx context.Context, res *Result, msg string, err error) (*Result, error) {
	c.setState(StateAborted)
	res.State = StateAborted
	res.Finished = time.Now()
	c.logger.ErrorContext(ctx, msg, slog.Any("error", err))
	return res, err
}

func (c *Campaign) finish(ctx context.Context, res *Result, cause error) {
	res.Finished = time.Now()
	attrs := []any{
		slog.Int("total", res.Total),
		slog.Int("attempted", res.Attempted),
		slog.Int("delivered", res.Delivered),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", res.Duration()),
	}

	if cause != nil {
		c.setState(StateAborted)
		res.State = StateAborted
		attrs = append(attrs, slog.Int("skipped", res.Skipped()), slog.Any("error", cause))
		c.logger.Log(ctx, logger.LevelCritical, "run aborted", attrs...)
		return
	}

	c.setState(StateCompleted)
	res.State = StateCompleted
	c.logger.InfoContext(ctx, "run completed", attrs...)
}
