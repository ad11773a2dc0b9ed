package mailer

import (
	"context"
	"log/slog"
)

// Discard is a Channel that accepts every valid message without delivering
// it. Used for dry runs.
type Discard struct {
	logger *slog.Logger
}

// NewDiscard creates a discarding channel that logs each message at debug level.
// A nil logger discards silently.
func NewDiscard(logger *slog.Logger) *Discard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Discard{logger: logger}
}

func (d *Discard) Open(context.Context) error { return nil }

func (d *Discard) Close() error { return nil }

// Send validates the message, logs it and returns an empty receipt.
func (d *Discard) Send(ctx context.Context, email *Email) (*Receipt, error) {
	if err := email.Validate(); err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "dry run: message not sent",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
		slog.Int("html_bytes", len(email.HTML)),
		slog.String("text", email.Text),
	)
	return &Receipt{}, nil
}
