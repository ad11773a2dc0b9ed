package mailer

import "context"

// Sender delivers one fully rendered message.
type Sender interface {
	// Send delivers an email message to its single addressee.
	// The Email must have To, Subject, and HTML already set.
	// Errors wrap ErrSendFailed, or ErrSessionBroken when the channel can no
	// longer be used.
	Send(ctx context.Context, email *Email) (*Receipt, error)
}

// Channel is a Sender with an explicit lifecycle. Open is called once before
// the first message of a batch and Close once after the last one.
type Channel interface {
	Sender

	// Open prepares the channel. Errors wrap ErrEstablish.
	Open(ctx context.Context) error

	// Close releases the channel. Safe to call on an unopened channel.
	Close() error
}

// Limiter is implemented by channels that carry a bounded number of sends
// at a time. The runner never starts more workers than MaxConcurrency, so
// no send waits on the channel while its timeout runs.
type Limiter interface {
	MaxConcurrency() int
}
