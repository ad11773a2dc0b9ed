package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have a recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("mailer: email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("mailer: email must have HTML content")

	// ErrEstablish indicates the channel could not be opened. Fatal for a batch.
	ErrEstablish = errors.New("mailer: failed to establish channel")

	// ErrNotOpen indicates Send was called before Open or after Close.
	ErrNotOpen = errors.New("mailer: channel is not open")

	// ErrSendFailed indicates a single message was rejected or could not be
	// delivered. The channel remains usable.
	ErrSendFailed = errors.New("mailer: failed to send email")

	// ErrSessionBroken indicates the underlying session is no longer usable.
	// No further messages can be sent through the channel.
	ErrSessionBroken = errors.New("mailer: session broken")
)

// IsChannelFatal reports whether err leaves the channel unusable for the
// remaining messages of a batch.
func IsChannelFatal(err error) bool {
	return errors.Is(err, ErrSessionBroken) || errors.Is(err, ErrNotOpen)
}
