package mailer

import "fmt"

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
// Channels that have no notion of tags ignore them.
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is one fully rendered message for exactly one addressee.
type Email struct {
	Headers map[string]string // Custom headers
	Tags    Tags              // Provider-specific tags/categories
	To      string            // Delivery address
	Subject string            // Plain-text subject, single line
	HTML    string            // HTML body content
	Text    string            // Plain text alternative
	From    string            // Override default sender (if channel allows)
	ReplyTo string            // Reply-to address
}

// Validate checks that the message can be handed to a channel.
func (e *Email) Validate() error {
	switch {
	case e == nil || e.To == "":
		return ErrNoRecipient
	case e.Subject == "":
		return ErrNoSubject
	case e.HTML == "":
		return ErrNoContent
	}
	return nil
}

// Receipt confirms acceptance of a message by the channel.
type Receipt struct {
	// MessageID is the identifier assigned by the provider or generated for
	// the SMTP Message-ID header. Empty when the channel has none.
	MessageID string
}
