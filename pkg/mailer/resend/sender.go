package resend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/paperco/pkg/mailer"
)

// Sender implements mailer.Channel using the Resend API.
// Every message is one API call; there is no session to break.
type Sender struct {
	client *resend.Client
	config Config
	open   atomic.Bool
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Open checks the configuration. No network call is made.
func (s *Sender) Open(_ context.Context) error {
	if strings.TrimSpace(s.config.APIKey) == "" {
		return errors.Join(mailer.ErrEstablish, errors.New("resend: API key is required"))
	}
	if strings.TrimSpace(s.config.SenderEmail) == "" {
		return errors.Join(mailer.ErrEstablish, errors.New("resend: sender email is required"))
	}
	if s.config.BaseURL != "" {
		base := s.config.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return errors.Join(mailer.ErrEstablish, fmt.Errorf("resend: invalid base URL: %w", err))
		}
		s.client.BaseURL = u
	}

	s.open.Store(true)
	return nil
}

// Close marks the sender closed.
func (s *Sender) Close() error {
	s.open.Store(false)
	return nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (*mailer.Receipt, error) {
	if !s.open.Load() {
		return nil, mailer.ErrNotOpen
	}
	if err := email.Validate(); err != nil {
		return nil, err
	}

	req := &resend.SendEmailRequest{
		From:    s.from(email),
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Headers: email.Headers,
	}

	if len(email.Tags) > 0 {
		req.Tags = convertTags(email.Tags)
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Join(mailer.ErrSendFailed, fmt.Errorf("resend: %w", err))
	}

	return &mailer.Receipt{MessageID: resp.Id}, nil
}

func (s *Sender) from(email *mailer.Email) string {
	if email.From != "" {
		return email.From
	}
	return mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
}

func convertTags(tags mailer.Tags) []resend.Tag {
	result := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		result = append(result, resend.Tag{
			Name:  name,
			Value: tagValue(value),
		})
	}
	return result
}

// tagValue converts any value to a string for Resend's tag API.
// Presence-only tags (struct{}{}) become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
