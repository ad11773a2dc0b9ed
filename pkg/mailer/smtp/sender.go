package smtp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/wneessen/go-mail"

	"github.com/dmitrymomot/paperco/pkg/mailer"
)

// Sender implements mailer.Channel over one SMTP session.
// The session is dialled and authenticated by Open, reused by every Send and
// torn down by Close. Sends are serialised on the session.
type Sender struct {
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	client *mail.Client
}

// New creates an SMTP sender. Nothing is dialled until Open.
func New(cfg Config, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sender{
		config: cfg.withDefaults(),
		logger: logger,
	}
}

// Open dials the server, negotiates TLS and authenticates.
// Failed dials are retried with exponential backoff up to Config.Retries times.
func (s *Sender) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}
	if s.config.Host == "" || s.config.Port <= 0 {
		return errors.Join(mailer.ErrEstablish, errors.New("smtp: host and port are required"))
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return errors.Join(mailer.ErrEstablish, fmt.Errorf("smtp: failed to create client: %w", err))
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.RetryInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	dial := func() error {
		attempt++
		if err := client.DialWithContext(ctx); err != nil {
			s.logger.WarnContext(ctx, "smtp: dial failed",
				slog.String("host", s.config.Host),
				slog.Int("port", s.config.Port),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			return err
		}
		return nil
	}

	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.config.Retries)), ctx)
	if err := backoff.Retry(dial, retry); err != nil {
		return errors.Join(mailer.ErrEstablish, fmt.Errorf("smtp: %s:%d: %w", s.config.Host, s.config.Port, err))
	}

	s.logger.DebugContext(ctx, "smtp: session established",
		slog.String("host", s.config.Host),
		slog.Int("port", s.config.Port),
		slog.String("tls", string(s.config.TLS)),
	)

	s.client = client
	return nil
}

// Close ends the session. Safe to call when not open.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	if err != nil {
		return fmt.Errorf("smtp: close: %w", err)
	}
	return nil
}

// MaxConcurrency reports that the session carries one message at a time.
func (s *Sender) MaxConcurrency() int { return 1 }

// Send transmits one message over the open session.
// go-mail does not take a context for a send on an existing connection;
// the context is checked before writing and Config.Timeout bounds each
// network operation.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (*mailer.Receipt, error) {
	if err := email.Validate(); err != nil {
		return nil, err
	}

	msg, err := s.buildMessage(email)
	if err != nil {
		return nil, errors.Join(mailer.ErrSendFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil, mailer.ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(mailer.ErrSendFailed, err)
	}

	if err := s.client.Send(msg); err != nil {
		return nil, classify(err)
	}

	return &mailer.Receipt{MessageID: strings.Trim(msg.GetMessageID(), "<>")}, nil
}

func (s *Sender) buildMessage(email *mailer.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()

	switch {
	case email.From != "":
		if err := msg.From(email.From); err != nil {
			return nil, fmt.Errorf("smtp: invalid from address: %w", err)
		}
	case s.config.FromName != "":
		if err := msg.FromFormat(s.config.FromName, s.config.From); err != nil {
			return nil, fmt.Errorf("smtp: invalid from address: %w", err)
		}
	default:
		if err := msg.From(s.config.From); err != nil {
			return nil, fmt.Errorf("smtp: invalid from address: %w", err)
		}
	}

	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("smtp: invalid to address: %w", err)
	}
	if email.ReplyTo != "" {
		if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("smtp: invalid reply-to address: %w", err)
		}
	}

	msg.Subject(email.Subject)
	msg.SetMessageID()
	msg.SetDate()

	if email.Text != "" {
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	} else {
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	}

	for key, value := range email.Headers {
		msg.SetGenHeader(mail.Header(key), value)
	}

	return msg, nil
}

// clientOptions returns go-mail client options based on configuration.
func (s *Sender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(s.config.Timeout),
	}

	switch {
	case s.config.TLS == TLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case s.config.Port == 465:
		// Implicit TLS (SMTPS)
		opts = append(opts, mail.WithSSL())
	case s.config.TLS == TLSOpportunistic:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	if s.config.Username != "" {
		opts = append(opts,
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	return opts
}

// classify maps go-mail send errors onto mailer sentinels. A failed
// connection check or a failed reset after a rejected message means the
// session cannot carry further messages.
func classify(err error) error {
	var se *mail.SendError
	if errors.As(err, &se) && (se.Reason == mail.ErrConnCheck || se.Reason == mail.ErrSMTPReset) {
		return errors.Join(mailer.ErrSessionBroken, err)
	}
	return errors.Join(mailer.ErrSendFailed, err)
}
