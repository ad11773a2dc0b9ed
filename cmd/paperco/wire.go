package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dmitrymomot/paperco"
	"github.com/dmitrymomot/paperco/internal"
	"github.com/dmitrymomot/paperco/pkg/db"
	"github.com/dmitrymomot/paperco/pkg/logger"
	"github.com/dmitrymomot/paperco/pkg/mailer"
	"github.com/dmitrymomot/paperco/pkg/mailer/resend"
	"github.com/dmitrymomot/paperco/pkg/mailer/smtp"
	"github.com/dmitrymomot/paperco/pkg/metrics"
	"github.com/dmitrymomot/paperco/pkg/recipient"
	"github.com/dmitrymomot/paperco/pkg/render"
	"github.com/dmitrymomot/paperco/pkg/storage"
)

const pushTimeout = 10 * time.Second

// execute wires the configured components and runs one campaign.
// Every failure is logged before it is returned.
func execute(ctx context.Context, cfg *internal.Config, log *slog.Logger) error {
	store := newStorage(cfg)

	tpl, err := loadTemplates(ctx, cfg, store)
	if err != nil {
		log.Log(ctx, logger.LevelCritical, "failed to read templates", slog.Any("error", err))
		return err
	}

	src, closeSrc, err := newSource(ctx, cfg, store)
	if err != nil {
		log.Log(ctx, logger.LevelCritical, "failed to prepare recipient source", slog.Any("error", err))
		return err
	}
	defer closeSrc()

	rec := metrics.New(metrics.DefaultJob)
	campaign := paperco.New(src, newChannel(cfg, log), tpl.subject, tpl.body,
		paperco.WithLogger(log),
		paperco.WithConcurrency(cfg.Concurrency),
		paperco.WithSendTimeout(cfg.Timeout),
		paperco.WithVerbose(cfg.Verbose),
		paperco.WithObserver(rec),
		paperco.WithReplyTo(cfg.ReplyTo),
		paperco.WithTemplateOptions(tpl.options...),
	)

	log.InfoContext(internal.ContextWithRunID(ctx, campaign.RunID()), "starting run",
		slog.String("transport", transportName(cfg)),
		slog.String("subject_from", cfg.SubjectSource()),
		slog.Int("concurrency", cfg.Concurrency),
	)

	res, runErr := campaign.Run(ctx)

	if cfg.Pushgateway != "" {
		rec.SetAborted(res == nil || res.State == paperco.StateAborted)
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		if err := rec.Push(pushCtx, cfg.Pushgateway, metrics.DefaultJob); err != nil {
			log.WarnContext(ctx, "failed to push metrics", slog.Any("error", err))
		}
		cancel()
	}

	return runErr
}

func newLogger(cfg *internal.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	out := stderr
	var file *os.File
	if cfg.Log != "" {
		file, err = os.OpenFile(cfg.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
	}

	log, flush := logger.New(logger.Config{
		Level:       level,
		Format:      logger.Format(cfg.LogFormat),
		Output:      out,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.SentryEnv,
	}, internal.RunIDExtractor())

	return log, func() {
		flush()
		if file != nil {
			_ = file.Close()
		}
	}, nil
}

func newStorage(cfg *internal.Config) *storage.Storage {
	return storage.New(storage.Config{
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		PathStyle: cfg.S3PathStyle,
	})
}

type templates struct {
	subject string
	body    string
	options []render.Option
}

// loadTemplates reads the body, the subject (inline text wins over the
// header file; with neither the body frontmatter is used) and the layout.
func loadTemplates(ctx context.Context, cfg *internal.Config, store *storage.Storage) (*templates, error) {
	body, err := store.ReadAll(ctx, cfg.Body)
	if err != nil {
		return nil, fmt.Errorf("body template: %w", err)
	}

	tpl := &templates{body: body, subject: cfg.Subject}
	if tpl.subject == "" && cfg.Header != "" {
		tpl.subject, err = store.ReadAll(ctx, cfg.Header)
		if err != nil {
			return nil, fmt.Errorf("subject template: %w", err)
		}
	}

	format := render.Format(cfg.BodyFormat)
	if format == "" {
		format = render.FormatFromPath(cfg.Body)
	}
	tpl.options = append(tpl.options, render.WithFormat(format))

	if cfg.Layout != "" {
		layout, err := store.ReadAll(ctx, cfg.Layout)
		if err != nil {
			return nil, fmt.Errorf("layout template: %w", err)
		}
		tpl.options = append(tpl.options, render.WithLayout(layout))
	}

	return tpl, nil
}

// newSource builds the configured recipient source. The returned function
// releases its resources.
func newSource(ctx context.Context, cfg *internal.Config, store *storage.Storage) (recipient.Source, func(), error) {
	noop := func() {}

	switch {
	case cfg.CSV != "":
		return recipient.NewCSVSource(store.Opener(cfg.CSV),
			recipient.WithAddressField(cfg.AddressField),
			recipient.WithEncoding(cfg.Encoding),
		), noop, nil

	case cfg.To != "":
		data := cfg.Data
		if path, ok := strings.CutPrefix(data, "@"); ok {
			var err error
			if data, err = store.ReadAll(ctx, path); err != nil {
				return nil, nil, errors.Join(recipient.ErrSource, err)
			}
		}
		return recipient.NewSingleSource(data, cfg.To, cfg.AddressField), noop, nil

	case cfg.Query != "":
		pool, err := db.Connect(ctx, db.Config{URL: cfg.DBURL})
		if err != nil {
			return nil, nil, errors.Join(recipient.ErrSource, err)
		}
		return recipient.NewQuerySource(pool, cfg.AddressField, cfg.Query), pool.Close, nil

	default:
		return nil, nil, internal.ErrInvalidConfig
	}
}

func newChannel(cfg *internal.Config, log *slog.Logger) mailer.Channel {
	switch {
	case cfg.DryRun:
		return mailer.NewDiscard(log)
	case cfg.Transport == internal.TransportSMTP:
		return smtp.New(smtp.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
			FromName: cfg.FromName,
			TLS:      smtp.TLSMode(cfg.SMTPTLS),
			Timeout:  cfg.Timeout,
			Retries:  int(cfg.SMTPRetries),
		}, log)
	default:
		return resend.New(resend.Config{
			APIKey:      cfg.Key,
			SenderEmail: cfg.From,
			SenderName:  cfg.FromName,
			BaseURL:     cfg.APIURL,
		})
	}
}

func transportName(cfg *internal.Config) string {
	if cfg.DryRun {
		return "dry-run"
	}
	return cfg.Transport
}
