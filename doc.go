// Package paperco sends one templated email per recipient of a list.
//
// A campaign loads its recipients once, compiles a subject and a body
// template once, opens a delivery channel and then renders and sends a
// message for every recipient in source order. A failure for one recipient
// is logged and recorded; it never stops the others. Only errors that leave
// the channel unusable, or cancellation, end a run early.
//
// # Quick Start
//
//	store := storage.New(storage.Config{})
//	body, err := store.ReadAll(ctx, "welcome.md")
//	if err != nil {
//	    return err
//	}
//
//	c := paperco.New(
//	    recipient.NewCSVSource(store.Opener("people.csv")),
//	    smtp.New(smtp.Config{Host: "mail.example.com", Port: 587, From: "news@example.com"}, log),
//	    "Welcome, {{ Name }}",
//	    body,
//	    paperco.WithLogger(log),
//	    paperco.WithTemplateOptions(render.WithFormat(render.FormatMarkdown)),
//	)
//
//	res, err := c.Run(ctx)
//	if errors.Is(err, paperco.ErrAborted) {
//	    log.Error("run aborted", "processed", res.Attempted)
//	}
//
// # Recipients
//
// Sources implement recipient.Source. The recipient package provides a
// CSV table source, a single-record source and a PostgreSQL query source.
// Every record carries a non-empty delivery address; rows without one are
// skipped when the source is read.
//
// # Templates
//
// Templates use Go template syntax with strict field lookup: a field the
// record does not carry fails that recipient with a *render.Error naming the
// field. Values in the HTML body are escaped. Bare references such as
// {{ Name }} are accepted as shorthand for {{ .Name }}. Markdown bodies are
// converted to HTML after the fields are substituted. See package render.
//
// # Channels
//
// Delivery goes through a mailer.Channel: pkg/mailer/resend for the Resend
// API, pkg/mailer/smtp for a reused SMTP session, and mailer.Discard for dry
// runs.
//
// # Outcomes
//
// Run returns a Result with attempted, delivered and failed counts and one
// Outcome per attempted recipient. Recipient failures are *Failure values
// carrying the address and the stage that failed.
//
// The cmd/paperco command wires all of this to flags, environment variables
// and an optional YAML file.
package paperco
