// Package internal provides the campaign runner and the command-line
// configuration behind the paperco package.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/paperco" instead, which re-exports the public API.
//
// # Core Types
//
//   - Campaign: Runs one batch: load recipients, compile templates, open the
//     channel, render and deliver per recipient, aggregate the outcomes
//   - Result: Counts and per-recipient outcomes of a finished run
//   - Failure: One recipient-scoped failure with the address and the stage
//     (render or send) it happened in
//   - Observer: Receives every outcome as it is recorded, e.g. for metrics
//   - Config: Command-line, environment and file configuration
//
// # Lifecycle
//
// A Campaign moves through
//
//	Idle -> SourceLoaded -> TemplatesCompiled -> Running -> Completed | Aborted
//
// Source, compile and channel-establish errors end the run before any
// delivery and are returned as they are. Render and send errors are scoped to
// one recipient: they are logged with the address, recorded as a Failure and
// the run moves on. A channel-fatal send error or a cancelled context stops
// new attempts; the run then aggregates what it has and returns an error
// matching ErrAborted.
//
// # Concurrency
//
// Recipients are processed in source order, one at a time by default. With
// WithConcurrency(n) up to n recipients are in flight through the same open
// channel. Outcomes are always reported in source order.
package internal
