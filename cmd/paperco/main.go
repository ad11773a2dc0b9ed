// Command paperco renders a subject and body template for every recipient of
// a list and delivers the messages through the Resend API or an SMTP server.
//
// Usage:
//
//	paperco -k re_xxx --csv people.csv -H subject.txt -B body.html --from news@example.com
//	paperco --transport smtp --smtp-host mail.example.com --to ada@example.com --data 'Name: Ada' -B welcome.md
//	paperco --csv s3://bucket/people.csv -B body.md --dry-run -v
//
// Every flag can also be set through a PAPERCO_* environment variable
// (--smtp-host is PAPERCO_SMTP_HOST), a .env file in the working directory
// or a YAML file passed with --config.
//
// Exit status is 0 when every recipient was attempted, 1 when the run failed
// or was aborted and 2 for invalid usage.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/dmitrymomot/paperco/internal"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := internal.NewFlagSet("paperco")
	fs.SetOutput(stderr)

	cfg, err := internal.LoadConfig(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "paperco: %v\nRun 'paperco --help' for usage.\n", err)
		return exitUsage
	}

	log, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "paperco: %v\n", err)
		return exitUsage
	}
	defer closeLog()

	if err := execute(ctx, cfg, log); err != nil {
		return exitFailure
	}
	return exitOK
}
