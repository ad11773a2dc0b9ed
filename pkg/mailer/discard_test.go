package mailer_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paperco/pkg/mailer"
)

func TestDiscard_Send(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var ch mailer.Channel = mailer.NewDiscard(logger)
	require.NoError(t, ch.Open(context.Background()))

	rcpt, err := ch.Send(context.Background(), &mailer.Email{
		To:      "ada@example.com",
		Subject: "Hi",
		HTML:    "<p>Hi</p>",
	})
	require.NoError(t, err)
	require.Empty(t, rcpt.MessageID)
	require.Contains(t, buf.String(), "ada@example.com")
	require.NoError(t, ch.Close())
}

func TestDiscard_RejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := mailer.NewDiscard(nil).Send(context.Background(), &mailer.Email{To: "ada@example.com"})
	require.ErrorIs(t, err, mailer.ErrNoSubject)
}
