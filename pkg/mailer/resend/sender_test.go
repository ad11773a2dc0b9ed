package resend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paperco/pkg/mailer"
	"github.com/dmitrymomot/paperco/pkg/mailer/resend"
)

type capturedRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Text    string            `json:"text"`
	Headers map[string]string `json:"headers"`
	Tags    []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"tags"`
}

func newServer(t *testing.T, status int, body string, got *capturedRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var got capturedRequest
	srv := newServer(t, http.StatusOK, `{"id":"msg_123"}`, &got)

	s := resend.New(resend.Config{
		APIKey:      "re_test",
		SenderEmail: "team@example.com",
		SenderName:  "Team",
		BaseURL:     srv.URL,
	})
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	rcpt, err := s.Send(context.Background(), &mailer.Email{
		To:      "ada@example.com",
		Subject: "Hello Ada",
		HTML:    "<p>Hello Ada</p>",
		Text:    "Hello Ada",
		Headers: map[string]string{"X-Campaign": "c1"},
		Tags:    mailer.Tags{"run": "r1"},
	})
	require.NoError(t, err)
	require.Equal(t, "msg_123", rcpt.MessageID)

	assert.Equal(t, "Team <team@example.com>", got.From)
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "Hello Ada", got.Subject)
	assert.Equal(t, "<p>Hello Ada</p>", got.HTML)
	assert.Equal(t, "Hello Ada", got.Text)
	assert.Equal(t, "c1", got.Headers["X-Campaign"])
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "run", got.Tags[0].Name)
	assert.Equal(t, "r1", got.Tags[0].Value)
}

func TestSender_SendRejected(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusUnprocessableEntity,
		`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`, nil)

	s := resend.New(resend.Config{APIKey: "re_test", SenderEmail: "team@example.com", BaseURL: srv.URL + "/"})
	require.NoError(t, s.Open(context.Background()))

	_, err := s.Send(context.Background(), &mailer.Email{To: "bad", Subject: "s", HTML: "h"})
	require.ErrorIs(t, err, mailer.ErrSendFailed)
	require.False(t, mailer.IsChannelFatal(err))
}

func TestSender_Open(t *testing.T) {
	t.Parallel()

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()

		err := resend.New(resend.Config{SenderEmail: "team@example.com"}).Open(context.Background())
		require.ErrorIs(t, err, mailer.ErrEstablish)
	})

	t.Run("missing sender", func(t *testing.T) {
		t.Parallel()

		err := resend.New(resend.Config{APIKey: "re_test"}).Open(context.Background())
		require.ErrorIs(t, err, mailer.ErrEstablish)
	})

	t.Run("send before open", func(t *testing.T) {
		t.Parallel()

		s := resend.New(resend.Config{APIKey: "re_test", SenderEmail: "team@example.com"})
		_, err := s.Send(context.Background(), &mailer.Email{To: "a@example.com", Subject: "s", HTML: "h"})
		require.ErrorIs(t, err, mailer.ErrNotOpen)
	})
}

func TestSender_InvalidEmail(t *testing.T) {
	t.Parallel()

	s := resend.New(resend.Config{APIKey: "re_test", SenderEmail: "team@example.com"})
	require.NoError(t, s.Open(context.Background()))

	_, err := s.Send(context.Background(), &mailer.Email{To: "a@example.com", Subject: "s"})
	require.ErrorIs(t, err, mailer.ErrNoContent)
}
