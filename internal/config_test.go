package internal_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paperco/internal"
)

func load(t *testing.T, args ...string) (*internal.Config, error) {
	t.Helper()
	fs := internal.NewFlagSet("paperco")
	fs.SetOutput(io.Discard)
	return internal.LoadConfig(fs, args)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, "-k", "re_123", "--csv", "people.csv", "-B", "body.html", "--subject", "Hi", "--from", "news@x.com")
	require.NoError(t, err)

	assert.Equal(t, "re_123", cfg.Key)
	assert.Equal(t, "people.csv", cfg.CSV)
	assert.Equal(t, "body.html", cfg.Body)
	assert.Equal(t, "Email", cfg.AddressField)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.Equal(t, internal.TransportAPI, cfg.Transport)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "mandatory", cfg.SMTPTLS)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "subject", cfg.SubjectSource())
}

func TestLoadConfig_ShortFlags(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, "-k", "key", "--csv", "p.csv", "-H", "subject.txt", "-B", "body.md", "-v", "-l", "run.log", "--from", "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, "subject.txt", cfg.Header)
	assert.Equal(t, "body.md", cfg.Body)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "run.log", cfg.Log)
	assert.Equal(t, "header", cfg.SubjectSource())
}

func TestLoadConfig_SMTP(t *testing.T) {
	t.Parallel()

	cfg, err := load(t,
		"--transport", "smtp", "--smtp-host", "mail.example.com", "--smtp-port", "465",
		"--smtp-user", "u", "--smtp-password", "p", "--smtp-retries", "3",
		"--to", "ada@x.com", "--data", "Name: Ada", "-B", "body.html", "--from", "news@x.com",
		"--concurrency", "4", "--timeout", "5s",
	)
	require.NoError(t, err)

	assert.Equal(t, internal.TransportSMTP, cfg.Transport)
	assert.Equal(t, "mail.example.com", cfg.SMTPHost)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, uint64(3), cfg.SMTPRetries)
	assert.Equal(t, "ada@x.com", cfg.To)
	assert.Equal(t, "Name: Ada", cfg.Data)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "frontmatter", cfg.SubjectSource())
}

func TestLoadConfig_DryRunNeedsNoCredentials(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, "--csv", "p.csv", "-B", "body.html", "--dry-run")
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"-k", "k", "-B", "b.html", "--from", "a@x.com"}},
		{"two sources", []string{"-k", "k", "--csv", "p.csv", "--to", "a@x.com", "-B", "b.html", "--from", "a@x.com"}},
		{"no body", []string{"-k", "k", "--csv", "p.csv", "--from", "a@x.com"}},
		{"no key", []string{"--csv", "p.csv", "-B", "b.html", "--from", "a@x.com"}},
		{"no from", []string{"-k", "k", "--csv", "p.csv", "-B", "b.html"}},
		{"bad from", []string{"-k", "k", "--csv", "p.csv", "-B", "b.html", "--from", "nope"}},
		{"smtp without host", []string{"--transport", "smtp", "--csv", "p.csv", "-B", "b.html", "--from", "a@x.com"}},
		{"unknown transport", []string{"--transport", "pigeon", "--csv", "p.csv", "-B", "b.html", "--dry-run"}},
		{"bad tls mode", []string{"--smtp-tls", "always", "--csv", "p.csv", "-B", "b.html", "--dry-run"}},
		{"zero concurrency", []string{"--concurrency", "0", "--csv", "p.csv", "-B", "b.html", "--dry-run"}},
		{"zero timeout", []string{"--timeout", "0s", "--csv", "p.csv", "-B", "b.html", "--dry-run"}},
		{"bad body format", []string{"--body-format", "rtf", "--csv", "p.csv", "-B", "b.html", "--dry-run"}},
		{"data without to", []string{"--data", "Name: Ada", "--csv", "p.csv", "-B", "b.html", "--dry-run"}},
		{"query without db", []string{"--query", "select 1", "-B", "b.html", "--dry-run"}},
		{"unknown flag", []string{"--nope"}},
		{"bad int", []string{"--concurrency", "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := load(t, tt.args...)
			require.ErrorIs(t, err, internal.ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_ReportsFlagNames(t *testing.T) {
	t.Parallel()

	_, err := load(t, "--smtp-tls", "always", "--csv", "p.csv", "-B", "b.html", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--smtp-tls")
}

func TestLoadConfig_Help(t *testing.T) {
	t.Parallel()

	_, err := load(t, "--help")
	require.ErrorIs(t, err, pflag.ErrHelp)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PAPERCO_KEY", "re_env")
	t.Setenv("PAPERCO_FROM", "env@x.com")
	t.Setenv("PAPERCO_SMTP_PORT", "2525")

	cfg, err := load(t, "--csv", "p.csv", "-B", "b.html")
	require.NoError(t, err)
	assert.Equal(t, "re_env", cfg.Key)
	assert.Equal(t, "env@x.com", cfg.From)
	assert.Equal(t, 2525, cfg.SMTPPort)

	cfg, err = load(t, "--csv", "p.csv", "-B", "b.html", "--from", "flag@x.com")
	require.NoError(t, err)
	assert.Equal(t, "flag@x.com", cfg.From, "flags take precedence over the environment")
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "paperco.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport: smtp
smtp-host: mail.example.com
from: file@x.com
concurrency: 2
timeout: 10s
`), 0o600))

	cfg, err := load(t, "--config", path, "--csv", "p.csv", "-B", "b.html", "--concurrency", "3")
	require.NoError(t, err)

	assert.Equal(t, internal.TransportSMTP, cfg.Transport)
	assert.Equal(t, "mail.example.com", cfg.SMTPHost)
	assert.Equal(t, "file@x.com", cfg.From)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--csv", "p.csv", "-B", "b.html", "--dry-run")
	require.ErrorIs(t, err, internal.ErrInvalidConfig)
}
