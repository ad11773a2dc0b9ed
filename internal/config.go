package internal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the command,
// e.g. PAPERCO_SMTP_HOST for --smtp-host.
const EnvPrefix = "PAPERCO"

// Transport names.
const (
	TransportAPI  = "api"
	TransportSMTP = "smtp"
)

// Config is the command-line configuration of a run.
// Every field can also come from the environment or a YAML config file.
type Config struct {
	// Recipients, exactly one source.
	CSV          string `mapstructure:"csv"`
	To           string `mapstructure:"to" validate:"omitempty,email"`
	Data         string `mapstructure:"data"`
	DBURL        string `mapstructure:"db-url" validate:"required_with=Query"`
	Query        string `mapstructure:"query"`
	AddressField string `mapstructure:"address-field" validate:"required"`
	Encoding     string `mapstructure:"encoding" validate:"required"`

	// Templates.
	Subject    string `mapstructure:"subject"`
	Header     string `mapstructure:"header"`
	Body       string `mapstructure:"body" validate:"required"`
	BodyFormat string `mapstructure:"body-format" validate:"omitempty,oneof=html markdown"`
	Layout     string `mapstructure:"layout"`

	// Envelope.
	From     string `mapstructure:"from" validate:"omitempty,email"`
	FromName string `mapstructure:"from-name"`
	ReplyTo  string `mapstructure:"reply-to" validate:"omitempty,email"`

	// Delivery.
	Transport    string        `mapstructure:"transport" validate:"oneof=api smtp"`
	Key          string        `mapstructure:"key"`
	APIURL       string        `mapstructure:"api-url" validate:"omitempty,url"`
	SMTPHost     string        `mapstructure:"smtp-host" validate:"omitempty,hostname_rfc1123|ip"`
	SMTPPort     int           `mapstructure:"smtp-port" validate:"min=1,max=65535"`
	SMTPUser     string        `mapstructure:"smtp-user"`
	SMTPPassword string        `mapstructure:"smtp-password"`
	SMTPTLS      string        `mapstructure:"smtp-tls" validate:"oneof=mandatory opportunistic none"`
	SMTPRetries  uint64        `mapstructure:"smtp-retries" validate:"max=10"`
	Concurrency  int           `mapstructure:"concurrency" validate:"min=1,max=64"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	DryRun       bool          `mapstructure:"dry-run"`

	// Storage for s3:// locations.
	S3Region    string `mapstructure:"s3-region"`
	S3Endpoint  string `mapstructure:"s3-endpoint" validate:"omitempty,url"`
	S3AccessKey string `mapstructure:"s3-access-key" validate:"required_with=S3SecretKey"`
	S3SecretKey string `mapstructure:"s3-secret-key" validate:"required_with=S3AccessKey"`
	S3PathStyle bool   `mapstructure:"s3-path-style"`

	// Observability.
	Verbose     bool   `mapstructure:"verbose"`
	Log         string `mapstructure:"log"`
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format" validate:"oneof=json text"`
	SentryDSN   string `mapstructure:"sentry-dsn" validate:"omitempty,url"`
	SentryEnv   string `mapstructure:"sentry-env"`
	Pushgateway string `mapstructure:"pushgateway" validate:"omitempty,url"`

	ConfigFile string `mapstructure:"config"`
}

// NewFlagSet declares every command-line flag with its default.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	fs.String("csv", "", "recipients table, local path or s3://bucket/key")
	fs.String("to", "", "single recipient address")
	fs.String("data", "", "single recipient fields as a YAML or JSON mapping, or @path")
	fs.String("db-url", "", "PostgreSQL connection URL for --query")
	fs.String("query", "", "SQL query returning one row per recipient")
	fs.String("address-field", "Email", "field holding the delivery address")
	fs.String("encoding", "utf-8", "text encoding of the recipients table")

	fs.String("subject", "", "inline subject template")
	fs.StringP("header", "H", "", "subject template file")
	fs.StringP("body", "B", "", "body template file (.html or .md)")
	fs.String("body-format", "", "body format: html or markdown (default from file extension)")
	fs.String("layout", "", "HTML layout wrapping the body")

	fs.String("from", "", "sender address")
	fs.String("from-name", "", "sender display name")
	fs.String("reply-to", "", "reply-to address")

	fs.String("transport", TransportAPI, "delivery transport: api or smtp")
	fs.StringP("key", "k", "", "API key of the email provider")
	fs.String("api-url", "", "base URL of the email API")
	fs.String("smtp-host", "", "SMTP server host")
	fs.Int("smtp-port", 587, "SMTP server port")
	fs.String("smtp-user", "", "SMTP username")
	fs.String("smtp-password", "", "SMTP password")
	fs.String("smtp-tls", "mandatory", "STARTTLS policy: mandatory, opportunistic or none")
	fs.Uint64("smtp-retries", 0, "SMTP connection attempts after the first")
	fs.Int("concurrency", 1, "recipients in flight at once")
	fs.Duration("timeout", defaultSendTimeout, "timeout of a single send")
	fs.Bool("dry-run", false, "render every message without sending")

	fs.String("s3-region", "", "S3 region")
	fs.String("s3-endpoint", "", "S3-compatible endpoint URL")
	fs.String("s3-access-key", "", "S3 access key")
	fs.String("s3-secret-key", "", "S3 secret key")
	fs.Bool("s3-path-style", false, "use path-style S3 addressing")

	fs.BoolP("verbose", "v", false, "log every delivery confirmation")
	fs.StringP("log", "l", "", "log file (default stderr)")
	fs.String("log-level", "INFO", "DEBUG, INFO, WARNING, ERROR or CRITICAL")
	fs.String("log-format", "text", "log format: json or text")
	fs.String("sentry-dsn", "", "forward errors to Sentry")
	fs.String("sentry-env", "", "Sentry environment")
	fs.String("pushgateway", "", "Prometheus Pushgateway URL for run metrics")

	fs.String("config", "", "YAML config file")

	return fs
}

// LoadConfig parses args with fs and merges, from highest to lowest
// precedence, flags, PAPERCO_* environment variables, the config file and
// flag defaults. The result is validated.
func LoadConfig(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report flag names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return "--" + name
	})
	return v
}

// Validate checks field formats and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q check", fe.Field(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return errors.Join(ErrInvalidConfig, err)
	}

	sources := 0
	for _, s := range []string{c.CSV, c.To, c.Query} {
		if s != "" {
			sources++
		}
	}
	switch {
	case sources != 1:
		return fmt.Errorf("%w: exactly one of --csv, --to or --query is required", ErrInvalidConfig)
	case c.Data != "" && c.To == "":
		return fmt.Errorf("%w: --data requires --to", ErrInvalidConfig)
	}

	if c.DryRun {
		return nil
	}

	if c.From == "" {
		return fmt.Errorf("%w: --from is required", ErrInvalidConfig)
	}
	switch c.Transport {
	case TransportAPI:
		if c.Key == "" {
			return fmt.Errorf("%w: --key is required for the api transport", ErrInvalidConfig)
		}
	case TransportSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("%w: --smtp-host is required for the smtp transport", ErrInvalidConfig)
		}
	}
	return nil
}

// SubjectSource reports which input supplies the subject template:
// "subject", "header" or "frontmatter".
func (c *Config) SubjectSource() string {
	switch {
	case c.Subject != "":
		return "subject"
	case c.Header != "":
		return "header"
	default:
		return "frontmatter"
	}
}
