package smtp

import "time"

// TLSMode selects how the session is secured.
type TLSMode string

const (
	// TLSMandatory requires STARTTLS (or implicit TLS on port 465).
	TLSMandatory TLSMode = "mandatory"
	// TLSOpportunistic upgrades with STARTTLS when the server offers it.
	TLSOpportunistic TLSMode = "opportunistic"
	// TLSNone never encrypts. Only for local test servers.
	TLSNone TLSMode = "none"
)

// Config holds SMTP connection parameters.
type Config struct {
	Host     string
	Port     int
	Username string // optional - some servers allow unauthenticated relay
	Password string // optional
	From     string // default sender address
	FromName string // optional sender display name

	TLS     TLSMode       // default TLSMandatory
	Timeout time.Duration // per network operation, default 30s

	// Retries is the number of extra dial attempts when the session cannot be
	// established, spaced by exponential backoff starting at RetryInterval.
	Retries       int
	RetryInterval time.Duration // default 1s
}

const (
	defaultTimeout       = 30 * time.Second
	defaultRetryInterval = time.Second
)

func (c Config) withDefaults() Config {
	if c.TLS == "" {
		c.TLS = TLSMandatory
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = defaultRetryInterval
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	return c
}
