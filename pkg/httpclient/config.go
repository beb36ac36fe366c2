package httpclient

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout is the total request timeout.
	// Default: 60s. Must be > 0.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Proxies maps a request scheme ("http", "https") to a proxy URL.
	// Schemes without an entry are dialed directly.
	Proxies map[string]string

	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		UserAgent: "humio-connector/1.0",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	for scheme, raw := range c.Proxies {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s proxy %q: %w", scheme, raw, err)
		}
		if u.Host == "" {
			return fmt.Errorf("invalid %s proxy %q: missing host", scheme, raw)
		}
	}

	return nil
}
