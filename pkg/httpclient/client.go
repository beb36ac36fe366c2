package httpclient

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// New creates a new HTTP client with the given configuration.
// The client includes:
//   - Request logging with sanitized URLs
//   - User-Agent header injection
//   - TLS 1.2 minimum, verification controlled by InsecureSkipVerify
//   - Proxy selection by request scheme
//   - Connection pooling with sensible defaults
//
// Returns an error if the configuration is invalid.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseTransport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			//nolint:gosec // operator opt-in for self-signed Humio deployments
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		Proxy: proxyFunc(cfg.Proxies),

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &http.Client{
		Transport: newLoggingTransport(baseTransport, cfg.UserAgent, logger),
		Timeout:   cfg.Timeout,
	}, nil
}

// proxyFunc returns a proxy selector that looks up the request scheme in proxies.
// An empty map disables proxying.
func proxyFunc(proxies map[string]string) func(*http.Request) (*url.URL, error) {
	if len(proxies) == 0 {
		return nil
	}

	parsed := make(map[string]*url.URL, len(proxies))
	for scheme, raw := range proxies {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil {
			parsed[scheme] = u
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		return parsed[req.URL.Scheme], nil
	}
}
