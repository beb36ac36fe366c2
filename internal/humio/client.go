package humio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/tombee/humio-connector/pkg/httpclient"
)

const tracerName = "github.com/tombee/humio-connector/internal/humio"

// ClientConfig holds the connection settings for a Humio cluster.
type ClientConfig struct {
	// BaseURL is the cluster root, e.g. https://cloud.humio.com.
	BaseURL string

	// Verify enables TLS certificate verification.
	Verify bool

	// Proxies maps request scheme to proxy URL.
	Proxies map[string]string

	// APIKey is sent as a bearer token on every request.
	APIKey string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64

	// Burst is the limiter bucket size. Defaults to 1 when RateLimit is set.
	Burst int

	// Timeout bounds a single request. Defaults to the httpclient default.
	Timeout time.Duration
}

// Response is a raw Humio HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Client issues requests against the Humio REST API. It never retries and
// never interprets status codes; that is left to the command handlers.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClientLogger sets the logger used for request tracing.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClientMetrics records request counts and latencies.
func WithClientMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Humio client. A trailing slash on BaseURL is dropped.
func NewClient(cfg ClientConfig, opts ...ClientOption) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for Humio client")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hcfg := httpclient.DefaultConfig()
		if cfg.UserAgent != "" {
			hcfg.UserAgent = cfg.UserAgent
		}
		if cfg.Timeout > 0 {
			hcfg.Timeout = cfg.Timeout
		}
		hcfg.InsecureSkipVerify = !cfg.Verify
		hcfg.Proxies = cfg.Proxies
		hcfg.Logger = c.logger

		hc, err := httpclient.New(hcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.httpClient = hc
	}

	return c, nil
}

// BaseURL returns the normalized cluster URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPRequest performs method against BaseURL+urlSuffix. A non-nil body is
// JSON-encoded. The response is returned as-is whatever its status; only
// transport failures produce an error.
func (c *Client) HTTPRequest(ctx context.Context, method, urlSuffix string, body any, headers map[string]string) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "humio.http "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", urlSuffix),
		),
	)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rate limiter")
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+urlSuffix, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set(httpclient.RequestIDHeader, uuid.NewString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(ctx, method, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, fmt.Errorf("request to %s failed: %w", urlSuffix, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.metrics.RecordRequest(ctx, method, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, resp.Status)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    resp.Header,
	}, nil
}
