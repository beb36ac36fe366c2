package httpclient

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the per-request identifier set by callers.
const RequestIDHeader = "X-Request-ID"

// loggingTransport sets the User-Agent, propagates the trace context of
// the request and logs each round trip with its URL sanitized. Headers are
// logged at debug level with credentials redacted.
type loggingTransport struct {
	base       http.RoundTripper
	userAgent  string
	logger     *slog.Logger
	propagator propagation.TextMapPropagator
}

func newLoggingTransport(base http.RoundTripper, userAgent string, logger *slog.Logger) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &loggingTransport{
		base:       base,
		userAgent:  userAgent,
		logger:     logger,
		propagator: otel.GetTextMapPropagator(),
	}
}

// RoundTrip implements http.RoundTripper. The request is cloned before
// headers are added, as the RoundTripper contract requires.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	req = req.Clone(ctx)

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	t.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	attrs := []any{
		slog.String("method", req.Method),
		slog.String("url", sanitizeURL(req.URL)),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
	}
	if t.logger.Enabled(ctx, slog.LevelDebug) {
		t.logger.DebugContext(ctx, "http request headers", append(attrs, slog.Any("headers", sanitizeHeaders(req.Header)))...)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	attrs = append(attrs, slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	if err != nil {
		t.logger.WarnContext(ctx, "http request failed", append(attrs, slog.String("error", err.Error()))...)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Log(ctx, level, "http request", append(attrs, slog.Int("status", resp.StatusCode))...)

	return resp, nil
}
