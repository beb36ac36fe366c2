// Package httpclient builds the *http.Client used to talk to the Humio API.
//
// The client factory composes transport layers to provide:
//   - Request logging with sanitized URLs (sensitive params redacted)
//   - User-Agent header injection
//   - Optional TLS verification bypass for self-signed deployments
//   - Per-scheme proxy selection
//   - Connection pooling
//
// # Usage
//
//	cfg := httpclient.DefaultConfig()
//	cfg.UserAgent = "humio-connector/1.0"
//	cfg.InsecureSkipVerify = !verify
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//
// Requests are never retried. A failed request is reported to the caller
// exactly once, with whatever status the server returned.
//
// # Observability
//
// All requests emit structured logs via log/slog:
//   - Debug level: successful requests (status < 400)
//   - Warn level: failed requests (4xx/5xx status, errors)
//   - Fields: method, url (sanitized), status, duration_ms, request_id, error
package httpclient
