package humio

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordedRequest is a request captured by fakeHumio.
type recordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

func (r recordedRequest) JSON(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &m))
	return m
}

// fakeHumio answers every request with a fixed status and body.
type fakeHumio struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests []recordedRequest
}

func newFakeHumio(t *testing.T, status int, body string) *fakeHumio {
	t.Helper()
	f := &fakeHumio{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    b,
		})
		status, body := f.status, f.body
		f.mu.Unlock()

		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeHumio) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeHumio) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "no request recorded")
	return f.requests[len(f.requests)-1]
}

func (f *fakeHumio) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestIntegration(t *testing.T, f *fakeHumio, opts ...Option) *Integration {
	t.Helper()
	client, err := NewClient(ClientConfig{BaseURL: f.URL + "/", APIKey: "test-key", Verify: true})
	require.NoError(t, err)
	return NewIntegration(client, opts...)
}
