package humio

import (
	"context"
	"net/http"
)

// Connectivity check results.
const (
	StatusOK      = "ok"
	StatusFailure = "Failure"
)

// TestModule checks connectivity with GET /api/v1/status. Any status other
// than 200 yields StatusFailure; only transport errors are returned as errors.
func (i *Integration) TestModule(ctx context.Context) (string, error) {
	resp, err := i.send(ctx, http.MethodGet, "/api/v1/status", nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusOK {
		return StatusOK, nil
	}
	i.logger.Warn("status check failed", "status", resp.StatusCode)
	return StatusFailure, nil
}

func (i *Integration) testModule(ctx context.Context, _ Args) (*Result, error) {
	status, err := i.TestModule(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Markdown: status}, nil
}
