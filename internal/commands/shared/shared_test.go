// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/humio-connector/internal/config"
	"github.com/tombee/humio-connector/internal/humio"
	"github.com/tombee/humio-connector/internal/testing/integration"
	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "plain", err: errors.New("boom"), want: ExitCommandFailed},
		{name: "config", err: &connerrors.ConfigError{Key: "humio.url", Reason: "required"}, want: ExitInvalidConfig},
		{name: "validation", err: &connerrors.ValidationError{Field: "humio.url", Message: "required"}, want: ExitInvalidConfig},
		{name: "argument", err: &humio.ArgumentError{Key: "timeZoneOffsetMinutes", Reason: "must be an integer"}, want: ExitInvalidArgument},
		{name: "unknown command", err: &humio.UnknownCommandError{Command: "humio-nope"}, want: ExitInvalidArgument},
		{name: "api", err: &humio.APIError{StatusCode: 500, Body: "down"}, want: ExitAPIError},
		{name: "not found", err: &humio.NotFoundError{Resource: "Alert", ID: "a1"}, want: ExitAPIError},
		{name: "wrapped api", err: fmt.Errorf("exec: %w", &humio.APIError{StatusCode: 401}), want: ExitAPIError},
		{name: "explicit exit error", err: NewArgumentError("bad key=value", nil), want: ExitInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "fetch failed: connection refused", NewCommandError("fetch failed", cause).Error())
	assert.Equal(t, "connection refused", NewCommandError("", cause).Error())
	assert.Equal(t, "bad flag", NewArgumentError("bad flag", nil).Error())
	assert.ErrorIs(t, NewConfigError("x", cause), cause)
}

func TestReportError_Text(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := &humio.APIError{StatusCode: 401, Body: "invalid token"}

	code := ReportError(&stdout, &stderr, err, false)

	assert.Equal(t, ExitAPIError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Error: Error: response from server was: invalid token")
	assert.Contains(t, stderr.String(), "check the API key")
}

func TestReportError_JSON(t *testing.T) {
	defer ResetFlagsForTest()
	SetCurrentCommand("exec")

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{name: "not found", err: &humio.NotFoundError{Resource: "Notifier", ID: "n1"}, wantCode: ErrorCodeNotFound, wantExit: ExitAPIError},
		{name: "api", err: &humio.APIError{StatusCode: 500}, wantCode: ErrorCodeAPIError, wantExit: ExitAPIError},
		{name: "unknown command", err: &humio.UnknownCommandError{Command: "x"}, wantCode: ErrorCodeUnknownCommand, wantExit: ExitInvalidArgument},
		{name: "argument", err: &humio.ArgumentError{Key: "throttleTimeMillis"}, wantCode: ErrorCodeInvalidArgument, wantExit: ExitInvalidArgument},
		{name: "api key", err: &connerrors.ConfigError{Key: "humio.api_key", Reason: "missing"}, wantCode: ErrorCodeMissingAPIKey, wantExit: ExitInvalidConfig},
		{name: "config", err: &connerrors.ConfigError{Key: "humio.url", Reason: "missing"}, wantCode: ErrorCodeInvalidConfig, wantExit: ExitInvalidConfig},
		{name: "internal", err: errors.New("boom"), wantCode: ErrorCodeInternal, wantExit: ExitCommandFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := ReportError(&stdout, &stderr, tt.err, true)
			assert.Equal(t, tt.wantExit, code)
			assert.Empty(t, stderr.String())

			var doc struct {
				Command string      `json:"command"`
				Success bool        `json:"success"`
				Errors  []JSONError `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
			assert.Equal(t, "exec", doc.Command)
			assert.False(t, doc.Success)
			require.Len(t, doc.Errors, 1)
			assert.Equal(t, tt.wantCode, doc.Errors[0].Code)
			assert.NotEmpty(t, doc.Errors[0].Message)
		})
	}
}

func TestWriteJSON_Response(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, CommandResponse{
		JSONResponse: NewResponse("exec"),
		Outputs:      map[string]any{"Humio.Job": map[string]any{"id": "j1"}},
	}))

	assert.Contains(t, buf.String(), `"@version": "1.0"`)
	assert.Contains(t, buf.String(), `"success": true`)
	assert.Contains(t, buf.String(), `"Humio.Job"`)
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestNewLogger_FlagOverrides(t *testing.T) {
	defer ResetFlagsForTest()

	verbose, quiet, _, _ := RegisterFlagPointers()

	logger := newLogger(config.LogConfig{Level: "info"}, &bytes.Buffer{})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	*verbose = true
	logger = newLogger(config.LogConfig{Level: "info"}, &bytes.Buffer{})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	*verbose = false
	*quiet = true
	logger = newLogger(config.LogConfig{Level: "info"}, &bytes.Buffer{})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewRuntime(t *testing.T) {
	base := map[string]string{
		"HUMIO_URL":     "https://cloud.humio.com/",
		"HUMIO_API_KEY": "literal-key",
	}

	tests := []struct {
		name      string
		env       map[string]string
		opts      RuntimeOptions
		wantExit  int
		wantKey   string
		wantStore bool
	}{
		{name: "commands only", env: base},
		{
			name: "with state",
			env: merge(base, map[string]string{
				"HUMIO_QUERY_PARAMETER":  "#type=alert",
				"HUMIO_QUERY_REPOSITORY": "sandbox",
				"HUMIO_STATE_PATH":       ":memory:",
			}),
			opts:      RuntimeOptions{State: true},
			wantStore: true,
		},
		{
			name: "optional state configured",
			env: merge(base, map[string]string{
				"HUMIO_QUERY_PARAMETER":  "#type=alert",
				"HUMIO_QUERY_REPOSITORY": "sandbox",
				"HUMIO_STATE_PATH":       ":memory:",
			}),
			opts:      RuntimeOptions{OptionalState: true},
			wantStore: true,
		},
		{
			name: "optional state unconfigured",
			env:  merge(base, map[string]string{"HUMIO_STATE_PATH": ":memory:"}),
			opts: RuntimeOptions{OptionalState: true},
		},
		{
			name:     "state without incident query",
			env:      merge(base, map[string]string{"HUMIO_STATE_PATH": ":memory:"}),
			opts:     RuntimeOptions{State: true},
			wantExit: ExitInvalidConfig,
			wantKey:  "incidents",
		},
		{
			name:     "missing url",
			env:      map[string]string{"HUMIO_API_KEY": "k"},
			wantExit: ExitInvalidConfig,
		},
		{
			name:     "unresolvable api key",
			env:      map[string]string{"HUMIO_URL": "https://cloud.humio.com", "HUMIO_API_KEY": "${HUMIO_TEST_MISSING_KEY}"},
			wantExit: ExitInvalidConfig,
			wantKey:  "humio.api_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer ResetFlagsForTest()
			integration.IsolateEnv(t)
			integration.SetEnv(t, tt.env)

			tt.opts.LogOutput = &bytes.Buffer{}
			rt, err := NewRuntime(context.Background(), tt.opts)
			if tt.wantExit != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantExit, ExitCodeFor(err))
				if tt.wantKey != "" {
					var cfgErr *connerrors.ConfigError
					require.ErrorAs(t, err, &cfgErr)
					assert.Equal(t, tt.wantKey, cfgErr.Key)
				}
				return
			}

			require.NoError(t, err)
			defer rt.Close(context.Background())

			assert.NotNil(t, rt.Integration)
			assert.Equal(t, tt.wantStore, rt.Store != nil)
			assert.NotEmpty(t, rt.Integration.Commands())
		})
	}
}

func merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func TestRenderResult(t *testing.T) {
	result := &humio.Result{
		Markdown: "### Humio Alerts\n| id |\n| --- |\n| a1 |",
		Outputs:  map[string]any{"Humio.Alert(val.id == obj.id)": []any{map[string]any{"id": "a1"}}},
		Raw:      []any{map[string]any{"id": "a1"}},
	}

	t.Run("markdown", func(t *testing.T) {
		defer ResetFlagsForTest()
		var buf bytes.Buffer
		require.NoError(t, RenderResult(context.Background(), &buf, "exec", result, ""))
		assert.Equal(t, result.Markdown+"\n", buf.String())
	})

	t.Run("json envelope", func(t *testing.T) {
		defer ResetFlagsForTest()
		_, _, jsonFlag, _ := RegisterFlagPointers()
		*jsonFlag = true

		var buf bytes.Buffer
		require.NoError(t, RenderResult(context.Background(), &buf, "exec", result, ""))

		var resp CommandResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Contains(t, resp.Outputs, "Humio.Alert(val.id == obj.id)")
		assert.Nil(t, resp.Result)
	})

	t.Run("json envelope carries raw without outputs", func(t *testing.T) {
		defer ResetFlagsForTest()
		_, _, jsonFlag, _ := RegisterFlagPointers()
		*jsonFlag = true

		incidents := &humio.Result{
			Markdown: "### Humio Incidents",
			Raw:      []humio.Incident{{Name: "Humio Incident x", Occurred: "2023-11-14T22:13:20Z"}},
		}
		var buf bytes.Buffer
		require.NoError(t, RenderResult(context.Background(), &buf, "exec", incidents, ""))

		var resp struct {
			Outputs map[string]any   `json:"outputs"`
			Result  []map[string]any `json:"result"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Nil(t, resp.Outputs)
		require.Len(t, resp.Result, 1)
		assert.Equal(t, "Humio Incident x", resp.Result[0]["name"])
	})

	t.Run("jq over outputs", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderResult(context.Background(), &buf, "exec", result, `.["Humio.Alert(val.id == obj.id)"][0].id`))
		assert.Equal(t, "\"a1\"\n", buf.String())
	})

	t.Run("jq over raw when no outputs", func(t *testing.T) {
		var buf bytes.Buffer
		raw := &humio.Result{Raw: []any{map[string]any{"name": "Humio Incident x"}}}
		require.NoError(t, RenderResult(context.Background(), &buf, "fetch-incidents", raw, ".[].name"))
		assert.Equal(t, "\"Humio Incident x\"\n", buf.String())
	})
}

func TestValidateJQ(t *testing.T) {
	assert.NoError(t, ValidateJQ(""))
	assert.NoError(t, ValidateJQ(".[0]"))
	assert.Equal(t, ExitInvalidArgument, ExitCodeFor(ValidateJQ(".[")))
}
