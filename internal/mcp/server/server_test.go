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

package server

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/humio-connector/internal/humio"
)

type fakeExecutor struct {
	calls  []humio.Args
	result *humio.Result
	err    error
}

func (f *fakeExecutor) Execute(_ context.Context, _ string, args humio.Args) (*humio.Result, error) {
	f.calls = append(f.calls, args)
	return f.result, f.err
}

func (f *fakeExecutor) Commands() []humio.CommandInfo {
	return []humio.CommandInfo{
		{
			Name:        humio.CmdPoll,
			Description: "Poll the results of a query job",
			Tags:        []string{"read"},
			Parameters: []humio.ParameterInfo{
				{Name: "repository", Required: true},
				{Name: "id", Required: true},
			},
		},
		{
			Name:        humio.CmdDeleteAlert,
			Description: "Delete an alert",
			Tags:        []string{"write", "destructive"},
			Parameters: []humio.ParameterInfo{
				{Name: "repository", Required: true},
				{Name: "id", Required: true},
			},
		},
	}
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, c mcp.Content) string {
	t.Helper()
	tc, ok := c.(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", c)
	return tc.Text
}

func TestNewServer_RegistersOneToolPerCommand(t *testing.T) {
	s, err := NewServer(&fakeExecutor{}, ServerConfig{})
	require.NoError(t, err)

	tools := s.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, humio.CmdPoll, tools[0].Name)
	assert.ElementsMatch(t, []string{"repository", "id"}, tools[0].InputSchema.Required)
	assert.Contains(t, tools[0].InputSchema.Properties, "id")

	require.NotNil(t, tools[1].Annotations.DestructiveHint)
	assert.True(t, *tools[1].Annotations.DestructiveHint)
	require.NotNil(t, tools[0].Annotations.ReadOnlyHint)
	assert.True(t, *tools[0].Annotations.ReadOnlyHint)
}

func TestNewServer_RequiresExecutor(t *testing.T) {
	_, err := NewServer(nil, ServerConfig{})
	assert.Error(t, err)
}

func TestHandler_Success(t *testing.T) {
	exec := &fakeExecutor{result: &humio.Result{
		Markdown: "### Humio Poll Result\n",
		Outputs:  map[string]any{"Humio.Result(val.job_id == obj.job_id)": map[string]any{"job_id": "j1"}},
	}}
	s, err := NewServer(exec, ServerConfig{})
	require.NoError(t, err)

	info := exec.Commands()[0]
	res, err := s.handler(info)(context.Background(), callRequest(info.Name, map[string]any{
		"repository": "sandbox",
		"id":         "j1",
		"limit":      float64(5),
		"skip":       nil,
	}))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	require.Len(t, res.Content, 2)
	assert.Equal(t, "### Humio Poll Result\n", textOf(t, res.Content[0]))
	assert.Contains(t, textOf(t, res.Content[1]), `"job_id": "j1"`)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, humio.Args{"repository": "sandbox", "id": "j1", "limit": "5"}, exec.calls[0])
}

func TestHandler_NoOutputs(t *testing.T) {
	exec := &fakeExecutor{result: &humio.Result{Markdown: "Command executed. Status code 204"}}
	s, err := NewServer(exec, ServerConfig{})
	require.NoError(t, err)

	info := exec.Commands()[1]
	res, err := s.handler(info)(context.Background(), callRequest(info.Name, nil))
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "Command executed. Status code 204", textOf(t, res.Content[0]))
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "api error with hint",
			err:  &humio.APIError{StatusCode: 401, Body: "bad token"},
			want: []string{"Error: response from server was: bad token", "check the API key"},
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: []string{"connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{err: tt.err}
			s, err := NewServer(exec, ServerConfig{})
			require.NoError(t, err)

			info := exec.Commands()[0]
			res, err := s.handler(info)(context.Background(), callRequest(info.Name, nil))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			for _, w := range tt.want {
				assert.Contains(t, textOf(t, res.Content[0]), w)
			}
		})
	}
}

func TestHandler_RateLimited(t *testing.T) {
	exec := &fakeExecutor{result: &humio.Result{Markdown: "ok"}}
	s, err := NewServer(exec, ServerConfig{WritesPerMinute: 1, CallsPerMinute: 100})
	require.NoError(t, err)

	info := exec.Commands()[1]
	h := s.handler(info)

	res, err := h(context.Background(), callRequest(info.Name, nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = h(context.Background(), callRequest(info.Name, nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res.Content[0]), "rate limit")
	assert.Len(t, exec.calls, 1)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	assert.True(t, rl.AllowWrite())
	assert.False(t, rl.AllowWrite())
	assert.True(t, rl.AllowCall())
	assert.True(t, rl.AllowCall())
	assert.False(t, rl.AllowCall())
}
