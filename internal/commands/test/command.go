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

// Package test implements the test command, the CLI form of test-module.
package test

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/humio"
)

// Response is the JSON output of a successful test.
type Response struct {
	shared.JSONResponse
	Status string `json:"status"`
	URL    string `json:"url"`
}

// NewCommand creates the test command
func NewCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check the connection to Humio",
		Long: `Test calls GET /api/v1/status with the configured URL and API key and
prints "ok" when Humio answers 200, or "Failure" otherwise.

Exit Codes:
  0  Humio answered 200
  1  Any other status, or the request failed
  2  Configuration error`,
		Annotations: map[string]string{"group": "humio"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runTest(ctx, cmd)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall time limit")

	return cmd
}

func runTest(ctx context.Context, cmd *cobra.Command) error {
	rt, err := shared.NewRuntime(ctx, shared.RuntimeOptions{LogOutput: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	result, err := rt.Integration.Execute(ctx, humio.CmdTestModule, nil)
	if err != nil {
		return shared.NewCommandError("connection test failed", err)
	}

	out := cmd.OutOrStdout()
	if result.Markdown != humio.StatusOK {
		if !shared.GetJSON() {
			fmt.Fprintln(out, shared.RenderFailure(result.Markdown))
		}
		return shared.NewCommandError(fmt.Sprintf("%s did not answer 200 on /api/v1/status", rt.Config.Humio.URL), nil)
	}

	if shared.GetJSON() {
		return shared.WriteJSON(out, Response{
			JSONResponse: shared.NewResponse("test"),
			Status:       result.Markdown,
			URL:          rt.Config.Humio.URL,
		})
	}

	fmt.Fprintln(out, shared.RenderOK(result.Markdown))
	return nil
}
