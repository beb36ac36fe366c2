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

// Package run implements the exec command, which runs one Humio command
// from the dispatch table.
package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/completion"
	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/humio"
)

// NewCommand creates the exec command.
func NewCommand() *cobra.Command {
	var (
		jqExpr   string
		argsFile string
	)

	cmd := &cobra.Command{
		Use:     "exec <command> [key=value ...]",
		Aliases: []string{"run"},
		Short:   "Run a Humio command",
		Long: `Run one Humio command with key=value arguments and print its result.

The markdown table is printed by default. --json prints the structured
outputs in an envelope and --jq filters the structured outputs.

Run 'humio-connector commands' to list commands and their parameters.`,
		Example: `  # Run a synchronous query
  humio-connector exec humio-query repository=sandbox queryString='#type=accesslog | count()' \
    start=24h end=now isLive=false timeZoneOffsetMinutes=0

  # Create an alert from a JSON argument file
  humio-connector exec humio-create-alert --args-file alert.json

  # Print only alert names
  humio-connector exec humio-list-alerts repository=sandbox --jq '.[][].name'`,
		Annotations:       map[string]string{"group": "humio"},
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completion.CompleteExecArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runExec(ctx, cmd, args[0], args[1:], argsFile, jqExpr)
		},
	}

	cmd.Flags().StringVar(&jqExpr, "jq", "", "jq expression applied to the structured output")
	cmd.Flags().StringVar(&argsFile, "args-file", "", "JSON object of arguments (use - for stdin); key=value arguments override it")

	return cmd
}

func runExec(ctx context.Context, cmd *cobra.Command, command string, pairs []string, argsFile, jqExpr string) error {
	if _, ok := humio.Lookup(command); !ok {
		return &humio.UnknownCommandError{Command: command}
	}
	if err := shared.ValidateJQ(jqExpr); err != nil {
		return err
	}

	args, err := parseArgs(pairs, argsFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	rt, err := shared.NewRuntime(ctx, shared.RuntimeOptions{
		State:     command == humio.CmdFetchIncidents,
		LogOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	result, err := rt.Integration.Execute(ctx, command, args)
	if err != nil {
		return err
	}

	return shared.RenderResult(ctx, cmd.OutOrStdout(), command, result, jqExpr)
}
