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

// Package catalog implements the commands command, which lists every Humio
// command with its parameters.
package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/completion"
	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/humio"
)

// Response is the JSON output of the commands command.
type Response struct {
	shared.JSONResponse
	Commands []humio.CommandInfo `json:"commands"`
}

// NewCommand creates the commands command.
func NewCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "commands [name]",
		Short: "List Humio commands and their parameters",
		Long: `List every command that 'humio-connector exec' accepts.

Parameters marked * are required. No configuration is needed.`,
		Example: `  humio-connector commands
  humio-connector commands --category alerts
  humio-connector commands humio-create-alert --json`,
		Annotations:       map[string]string{"group": "humio"},
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.CompleteCommandNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := selectCommands(args, category)
			if err != nil {
				return err
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.OutOrStdout(), Response{
					JSONResponse: shared.NewResponse("commands"),
					Commands:     cmds,
				})
			}

			printCommands(cmd.OutOrStdout(), cmds)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list commands in this category (query, alerts, notifiers, status, incidents)")
	_ = cmd.RegisterFlagCompletionFunc("category", completion.CompleteCategories)

	return cmd
}

func selectCommands(args []string, category string) ([]humio.CommandInfo, error) {
	if len(args) == 1 {
		info, ok := humio.Lookup(args[0])
		if !ok {
			return nil, &humio.UnknownCommandError{Command: args[0]}
		}
		return []humio.CommandInfo{info}, nil
	}

	all := humio.Catalog()
	if category == "" {
		return all, nil
	}

	var out []humio.CommandInfo
	for _, c := range all {
		if c.Category == category {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, shared.NewArgumentError(fmt.Sprintf("no commands in category %q", category), nil)
	}
	return out, nil
}

func printCommands(w io.Writer, cmds []humio.CommandInfo) {
	for i, c := range cmds {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", shared.Header.Render(c.Name), shared.RenderLabel("["+strings.Join(c.Tags, ", ")+"]"))
		fmt.Fprintf(w, "  %s\n", c.Description)
		for _, p := range c.Parameters {
			marker := " "
			if p.Required {
				marker = "*"
			}
			line := fmt.Sprintf("   %s %-22s %s", marker, p.Name, p.Description)
			if p.Default != "" {
				line += shared.RenderLabel(" (default " + p.Default + ")")
			}
			fmt.Fprintln(w, line)
		}
	}
}
