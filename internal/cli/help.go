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

package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/humio"
)

// CommandMetadata represents metadata about a command for JSON output
type CommandMetadata struct {
	Name        string         `json:"name"`
	Short       string         `json:"short"`
	Long        string         `json:"long,omitempty"`
	Usage       string         `json:"usage"`
	Flags       []FlagMetadata `json:"flags,omitempty"`
	Examples    string         `json:"examples,omitempty"`
	Subcommands []string       `json:"subcommands,omitempty"`
	Group       string         `json:"group,omitempty"`
	Aliases     []string       `json:"aliases,omitempty"`
}

// FlagMetadata represents metadata about a flag
type FlagMetadata struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
	Required  bool   `json:"required"`
}

// ExitCode documents one process exit status.
type ExitCode struct {
	Code    int    `json:"code"`
	Meaning string `json:"meaning"`
}

var exitCodes = []ExitCode{
	{Code: shared.ExitSuccess, Meaning: "success"},
	{Code: shared.ExitCommandFailed, Meaning: "command failed"},
	{Code: shared.ExitInvalidConfig, Meaning: "invalid or missing configuration"},
	{Code: shared.ExitInvalidArgument, Meaning: "invalid argument or unknown command"},
	{Code: shared.ExitAPIError, Meaning: "Humio returned an error"},
}

// HelpResponse is the JSON response for help command. Detail describes a CLI
// command topic; HumioCommand is set when the topic is a dispatch-table command.
type HelpResponse struct {
	shared.JSONResponse
	Commands      []CommandMetadata   `json:"commands,omitempty"`
	Detail        *CommandMetadata    `json:"command_detail,omitempty"`
	HumioCommands []humio.CommandInfo `json:"humio_commands,omitempty"`
	HumioCommand  *humio.CommandInfo  `json:"humio_command,omitempty"`
	GlobalFlags   []FlagMetadata      `json:"global_flags,omitempty"`
	ExitCodes     []ExitCode          `json:"exit_codes,omitempty"`
}

// commandGroups orders the "group" annotations in root help.
var commandGroups = []*cobra.Group{
	{ID: "humio", Title: "Humio Commands:"},
	{ID: "configuration", Title: "Configuration Commands:"},
}

// NewHelpCommand creates the help command. It also files rootCmd's
// subcommands under their "group" annotation, so it must be called after
// every command has been added.
func NewHelpCommand(rootCmd *cobra.Command) *cobra.Command {
	var jsonOutput bool

	groupCommands(rootCmd)

	cmd := &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help provides detailed information about commands and their usage.

Run 'humio-connector help' to see all available commands.
Run 'humio-connector help <command>' for a CLI command, or
'humio-connector help <humio-command>' for the parameters of a Humio command
such as humio-create-alert.
Use --json for machine-readable output.`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, c := range rootCmd.Commands() {
				if c.IsAvailableCommand() {
					names = append(names, c.Name())
				}
			}
			for _, info := range humio.Catalog() {
				names = append(names, info.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			useJSON := shared.GetJSON() || jsonOutput
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if useJSON {
					return shared.WriteJSON(out, rootHelp(rootCmd))
				}
				return rootCmd.Help()
			}

			if info, ok := humio.Lookup(args[0]); ok {
				if useJSON {
					return shared.WriteJSON(out, HelpResponse{
						JSONResponse: shared.NewResponse("help " + info.Name),
						HumioCommand: &info,
					})
				}
				printHumioCommand(out, info)
				return nil
			}

			targetCmd, _, err := rootCmd.Find(args)
			if err != nil || targetCmd == rootCmd {
				return &humio.UnknownCommandError{Command: strings.Join(args, " ")}
			}

			if useJSON {
				metadata := extractCommandMetadata(targetCmd)
				return shared.WriteJSON(out, HelpResponse{
					JSONResponse: shared.NewResponse("help " + targetCmd.Name()),
					Detail:       &metadata,
					GlobalFlags:  extractGlobalFlags(rootCmd),
				})
			}

			return targetCmd.Help()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// groupCommands assigns GroupIDs from annotations for the groups in use.
func groupCommands(rootCmd *cobra.Command) {
	used := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		if g := c.Annotations["group"]; g != "" {
			used[g] = true
		}
	}

	for _, g := range commandGroups {
		if !used[g.ID] || rootCmd.ContainsGroup(g.ID) {
			continue
		}
		rootCmd.AddGroup(g)
	}

	for _, c := range rootCmd.Commands() {
		if g := c.Annotations["group"]; g != "" && c.GroupID == "" && rootCmd.ContainsGroup(g) {
			c.GroupID = g
		}
	}
}

// rootHelp describes every CLI command, every Humio command and the exit codes.
func rootHelp(rootCmd *cobra.Command) HelpResponse {
	commands := []CommandMetadata{}
	for _, c := range rootCmd.Commands() {
		if c.Hidden {
			continue
		}
		commands = append(commands, extractCommandMetadata(c))
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })

	return HelpResponse{
		JSONResponse:  shared.NewResponse("help"),
		Commands:      commands,
		HumioCommands: humio.Catalog(),
		GlobalFlags:   extractGlobalFlags(rootCmd),
		ExitCodes:     exitCodes,
	}
}

// printHumioCommand prints the parameters of one dispatch-table command.
func printHumioCommand(w io.Writer, info humio.CommandInfo) {
	fmt.Fprintf(w, "%s\n\n", info.Description)
	fmt.Fprintf(w, "Usage:\n  humio-connector exec %s", info.Name)
	for _, p := range info.Parameters {
		if p.Required {
			fmt.Fprintf(w, " %s=...", p.Name)
		}
	}
	fmt.Fprint(w, "\n")

	if len(info.Parameters) > 0 {
		fmt.Fprint(w, "\nParameters:\n")
		for _, p := range info.Parameters {
			line := fmt.Sprintf("  %-24s %s", p.Name, p.Description)
			if p.Required {
				line += " (required)"
			}
			if p.Default != "" {
				line += fmt.Sprintf(" [default %s]", p.Default)
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(info.Tags) > 0 {
		fmt.Fprintf(w, "\nTags: %s\n", strings.Join(info.Tags, ", "))
	}
}

// extractCommandMetadata extracts metadata from a cobra command
func extractCommandMetadata(cmd *cobra.Command) CommandMetadata {
	metadata := CommandMetadata{
		Name:     cmd.Name(),
		Short:    cmd.Short,
		Long:     cmd.Long,
		Usage:    cmd.UseLine(),
		Examples: cmd.Example,
		Aliases:  cmd.Aliases,
		Group:    cmd.Annotations["group"],
	}

	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		metadata.Flags = append(metadata.Flags, flagMetadata(flag))
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			metadata.Subcommands = append(metadata.Subcommands, sub.Name())
		}
	}

	return metadata
}

// extractGlobalFlags extracts global flags from root command
func extractGlobalFlags(rootCmd *cobra.Command) []FlagMetadata {
	flags := []FlagMetadata{}
	rootCmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		flags = append(flags, flagMetadata(flag))
	})
	return flags
}

func flagMetadata(flag *pflag.Flag) FlagMetadata {
	required := false
	if ann, ok := flag.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(ann) > 0 && ann[0] == "true" {
		required = true
	}
	return FlagMetadata{
		Name:      flag.Name,
		Shorthand: flag.Shorthand,
		Usage:     flag.Usage,
		Default:   flag.DefValue,
		Required:  required,
	}
}
