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

package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand creates the completion command for generating shell completion scripts.
func NewCommand() *cobra.Command {
	var noDesc bool

	cmd := &cobra.Command{
		Use: "completion [bash|zsh|fish|powershell]",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for humio-connector.

Completion covers CLI commands, Humio command names after 'exec' and
'commands', key= parameters for the chosen Humio command, and --category
values.

Bash (needs bash-completion v2):
  $ source <(humio-connector completion bash)
  $ humio-connector completion bash > ~/.local/share/bash-completion/completions/humio-connector

Zsh (compinit must be enabled):
  $ humio-connector completion zsh > "${fpath[1]}/_humio-connector"

Fish:
  $ humio-connector completion fish > ~/.config/fish/completions/humio-connector.fish

PowerShell:
  PS> humio-connector completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(cmd, args[0], !noDesc)
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "Omit command and parameter descriptions from completions")

	return cmd
}

func runCompletion(cmd *cobra.Command, shell string, withDesc bool) error {
	root := cmd.Root()
	out := cmd.OutOrStdout()

	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, withDesc)
	case "zsh":
		if withDesc {
			return root.GenZshCompletion(out)
		}
		return root.GenZshCompletionNoDesc(out)
	case "fish":
		return root.GenFishCompletion(out, withDesc)
	case "powershell":
		if withDesc {
			return root.GenPowerShellCompletionWithDesc(out)
		}
		return root.GenPowerShellCompletion(out)
	}
	return fmt.Errorf("unsupported shell %q", shell)
}
