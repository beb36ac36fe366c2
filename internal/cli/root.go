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
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "humio-connector",
		Short: "Humio log management connector",
		Long: `humio-connector runs queries, manages query jobs, alerts and notifiers,
and fetches new events as incidents from a Humio cluster.

Configure the cluster in ~/.config/humio-connector/config.yaml or with
HUMIO_URL and HUMIO_API_KEY. Run 'humio-connector test' to check the connection
and 'humio-connector commands' to list what can be executed.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	v, c, b := shared.GetVersion()
	cmd.Version = v
	cmd.SetVersionTemplate(fmt.Sprintf("humio-connector version %s (commit %s, built %s)\n", v, c, b))

	verbose, quiet, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/humio-connector/config.yaml)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		shared.SetCurrentCommand(strings.TrimPrefix(c.CommandPath(), c.Root().Name()+" "))
		return shared.ValidateGlobalFlags()
	}

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError reports err and exits with the matching code
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
