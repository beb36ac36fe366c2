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

// Package config implements the config command: show, path and validate.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/config"
	"github.com/tombee/humio-connector/internal/secrets"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and check configuration",
		Long: `View and check humio-connector configuration.

Subcommands:
  show     - Display the effective configuration
  path     - Show config file location
  validate - Check the configuration for problems`,
		Annotations: map[string]string{"group": "configuration"},
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathCommand())
	cmd.AddCommand(NewValidateCommand())

	// If no subcommand provided, default to 'show'
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd, args)
	}

	return cmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after the file, .env files and environment
variables have been applied.

A literal API key is masked. Keychain and ${ENV_VAR} references are shown
as written. Use --json for machine-readable output.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}

	return cmd
}

// newConfigPathCommand creates the 'config path' subcommand
func newConfigPathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show config file location",
		Long:  `Display the path to the configuration file.`,
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	}

	return cmd
}

// runConfigShow displays the current configuration
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfgPath, err := configPath()
	if err != nil {
		return err
	}

	cfg, err := config.Load(shared.GetConfigPath())
	if err != nil {
		return err
	}

	masked := *cfg
	masked.Humio.APIKey = maskAPIKey(cfg.Humio.APIKey)

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return outputConfigJSON(out, &masked)
	}
	return outputConfigYAML(out, cfgPath, &masked)
}

// runConfigPath displays the config file path
func runConfigPath(cmd *cobra.Command, args []string) error {
	cfgPath, err := configPath()
	if err != nil {
		return err
	}

	if shared.GetJSON() {
		return shared.WriteJSON(cmd.OutOrStdout(), PathResponse{
			JSONResponse: shared.NewResponse("config path"),
			Path:         cfgPath,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), cfgPath)
	return nil
}

// PathResponse is the JSON output of config path.
type PathResponse struct {
	shared.JSONResponse
	Path string `json:"path"`
}

func configPath() (string, error) {
	if p := shared.GetConfigPath(); p != "" {
		return p, nil
	}
	p, err := config.ConfigPath()
	if err != nil {
		return "", shared.NewConfigError("failed to determine config path", err)
	}
	return p, nil
}

// maskAPIKey masks a literal API key for display. References are kept.
func maskAPIKey(key string) string {
	if key == "" || secrets.IsReference(key) {
		return key
	}

	// Show first 4 and last 4 characters
	if len(key) <= 8 {
		return "****"
	}

	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// outputConfigJSON writes cfg as JSON with the same keys as the YAML file.
func outputConfigJSON(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return shared.WriteJSON(w, doc)
}

// outputConfigYAML outputs config in YAML format
func outputConfigYAML(w io.Writer, path string, cfg *config.Config) error {
	fmt.Fprintf(w, "Configuration: %s\n", path)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return encoder.Close()
}
