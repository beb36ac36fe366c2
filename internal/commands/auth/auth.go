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

// Package auth implements the auth commands, which keep the Humio API key
// in the system keychain.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/config"
	connlog "github.com/tombee/humio-connector/internal/log"
	"github.com/tombee/humio-connector/internal/secrets"
)

// newKeychain is replaced in tests.
var newKeychain = func() secrets.SecretBackend { return secrets.NewKeychainBackend() }

// NewCommand creates the auth command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Humio API key",
		Long: `Store, remove and inspect the Humio API key.

The key can be kept in the system keychain (macOS Keychain, Linux Secret
Service, Windows Credential Manager) and referenced from the config file:

  humio:
    api_key: keychain:api-key

A literal key or a ${ENV_VAR} reference also works.`,
		Annotations: map[string]string{"group": "configuration"},
	}

	cmd.AddCommand(newSetKeyCommand())
	cmd.AddCommand(newDeleteKeyCommand())
	cmd.AddCommand(newStatusCommand())

	return cmd
}

func newSetKeyCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store the API key in the keychain",
		Long: `Store the API key in the system keychain.

On a terminal the key is read without echo. Otherwise the first line of
standard input is used.`,
		Example: `  humio-connector auth set-key
  echo "$KEY" | humio-connector auth set-key --name prod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetKey(cmd.Context(), cmd, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", secrets.DefaultKeyName, "Keychain entry name")

	return cmd
}

func runSetKey(ctx context.Context, cmd *cobra.Command, name string) error {
	value, err := readKey(cmd)
	if err != nil {
		return shared.NewCommandError("failed to read API key", err)
	}
	if value == "" {
		return shared.NewArgumentError("API key cannot be empty", nil)
	}

	backend := newKeychain()
	if !backend.Available() {
		return shared.NewConfigError("system keychain is not available; set HUMIO_API_KEY instead", secrets.ErrBackendUnavailable)
	}
	if err := backend.Set(ctx, name, value); err != nil {
		return shared.NewCommandError("failed to store API key", err)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.WriteJSON(out, KeyResponse{
			JSONResponse: shared.NewResponse("auth set-key"),
			Name:         name,
			Reference:    "keychain:" + name,
		})
	}

	fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("API key stored as %q", name)))
	fmt.Fprintln(out, shared.Muted.Render("Reference it with humio.api_key: keychain:"+name))
	return nil
}

// readKey prompts on a terminal and otherwise reads one line from stdin.
func readKey(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && shared.IsTerminal(f) {
		fmt.Fprint(cmd.ErrOrStderr(), "Humio API key: ")
		value, err := shared.ReadSecret(f)
		fmt.Fprintln(cmd.ErrOrStderr())
		return strings.TrimSpace(value), err
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newDeleteKeyCommand() *cobra.Command {
	var (
		name string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "delete-key",
		Short: "Remove the API key from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteKey(cmd.Context(), cmd, name, yes)
		},
	}

	cmd.Flags().StringVar(&name, "name", secrets.DefaultKeyName, "Keychain entry name")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

func runDeleteKey(ctx context.Context, cmd *cobra.Command, name string, yes bool) error {
	if !yes {
		if shared.IsNonInteractive() {
			return shared.NewArgumentError("refusing to delete without confirmation; pass --yes", nil)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Delete API key %q from the keychain? [y/N]: ", name)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Deletion canceled")
			return nil
		}
	}

	if err := newKeychain().Delete(ctx, name); err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return shared.NewArgumentError(fmt.Sprintf("no API key stored as %q", name), err)
		}
		return shared.NewCommandError("failed to delete API key", err)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.WriteJSON(out, KeyResponse{
			JSONResponse: shared.NewResponse("auth delete-key"),
			Name:         name,
		})
	}
	fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("API key %q deleted", name)))
	return nil
}

// KeyResponse is the JSON output of set-key and delete-key.
type KeyResponse struct {
	shared.JSONResponse
	Name      string `json:"name"`
	Reference string `json:"reference,omitempty"`
}

// StatusResponse is the JSON output of auth status.
type StatusResponse struct {
	shared.JSONResponse
	URL    string `json:"url"`
	Source string `json:"source"`
	Key    string `json:"key"`
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API key comes from",
		Long: `Resolve the configured API key and show its source and last four
characters. Humio is not contacted; use 'humio-connector test' for that.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd)
		},
	}
}

func runStatus(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(shared.GetConfigPath())
	if err != nil {
		return err
	}

	ref := cfg.Humio.APIKey
	key, err := secrets.NewResolver(newKeychain(), nil).Resolve(ctx, ref)
	if err != nil {
		return shared.NewConfigError("cannot resolve API key", err)
	}

	resp := StatusResponse{
		JSONResponse: shared.NewResponse("auth status"),
		URL:          cfg.Humio.URL,
		Source:       keySource(ref),
		Key:          connlog.SanitizeAPIKey(key),
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.WriteJSON(out, resp)
	}

	fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("URL:"), resp.URL)
	fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Source:"), resp.Source)
	fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Key:"), resp.Key)
	return nil
}

func keySource(ref string) string {
	switch {
	case strings.HasPrefix(ref, "keychain:"):
		return "keychain"
	case secrets.IsReference(ref):
		return "environment"
	default:
		return "literal"
	}
}
