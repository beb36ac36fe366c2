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

package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/config"
	"github.com/tombee/humio-connector/internal/secrets"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	shared.JSONResponse
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration",
		Long: `Load the configuration and report problems without contacting Humio.

Checks performed:
  - YAML syntax and field values
  - url and api_key are set
  - The incident query is complete (needed by fetch-incidents)
  - TLS verification and API key storage

With --strict, warnings are treated as errors.`,
		Example: `  # Validate configuration
  humio-connector config validate

  # Validate with warnings as errors
  humio-connector config validate --strict

  # Get validation result as JSON
  humio-connector config validate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

// runValidate performs configuration validation.
func runValidate(w io.Writer, strict bool) error {
	var result ValidationResult

	cfg, err := config.Load(shared.GetConfigPath())
	if err != nil {
		result = ValidationResult{Errors: []string{err.Error()}}
	} else {
		result = validateConfig(cfg)
	}
	result.JSONResponse = shared.NewResponse("config validate")
	result.Success = result.Valid

	return outputValidationResult(w, result, strict)
}

// validateConfig checks a loaded config for settings that load cleanly
// but will not work as intended.
func validateConfig(cfg *config.Config) ValidationResult {
	var errors []string
	var warnings []string

	if err := cfg.ValidateIncidents(); err != nil {
		warnings = append(warnings, "Incident query is incomplete; fetch-incidents will fail. Set incidents.query_parameter and incidents.query_repository.")
	}

	if cfg.Humio.Insecure {
		warnings = append(warnings, "TLS certificate verification is disabled (humio.insecure).")
	}

	if !secrets.IsReference(cfg.Humio.APIKey) {
		warnings = append(warnings, "API key is a literal value. Consider 'humio-connector auth set-key' and api_key: keychain:api-key.")
	}

	if strings.HasPrefix(cfg.Humio.URL, "http://") {
		warnings = append(warnings, "Humio URL uses plain HTTP; the API key is sent unencrypted.")
	}

	tracing := cfg.Observability.Tracing
	if (tracing.Exporter == "otlp-http" || tracing.Exporter == "otlp-grpc") && tracing.Endpoint == "" {
		warnings = append(warnings, fmt.Sprintf("Tracing exporter %s has no endpoint; the exporter default will be used.", tracing.Exporter))
	}

	return ValidationResult{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// outputValidationResult outputs the validation result and returns an
// error carrying the exit code when validation fails.
func outputValidationResult(w io.Writer, result ValidationResult, strict bool) error {
	if shared.GetJSON() {
		if err := shared.WriteJSON(w, result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Fprintln(w, shared.RenderOK("Configuration is valid"))
		} else {
			fmt.Fprintln(w, shared.RenderError("Configuration validation failed"))
		}
		fmt.Fprintln(w)

		if len(result.Errors) > 0 {
			fmt.Fprintln(w, shared.Header.Render("Errors:"))
			for _, err := range result.Errors {
				fmt.Fprintf(w, "  %s %s\n", shared.StatusError.Render(shared.SymbolError), err)
			}
			fmt.Fprintln(w)
		}

		if len(result.Warnings) > 0 {
			fmt.Fprintln(w, shared.Header.Render("Warnings:"))
			for _, warn := range result.Warnings {
				fmt.Fprintf(w, "  %s %s\n", shared.StatusWarn.Render(shared.SymbolWarn), warn)
			}
			fmt.Fprintln(w)
		}

		if result.Valid && len(result.Warnings) == 0 {
			fmt.Fprintln(w, "No issues found.")
		}
	}

	if !result.Valid {
		return &shared.ExitError{Code: shared.ExitInvalidConfig, Message: "configuration is invalid", Reported: true}
	}

	// In strict mode, warnings become errors
	if strict && len(result.Warnings) > 0 {
		if !shared.GetJSON() {
			fmt.Fprintln(w, "Validation failed (strict mode: warnings treated as errors)")
		}
		return &shared.ExitError{Code: shared.ExitInvalidConfig, Message: "validation failed (strict mode: warnings treated as errors)", Reported: true}
	}

	return nil
}
