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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/humio-connector/internal/cli"
	"github.com/tombee/humio-connector/internal/commands/shared"
	internalConfig "github.com/tombee/humio-connector/internal/config"
	"github.com/tombee/humio-connector/internal/testing/integration"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(shared.ResetFlagsForTest)

	root := cli.NewRootCommand()
	root.AddCommand(NewConfigCommand())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "", want: ""},
		{key: "short", want: "****"},
		{key: "abcd1234efgh5678", want: "abcd********5678"},
		{key: "${HUMIO_API_KEY}", want: "${HUMIO_API_KEY}"},
		{key: "keychain:api-key", want: "keychain:api-key"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, maskAPIKey(tt.key))
		})
	}
}

func TestConfigShow(t *testing.T) {
	integration.IsolateEnv(t)
	path := writeConfig(t, `
humio:
  url: https://cloud.humio.com
  api_key: abcd1234efgh5678
incidents:
  query_parameter: "#type=alert"
  query_repository: sandbox
`)

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration: "+path)
	assert.Contains(t, out, "abcd********5678")
	assert.NotContains(t, out, "abcd1234efgh5678")

	out, err = execute(t, "--config", path, "config", "show", "--json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	humio, ok := doc["humio"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://cloud.humio.com", humio["url"])
	assert.Equal(t, "abcd********5678", humio["api_key"])
}

func TestConfigPath(t *testing.T) {
	integration.IsolateEnv(t)

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("humio-connector", "config.yaml"))

	out, err = execute(t, "--config", "/tmp/custom.yaml", "config", "path", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"path": "/tmp/custom.yaml"`)
}

func TestValidateConfig(t *testing.T) {
	base := func() *internalConfig.Config {
		cfg := internalConfig.Default()
		cfg.Humio.URL = "https://cloud.humio.com"
		cfg.Humio.APIKey = "keychain:api-key"
		cfg.Incidents.QueryParameter = "#type=alert"
		cfg.Incidents.QueryRepository = "sandbox"
		return cfg
	}

	tests := []struct {
		name          string
		mutate        func(*internalConfig.Config)
		wantWarnCount int
	}{
		{name: "clean", mutate: func(*internalConfig.Config) {}},
		{name: "no incident query", mutate: func(c *internalConfig.Config) { c.Incidents.QueryRepository = "" }, wantWarnCount: 1},
		{name: "insecure", mutate: func(c *internalConfig.Config) { c.Humio.Insecure = true }, wantWarnCount: 1},
		{name: "literal key over http", mutate: func(c *internalConfig.Config) {
			c.Humio.APIKey = "literal"
			c.Humio.URL = "http://humio.local"
		}, wantWarnCount: 2},
		{name: "otlp without endpoint", mutate: func(c *internalConfig.Config) { c.Observability.Tracing.Exporter = "otlp-grpc" }, wantWarnCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			result := validateConfig(cfg)
			assert.True(t, result.Valid)
			assert.Empty(t, result.Errors)
			assert.Len(t, result.Warnings, tt.wantWarnCount, result.Warnings)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		args     []string
		wantExit int
		wantOut  string
	}{
		{
			name:    "valid with warnings",
			body:    "humio:\n  url: https://cloud.humio.com\n  api_key: literal\n",
			wantOut: "Configuration is valid",
		},
		{
			name:     "strict",
			body:     "humio:\n  url: https://cloud.humio.com\n  api_key: literal\n",
			args:     []string{"--strict"},
			wantExit: shared.ExitInvalidConfig,
			wantOut:  "strict mode",
		},
		{
			name:     "missing url",
			body:     "humio:\n  api_key: literal\n",
			wantExit: shared.ExitInvalidConfig,
			wantOut:  "Configuration validation failed",
		},
		{
			name:     "bad yaml",
			body:     "humio: [\n",
			wantExit: shared.ExitInvalidConfig,
			wantOut:  "Configuration validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integration.IsolateEnv(t)
			path := writeConfig(t, tt.body)

			args := append([]string{"--config", path, "config", "validate"}, tt.args...)
			out, err := execute(t, args...)
			assert.Equal(t, tt.wantExit, shared.ExitCodeFor(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestValidateCommand_JSON(t *testing.T) {
	integration.IsolateEnv(t)
	path := writeConfig(t, "humio:\n  api_key: literal\n")

	out, err := execute(t, "--config", path, "config", "validate", "--json")
	require.Error(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}
